package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/tsquery/internal/env"
	"github.com/luma/tsquery/querytest"
)

var (
	// The host the mock server listens on
	mockHost string

	// The port the mock server listens on
	mockPort int
)

func init() {
	flags := MockCmd.Flags()

	flags.StringVar(&mockHost, "host", "127.0.0.1", "The host to listen on")
	flags.IntVarP(&mockPort, "port", "p", 10011, "The port to listen client connections on")
}

var MockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a fake ServerQuery server",
	Long: `Run a fake ServerQuery server

Answers login, use, version, whoami and servernotifyregister, every other
command fails with "command not found". Useful to try the other commands
without a real server.

Usage
	tsquery mock --port 10011

`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer signalStop()

		conf, err := loadConfig(ctx, cmd)
		if err != nil {
			return err
		}

		log, err := env.MakeLogger(conf.LogLevel)
		if err != nil {
			return err
		}

		defer log.Sync() // nolint: errcheck

		srv := querytest.NewServer(querytest.Options{
			Host:      mockHost,
			Port:      mockPort,
			Reuseport: true,
			Log:       log.Named("mock"),
		})

		if err := srv.Start(ctx); err != nil {
			return err
		}

		// Listen for the interrupt signal.
		<-ctx.Done()

		signalStop()
		log.Info("Shutting down", zap.Int("clients", srv.NumConns()))

		return srv.Close()
	},
}
