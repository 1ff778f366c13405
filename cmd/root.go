package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/tsquery/cmd/gen"
	"github.com/luma/tsquery/internal/env"
)

var (
	// Overrides for the TSQUERY_* environment
	addr     string
	user     string
	password string
	serverID uint64
	logLevel string
)

var RootCmd = &cobra.Command{
	Use:   "tsquery",
	Short: "ServerQuery client for voice servers",
	Long: `ServerQuery client for voice servers

Settings are read from the environment (TSQUERY_ADDR, TSQUERY_USER,
TSQUERY_PASSWORD, TSQUERY_SID, TSQUERY_KEEPALIVE, TSQUERY_LOG_LEVEL and
TSQUERY_DEBUG_HTTP) and from .env.local. Flags take precedence.`,
	SilenceUsage: true,
}

func init() {
	flags := RootCmd.PersistentFlags()

	flags.StringVarP(&addr, "addr", "a", "", "ServerQuery address, e.g. localhost:10011")
	flags.StringVarP(&user, "user", "u", "", "Login name")
	flags.StringVar(&password, "password", "", "Login password")
	flags.Uint64Var(&serverID, "sid", 0, "Virtual server to select, 0 to skip")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	RootCmd.AddCommand(WatchCmd)
	RootCmd.AddCommand(ExecCmd)
	RootCmd.AddCommand(MockCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

// Execute runs the command line and exits with a non zero status on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the flags that were set.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*env.Config, error) {
	conf, err := env.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("addr") {
		conf.Addr = addr
	}

	if flags.Changed("user") {
		conf.User = user
	}

	if flags.Changed("password") {
		conf.Password = password
	}

	if flags.Changed("sid") {
		conf.ServerID = serverID
	}

	if flags.Changed("log-level") {
		conf.LogLevel = logLevel
	}

	return conf, nil
}
