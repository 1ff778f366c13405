package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/luma/tsquery/internal/env"
	"github.com/luma/tsquery/protocol"
)

var (
	// gjson path applied to the output
	execPath string
)

func init() {
	flags := ExecCmd.Flags()

	flags.StringVar(&execPath, "path", "", "Only print the value at this gjson path, e.g. 0.version or #.client_nickname")
}

var ExecCmd = &cobra.Command{
	Use:   "exec <command> [args...]",
	Short: "Send one command and print the reply as JSON",
	Long: `Send one command and print the reply as JSON

The arguments are joined with spaces and sent as they are, so values must
already be escaped (a space is \s). The reply is printed as an array with
one object per entry. Flags without a value are null.

Usage
	tsquery exec clientlist -uid --path '#.client_nickname'

`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer signalStop()

		conf, err := loadConfig(ctx, cmd)
		if err != nil {
			return err
		}

		// The output is the reply, keep the log quiet unless asked
		if !cmd.Flags().Changed("log-level") && os.Getenv("TSQUERY_LOG_LEVEL") == "" {
			conf.LogLevel = "warn"
		}

		log, err := env.MakeLogger(conf.LogLevel)
		if err != nil {
			return err
		}

		defer log.Sync() // nolint: errcheck

		// Replies are awaited, events are of no interest
		conn, err := connect(ctx, &env.Config{
			Addr:      conf.Addr,
			User:      conf.User,
			Password:  conf.Password,
			ServerID:  conf.ServerID,
			KeepAlive: -1,
		}, nil, log)
		if err != nil {
			return err
		}

		defer disconnect(context.Background(), conn, log)

		resp, err := conn.SendRaw(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out, err := ResponseJSON(resp)
		if err != nil {
			return err
		}

		if execPath != "" {
			out = []byte(gjson.GetBytes(out, execPath).Raw)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}

// ResponseJSON renders resp as a JSON array of objects with unescaped string
// values. Keys sent without a value are null.
func ResponseJSON(resp protocol.Response) ([]byte, error) {
	out := []byte("[]")

	for _, entry := range resp {
		obj := []byte("{}")

		for _, key := range entry.Keys() {
			var (
				value interface{}
				err   error
			)

			if v, ok := entry.Get(key); ok {
				value = v
			}

			obj, err = sjson.SetBytes(obj, escapePath(key), value)
			if err != nil {
				return nil, fmt.Errorf("Failed to encode %s: %w", key, err)
			}
		}

		var err error
		if out, err = sjson.SetRawBytes(out, "-1", obj); err != nil {
			return nil, err
		}
	}

	return out, nil
}

var pathEscaper = strings.NewReplacer(`.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`, `#`, `\#`, `@`, `\@`)

// escapePath makes a key usable as a single sjson path component.
func escapePath(key string) string {
	return pathEscaper.Replace(key)
}
