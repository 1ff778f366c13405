package cmd

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/tsquery/client"
	"github.com/luma/tsquery/internal/env"
	"github.com/luma/tsquery/protocol"
)

// connect dials the server, logs in when a user is configured and selects
// the configured virtual server.
func connect(ctx context.Context, conf *env.Config, handler client.EventHandler, log *zap.Logger) (*client.Conn, error) {
	keepAlive := conf.KeepAlive
	if keepAlive == 0 {
		keepAlive = -1
	}

	conn, err := client.Dial(ctx, conf.Addr, client.Options{
		KeepAlive: keepAlive,
		Handler:   handler,
		Log:       log.Named("client"),

		// The presence tracker applies events in order
		OrderedEvents: true,
	})
	if err != nil {
		return nil, err
	}

	if conf.User != "" {
		if err := conn.Login(ctx, conf.User, conf.Password); err != nil {
			return nil, multierr.Append(err, conn.Close())
		}
	}

	if conf.ServerID != 0 {
		if err := conn.UseSID(ctx, protocol.ServerID(conf.ServerID)); err != nil {
			return nil, multierr.Append(err, conn.Close())
		}
	}

	log.Info("Connected",
		zap.String("addr", conf.Addr),
		zap.String("user", conf.User),
		zap.Uint64("sid", conf.ServerID))

	return conn, nil
}

// disconnect says goodbye and closes conn.
func disconnect(ctx context.Context, conn *client.Conn, log *zap.Logger) {
	if err := conn.Quit(ctx); err != nil {
		log.Debug("Quit failed", zap.Error(err))
	}

	if err := conn.Close(); err != nil {
		log.Warn("Connection did not close cleanly", zap.Error(err))
	}
}
