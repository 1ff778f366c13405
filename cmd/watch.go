package cmd

import (
	"context"
	"errors"
	"io/ioutil"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/tsquery/internal/env"
	"github.com/luma/tsquery/presence"
	"github.com/luma/tsquery/protocol"
	"github.com/luma/tsquery/storage"
)

var (
	// The host to serve HTTP on
	httpHost string

	// The port to serve HTTP on, empty to disable
	httpPort string

	// File the state is restored from and saved to on exit
	stateFile string
)

// watchEvents are the registrations the presence tracker needs.
var watchEvents = []protocol.NotifyRegistration{
	{Event: protocol.NotifyServer},
	{Event: protocol.NotifyChannel},
	{Event: protocol.NotifyTextServer},
	{Event: protocol.NotifyTextChannel},
	{Event: protocol.NotifyTextPrivate},
	{Event: protocol.NotifyTokenUsed},
}

func init() {
	flags := WatchCmd.Flags()

	flags.StringVar(&httpHost, "http-host", "0.0.0.0", "The host to serve HTTP requests on")
	flags.StringVar(&httpPort, "http-port", "", "The port to serve HTTP requests on, disabled when empty")
	flags.StringVar(&stateFile, "state", "", "File to restore the state from and save it to on exit")
}

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the clients and channels of a virtual server",
	Long: `Follow the clients and channels of a virtual server

Registers for server, channel and text events and keeps the current
clients, channels and message counters up to date. With --http-port the
state is served as JSON on /snapshot.

Usage
	tsquery watch --user serveradmin --password secret --http-port 7362

`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
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

		store := storage.NewInmemoryStore()
		defer store.Close()

		if stateFile != "" {
			if err := restoreState(store, stateFile); err != nil {
				return err
			}

			defer saveState(store, stateFile, log)
		}

		go logUpdates(store, log.Named("store"))

		tracker := presence.NewTracker(store, presence.Options{Log: log.Named("presence")})

		conn, err := connect(ctx, conf, tracker, log)
		if err != nil {
			return err
		}

		for _, reg := range watchEvents {
			if err := conn.ServerNotifyRegister(ctx, reg); err != nil {
				disconnect(context.Background(), conn, log)
				return err
			}
		}

		if err := tracker.Seed(ctx, conn); err != nil {
			disconnect(context.Background(), conn, log)
			return err
		}

		var s *http.Server

		if httpPort != "" {
			s = &http.Server{
				Addr:    net.JoinHostPort(httpHost, httpPort),
				Handler: setupRouter(conf.DebugHTTP, store, log),
			}

			// Initializing the server in a goroutine so that
			// it won't block the graceful shutdown handling below
			go func() {
				if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Http server errored", zap.Error(err))
				}
			}()

			log.Info("Serving HTTP", zap.String("addr", s.Addr))
		}

		// Wait for the interrupt signal or the server going away
		select {
		case <-ctx.Done():
		case <-conn.Done():
			err = conn.Err()
			log.Error("Connection lost", zap.Error(err))
		}

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		// The context is used to inform the server it has 5 seconds to finish
		// the request it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if s != nil {
			s.SetKeepAlivesEnabled(false)

			if err := s.Shutdown(shutdownCtx); err != nil {
				log.Error("Http server forced to shutdown", zap.Error(err))
			}
		}

		disconnect(shutdownCtx, conn, log)

		log.Info("Exiting")
		return err
	},
}

func setupRouter(debugHTTP bool, store storage.Store, log *zap.Logger) *gin.Engine {
	gin.DisableConsoleColor()
	if !debugHTTP {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - Logs to stdout.
	//   - RFC3339 with UTC time format.
	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	// Ping test
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.GET("/snapshot", func(c *gin.Context) {
		data, err := store.Backup()
		if err != nil {
			c.AbortWithError(http.StatusServiceUnavailable, err) // nolint: errcheck
			return
		}

		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	})

	return r
}

// logUpdates logs every change to the store until it is closed.
func logUpdates(store storage.Store, log *zap.Logger) {
	for update := range store.ListenToUpdates() {
		if update.Deleted {
			log.Debug("Deleted", zap.String("key", update.Key))
			continue
		}

		log.Debug("Updated", zap.String("key", update.Key), zap.ByteString("value", update.Value))
	}
}

// restoreState loads path into store. A missing file is not an error.
func restoreState(store storage.Store, path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	return store.Restore(data)
}

func saveState(store storage.Store, path string, log *zap.Logger) {
	data, err := store.Backup()
	if err != nil {
		log.Error("Failed to back up state", zap.Error(err))
		return
	}

	if err := ioutil.WriteFile(path, data, 0640); err != nil {
		log.Error("Failed to save state", zap.String("path", path), zap.Error(err))
	}
}
