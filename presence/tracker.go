// Package presence mirrors the clients and channels of a virtual server into
// a storage.Store by following its events.
package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/luma/tsquery/client"
	"github.com/luma/tsquery/event"
	"github.com/luma/tsquery/protocol"
	"github.com/luma/tsquery/storage"
)

const (
	// queryClientType is the client_type of ServerQuery clients, which are
	// not tracked.
	queryClientType = 1

	defaultWriteTimeout = 3 * time.Second
)

const (
	KeyServerName     = "server.name"
	KeyMessages       = "stats.messages"
	KeyLastMessage    = "stats.last_message"
	KeyTokensUsed     = "stats.tokens_used"
	KeyClientsPrefix  = "clients"
	KeyChannelsPrefix = "channels"
)

// ClientKey is the store path of a client.
func ClientKey(clid protocol.ClientID) string {
	return fmt.Sprintf("%s.clid-%d", KeyClientsPrefix, clid)
}

// ChannelKey is the store path of a channel.
func ChannelKey(cid protocol.ChannelID) string {
	return fmt.Sprintf("%s.cid-%d", KeyChannelsPrefix, cid)
}

// Client is the stored state of a connected client.
type Client struct {
	Nickname     string                   `json:"nickname"`
	UID          string                   `json:"uid"`
	DatabaseID   uint64                   `json:"dbid"`
	Channel      uint64                   `json:"channel"`
	Away         bool                     `json:"away"`
	ServerGroups []protocol.ServerGroupID `json:"server_groups"`
}

// Channel is the stored state of a channel.
type Channel struct {
	Name   string `json:"name"`
	Topic  string `json:"topic"`
	Parent uint64 `json:"parent"`
	Order  uint64 `json:"order"`
}

// Message is the last text message seen.
type Message struct {
	From       string              `json:"from"`
	Msg        string              `json:"msg"`
	TargetMode protocol.TargetMode `json:"target_mode"`
}

type Options struct {
	// WriteTimeout limits every store write. Defaults to 3 seconds.
	WriteTimeout time.Duration

	Log *zap.Logger
}

// Tracker is a client.EventHandler keeping a storage.Store in sync with the
// server. Register for server, channel and text events to feed it, and
// deliver them with client.Options.OrderedEvents: a client leaving must not
// be applied before it entered.
type Tracker struct {
	client.BaseHandler

	store        storage.Store
	writeTimeout time.Duration
	log          *zap.Logger
}

func NewTracker(store storage.Store, options Options) *Tracker {
	if options.WriteTimeout <= 0 {
		options.WriteTimeout = defaultWriteTimeout
	}

	if options.Log == nil {
		options.Log = zap.NewNop()
	}

	return &Tracker{
		store:        store,
		writeTimeout: options.WriteTimeout,
		log:          options.Log,
	}
}

func (t *Tracker) ClientEnterView(c *client.Conn, ev *event.ClientEnterView) {
	if ev.Type == queryClientType {
		return
	}

	t.write("enter", func(ctx context.Context) error {
		return t.store.Set(ctx, ClientKey(ev.ClientID), Client{
			Nickname:     ev.Nickname,
			UID:          ev.UniqueIdentifier,
			DatabaseID:   uint64(ev.DatabaseID),
			Channel:      uint64(ev.TargetChannel),
			Away:         ev.Away,
			ServerGroups: ev.ServerGroups,
		})
	})
}

func (t *Tracker) ClientLeftView(c *client.Conn, ev *event.ClientLeftView) {
	t.write("left", func(ctx context.Context) error {
		return t.store.Delete(ctx, ClientKey(ev.ClientID))
	})
}

func (t *Tracker) ClientMoved(c *client.Conn, ev *event.ClientMoved) {
	t.write("moved", func(ctx context.Context) error {
		return t.store.Patch(ctx, ClientKey(ev.ClientID), "channel", uint64(ev.TargetChannel))
	})
}

func (t *Tracker) ServerEdited(c *client.Conn, ev *event.ServerEdited) {
	if ev.Name == "" {
		return
	}

	t.write("server edited", func(ctx context.Context) error {
		return t.store.Set(ctx, KeyServerName, ev.Name)
	})
}

func (t *Tracker) ChannelCreated(c *client.Conn, ev *event.ChannelCreated) {
	t.write("channel created", func(ctx context.Context) error {
		return t.store.Set(ctx, ChannelKey(ev.ChannelID), Channel{
			Name:   ev.Name,
			Topic:  ev.Topic,
			Parent: uint64(ev.ParentID),
			Order:  ev.Order,
		})
	})
}

// ChannelEdited only carries the changed properties, so empty ones are left
// alone.
func (t *Tracker) ChannelEdited(c *client.Conn, ev *event.ChannelEdited) {
	key := ChannelKey(ev.ChannelID)

	if ev.Name != "" {
		t.write("channel edited", func(ctx context.Context) error {
			return t.store.Patch(ctx, key, "name", ev.Name)
		})
	}

	if ev.Topic != "" {
		t.write("channel edited", func(ctx context.Context) error {
			return t.store.Patch(ctx, key, "topic", ev.Topic)
		})
	}
}

func (t *Tracker) ChannelMoved(c *client.Conn, ev *event.ChannelMoved) {
	key := ChannelKey(ev.ChannelID)

	t.write("channel moved", func(ctx context.Context) error {
		if err := t.store.Patch(ctx, key, "parent", uint64(ev.ParentID)); err != nil {
			return err
		}

		return t.store.Patch(ctx, key, "order", ev.Order)
	})
}

func (t *Tracker) ChannelDeleted(c *client.Conn, ev *event.ChannelDeleted) {
	t.write("channel deleted", func(ctx context.Context) error {
		return t.store.Delete(ctx, ChannelKey(ev.ChannelID))
	})
}

func (t *Tracker) TextMessage(c *client.Conn, ev *event.TextMessage) {
	t.write("text message", func(ctx context.Context) error {
		if _, err := t.store.Increment(ctx, KeyMessages, 1); err != nil {
			return err
		}

		return t.store.Set(ctx, KeyLastMessage, Message{
			From:       ev.InvokerName,
			Msg:        ev.Msg,
			TargetMode: ev.TargetMode,
		})
	})
}

func (t *Tracker) TokenUsed(c *client.Conn, ev *event.TokenUsed) {
	t.write("token used", func(ctx context.Context) error {
		_, err := t.store.Increment(ctx, KeyTokensUsed, 1)
		return err
	})
}

func (t *Tracker) Error(c *client.Conn, err error) {
	t.log.Warn("Connection error", zap.Error(err))
}

func (t *Tracker) write(what string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.writeTimeout)
	defer cancel()

	err := fn(ctx)

	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		// Query clients and anything that changed before Seed
		t.log.Debug("Ignoring event for untracked entry", zap.String("event", what), zap.Error(err))
	default:
		t.log.Warn("Failed to store event", zap.String("event", what), zap.Error(err))
	}
}

var _ client.EventHandler = (*Tracker)(nil)
