package client

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultKeepAlive is the keepalive interval used when none is set.
	// Servers drop idle query clients after a few minutes.
	DefaultKeepAlive = 60 * time.Second

	// DefaultQueueSize is the number of commands that can wait to be sent.
	DefaultQueueSize = 32
)

type Options struct {
	// KeepAlive is the interval between keepalive commands. Zero uses
	// DefaultKeepAlive, a negative value disables keepalives.
	KeepAlive time.Duration

	// QueueSize bounds the commands waiting to be written, Send blocks
	// once it is full.
	QueueSize int

	// DialTimeout limits establishing the TCP connection in Dial.
	DialTimeout time.Duration

	// Handler receives events and asynchronous errors. Defaults to a handler
	// that logs errors and ignores events.
	Handler EventHandler

	// OrderedEvents delivers events one at a time in the order they arrived,
	// from a single goroutine. By default every event gets its own goroutine
	// and handlers may see them in any order. Replies are never held up
	// either way. Close waits for the event being delivered.
	OrderedEvents bool

	Log *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.KeepAlive == 0 {
		o.KeepAlive = DefaultKeepAlive
	}

	if o.QueueSize < 1 {
		o.QueueSize = DefaultQueueSize
	}

	if o.Log == nil {
		o.Log = zap.NewNop()
	}

	return o
}
