package client

import (
	"go.uber.org/zap"

	"github.com/luma/tsquery/event"
)

// EventHandler receives the events of a connection. Every event is delivered
// on its own goroutine, so methods may block and may be called concurrently.
// With Options.OrderedEvents they are called one at a time in arrival order
// instead, and a blocking method delays the events after it.
//
// Events only arrive after registering for them with ServerNotifyRegister.
type EventHandler interface {
	ClientEnterView(c *Conn, ev *event.ClientEnterView)
	ClientLeftView(c *Conn, ev *event.ClientLeftView)
	ServerEdited(c *Conn, ev *event.ServerEdited)
	ChannelDescriptionChanged(c *Conn, ev *event.ChannelDescriptionChanged)
	ChannelPasswordChanged(c *Conn, ev *event.ChannelPasswordChanged)
	ChannelMoved(c *Conn, ev *event.ChannelMoved)
	ChannelEdited(c *Conn, ev *event.ChannelEdited)
	ChannelCreated(c *Conn, ev *event.ChannelCreated)
	ChannelDeleted(c *Conn, ev *event.ChannelDeleted)
	ClientMoved(c *Conn, ev *event.ClientMoved)
	TextMessage(c *Conn, ev *event.TextMessage)
	TokenUsed(c *Conn, ev *event.TokenUsed)

	// Error receives errors that no caller is waiting for: undecodable
	// events, handler panics and the transport error ending the connection.
	Error(c *Conn, err error)
}

// BaseHandler ignores every event. Embed it to implement only some of the
// EventHandler methods.
//
// BaseHandler has no Error method. Error carries transport failures and
// handler panics, which must not be discarded unnoticed, so every handler
// decides what to do with them.
//
//	type greeter struct {
//		client.BaseHandler
//	}
//
//	func (greeter) ClientEnterView(c *client.Conn, ev *event.ClientEnterView) { ... }
//	func (greeter) Error(c *client.Conn, err error) { ... }
type BaseHandler struct{}

func (BaseHandler) ClientEnterView(*Conn, *event.ClientEnterView)                     {}
func (BaseHandler) ClientLeftView(*Conn, *event.ClientLeftView)                       {}
func (BaseHandler) ServerEdited(*Conn, *event.ServerEdited)                           {}
func (BaseHandler) ChannelDescriptionChanged(*Conn, *event.ChannelDescriptionChanged) {}
func (BaseHandler) ChannelPasswordChanged(*Conn, *event.ChannelPasswordChanged)       {}
func (BaseHandler) ChannelMoved(*Conn, *event.ChannelMoved)                           {}
func (BaseHandler) ChannelEdited(*Conn, *event.ChannelEdited)                         {}
func (BaseHandler) ChannelCreated(*Conn, *event.ChannelCreated)                       {}
func (BaseHandler) ChannelDeleted(*Conn, *event.ChannelDeleted)                       {}
func (BaseHandler) ClientMoved(*Conn, *event.ClientMoved)                             {}
func (BaseHandler) TextMessage(*Conn, *event.TextMessage)                             {}
func (BaseHandler) TokenUsed(*Conn, *event.TokenUsed)                                 {}

// logHandler is installed when no handler is set.
type logHandler struct {
	BaseHandler
	log *zap.Logger
}

func (h *logHandler) Error(c *Conn, err error) {
	h.log.Warn("Connection error", zap.Error(err))
}
