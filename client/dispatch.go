package client

import (
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/luma/tsquery/event"
)

// dispatch hands line to the handler if it is an event and reports whether
// it was one. The handler runs on its own goroutine, or on the event loop
// with OrderedEvents, so a slow handler never holds up replies.
func (c *Conn) dispatch(line []byte) bool {
	name, body := event.Split(line)
	if !event.Known(name) {
		return false
	}

	h := c.Handler()

	ev, err := event.Decode(name, body)
	if err != nil {
		c.report(h, err)
		return true
	}

	if c.events != nil {
		c.events.push(func() { c.deliver(h, ev) })
		return true
	}

	go c.deliver(h, ev)
	return true
}

func (c *Conn) deliver(h EventHandler, ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			c.report(h, &HandlerPanicError{
				Event: ev.EventName(),
				Value: r,
				Stack: debug.Stack(),
			})
		}
	}()

	switch e := ev.(type) {
	case *event.ClientEnterView:
		h.ClientEnterView(c, e)
	case *event.ClientLeftView:
		h.ClientLeftView(c, e)
	case *event.ServerEdited:
		h.ServerEdited(c, e)
	case *event.ChannelDescriptionChanged:
		h.ChannelDescriptionChanged(c, e)
	case *event.ChannelPasswordChanged:
		h.ChannelPasswordChanged(c, e)
	case *event.ChannelMoved:
		h.ChannelMoved(c, e)
	case *event.ChannelEdited:
		h.ChannelEdited(c, e)
	case *event.ChannelCreated:
		h.ChannelCreated(c, e)
	case *event.ChannelDeleted:
		h.ChannelDeleted(c, e)
	case *event.ClientMoved:
		h.ClientMoved(c, e)
	case *event.TextMessage:
		h.TextMessage(c, e)
	case *event.TokenUsed:
		h.TokenUsed(c, e)
	}
}

// report calls the Error hook of h on a new goroutine. A panicking Error hook
// is logged and otherwise ignored.
func (c *Conn) report(h EventHandler, err error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("Error handler panicked",
					zap.Any("panic", r),
					zap.NamedError("reported", err))
			}
		}()

		h.Error(c, err)
	}()
}
