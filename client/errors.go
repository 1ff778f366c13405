package client

import (
	"errors"
	"fmt"

	"github.com/luma/tsquery/event"
)

var (
	// ErrClosed is returned for commands sent on, or pending in, a closed
	// connection.
	ErrClosed = errors.New("connection closed")

	// ErrNoBanTarget is returned by BanAdd when no rule would match anyone.
	ErrNoBanTarget = errors.New("ban needs an ip, name, uid or mytsid")
)

// TransportError is a failure of the underlying connection.
type TransportError struct {
	// Op is the failed operation: "dial", "greeting", "read" or "write".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ServerQuery %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a reply arrived but could not be decoded.
// Err is one of the protocol package decode errors.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// HandlerPanicError is reported through EventHandler.Error when an event
// method panics.
type HandlerPanicError struct {
	Event event.Name
	Value interface{}
	Stack []byte
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("handler panicked on %s: %v", e.Event, e.Value)
}
