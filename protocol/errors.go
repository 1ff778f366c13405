package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNotErrorLine = errors.New("Line is not a ServerQuery error line")

	// PrefixError starts the trailing status line of every command reply
	PrefixError = []byte("error")
)

// DecodeErrorKind describes what was wrong with a malformed piece of wire text.
type DecodeErrorKind int

const (
	// UnexpectedEOF means the input ended where more bytes were required,
	// e.g. a trailing escape byte or an empty boolean.
	UnexpectedEOF DecodeErrorKind = iota

	// UnexpectedByte means a byte that is not valid at its position, e.g. an
	// unknown escape letter.
	UnexpectedByte

	// InvalidValue means a well formed value outside of an enumeration.
	InvalidValue

	// UnexpectedLine means a reply line arrived where the trailing error line
	// was required.
	UnexpectedLine
)

func (k DecodeErrorKind) String() string {
	switch k {
	case UnexpectedEOF:
		return "unexpected eof"
	case UnexpectedByte:
		return "unexpected byte"
	case InvalidValue:
		return "invalid value"
	case UnexpectedLine:
		return "unexpected line"
	default:
		return "unknown decode error"
	}
}

// DecodeError is returned when wire text cannot be decoded.
type DecodeError struct {
	Kind DecodeErrorKind

	// Byte is set for UnexpectedByte
	Byte byte

	// Value holds the offending text for InvalidValue and UnexpectedLine
	Value string
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case UnexpectedByte:
		return fmt.Sprintf("%s: %q", e.Kind, e.Byte)
	case InvalidValue, UnexpectedLine:
		return fmt.Sprintf("%s: %q", e.Kind, e.Value)
	default:
		return e.Kind.String()
	}
}

// ParseIntError is returned when an integer field does not hold a base 10
// number that fits the target type.
type ParseIntError struct {
	Value string
	Err   error
}

func (e *ParseIntError) Error() string {
	return fmt.Sprintf("failed to parse integer %q: %v", e.Value, e.Err)
}

func (e *ParseIntError) Unwrap() error {
	return e.Err
}

// FieldError wraps a decode failure of a single record field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// InvalidUnmarshalError describes an invalid argument passed to Unmarshal.
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "protocol: Unmarshal(nil)"
	}

	if e.Type.Kind() != reflect.Ptr {
		return "protocol: Unmarshal(non-pointer " + e.Type.String() + ")"
	}

	return "protocol: Unmarshal(nil " + e.Type.String() + ")"
}

// UnsupportedTypeError is returned when a value has no wire representation.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "protocol: unsupported type " + e.Type.String()
}

// Error is the status the server sends as the last line of every command
// reply. An ID of 0 means the command succeeded.
type Error struct {
	ID  uint16 `query:"id"`
	Msg string `query:"msg"`

	// Only sent for some failures, e.g. missing permissions
	ExtraMsg     string `query:"extra_msg"`
	FailedPermID uint64 `query:"failed_permid"`
}

func (e *Error) Error() string {
	if e.ExtraMsg != "" {
		return fmt.Sprintf("ServerQuery error %d: %s (%s)", e.ID, e.Msg, e.ExtraMsg)
	}

	return fmt.Sprintf("ServerQuery error %d: %s", e.ID, e.Msg)
}

// OK reports whether the status signals success.
func (e *Error) OK() bool {
	return e.ID == 0
}

// Is matches any *Error with the same ID, so callers can compare against a
// template like &protocol.Error{ID: 512}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.ID == t.ID
}

// IsErrorLine reports whether line is a trailing status line.
func IsErrorLine(line []byte) bool {
	if !bytes.HasPrefix(line, PrefixError) {
		return false
	}

	return len(line) == len(PrefixError) || line[len(PrefixError)] == ' '
}

// ParseErrorLine decodes a line of the form `error id=<n> msg=<text>`.
func ParseErrorLine(line []byte) (*Error, error) {
	if !IsErrorLine(line) {
		return nil, fmt.Errorf("Failed to parse '%s': %w", string(line), ErrNotErrorLine)
	}

	status := &Error{}
	if err := Unmarshal(line[len(PrefixError):], status); err != nil {
		return nil, err
	}

	return status, nil
}
