package protocol

import (
	"fmt"
)

// Request is a serialized command line without its terminator.
type Request struct {
	buf []byte
}

// RawRequest wraps an already formatted command line.
func RawRequest(line string) Request {
	return Request{buf: []byte(line)}
}

// Bytes returns the command line.
func (r Request) Bytes() []byte {
	return r.buf
}

func (r Request) String() string {
	return string(r.buf)
}

// Command returns the command name, the first token of the line.
func (r Request) Command() Command {
	for i, c := range r.buf {
		if c == ' ' {
			return Command(r.buf[:i])
		}
	}

	return Command(r.buf)
}

// RequestBuilder appends arguments to a command line.
//
//	req := protocol.NewRequest(protocol.CmdLogin).
//		Arg("client_login_name", "serveradmin").
//		Arg("client_login_password", password).
//		Build()
type RequestBuilder struct {
	buf []byte
}

// NewRequest starts a command line with the command name.
func NewRequest(cmd Command) *RequestBuilder {
	return &RequestBuilder{buf: []byte(cmd)}
}

// Arg appends a `key=value` argument. Values are encoded like Marshal does;
// types without a wire representation are formatted with %v and escaped.
func (b *RequestBuilder) Arg(key string, value interface{}) *RequestBuilder {
	b.buf = append(b.buf, ' ')
	b.buf = append(b.buf, key...)
	b.buf = append(b.buf, '=')

	encoded, err := AppendValue(b.buf, value)
	if err != nil {
		encoded = AppendEscaped(b.buf, fmt.Sprint(value))
	}

	b.buf = encoded
	return b
}

// ArgIf appends the argument only when cond holds.
func (b *RequestBuilder) ArgIf(cond bool, key string, value interface{}) *RequestBuilder {
	if !cond {
		return b
	}

	return b.Arg(key, value)
}

// Flag appends a bare option such as `-count`.
func (b *RequestBuilder) Flag(flag string) *RequestBuilder {
	b.buf = append(b.buf, ' ')
	b.buf = append(b.buf, flag...)
	return b
}

// FlagIf appends the flag only when cond holds.
func (b *RequestBuilder) FlagIf(cond bool, flag string) *RequestBuilder {
	if !cond {
		return b
	}

	return b.Flag(flag)
}

// Build returns the finished request. The builder must not be used
// afterwards.
func (b *RequestBuilder) Build() Request {
	return Request{buf: b.buf}
}
