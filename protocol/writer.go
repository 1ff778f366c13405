package protocol

import (
	"io"
)

var (
	// Terminal ends every request line the client sends.
	Terminal = []byte("\n")

	// ServerTerminal ends every line a server sends.
	ServerTerminal = []byte("\n\r")
)

// WriteRequest writes req followed by the request terminator in a single
// Write call.
func WriteRequest(w io.Writer, req Request) error {
	b := make([]byte, 0, len(req.buf)+len(Terminal))
	b = append(b, req.buf...)
	b = append(b, Terminal...)

	_, err := w.Write(b)
	return err
}

// WriteLines writes server lines, each followed by ServerTerminal. It is
// used by servers and test doubles.
func WriteLines(w io.Writer, lines ...[]byte) error {
	if len(lines) == 0 {
		return nil
	}

	var b []byte
	for _, line := range lines {
		b = append(b, line...)
		b = append(b, ServerTerminal...)
	}

	_, err := w.Write(b)
	return err
}

// AppendErrorLine appends the trailing status line for id and msg.
func AppendErrorLine(dst []byte, id uint16, msg string) []byte {
	dst = append(dst, PrefixError...)
	dst = append(dst, " id="...)

	dst, _ = AppendValue(dst, id)
	dst = append(dst, " msg="...)
	return AppendEscaped(dst, msg)
}

// OKLine is the status line of a successful command.
func OKLine() []byte {
	return AppendErrorLine(nil, 0, "ok")
}
