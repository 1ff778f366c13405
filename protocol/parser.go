package protocol

import (
	"bufio"
	"io"
)

const (
	// GreetingLines is the number of banner lines a server sends on connect.
	GreetingLines = 2
)

// LineReader reads ServerQuery lines from a stream.
//
// Servers terminate lines with the two bytes "\n\r", most other tooling
// uses "\r\n". LineReader reads up to every '\n' and trims carriage returns
// and line feeds from both ends of the line, so either convention yields
// the same lines. Blank lines are skipped.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader returns a LineReader reading from r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next non blank line without its terminator. The
// returned slice is owned by the caller. A final unterminated line is still
// returned, the read error surfaces on the following call.
func (l *LineReader) ReadLine() ([]byte, error) {
	for {
		line, err := l.r.ReadBytes('\n')

		line = TrimTerminator(line)
		if len(line) > 0 {
			return line, nil
		}

		if err != nil {
			return nil, err
		}
	}
}

// SkipGreeting discards the banner sent on connect.
func (l *LineReader) SkipGreeting() error {
	for i := 0; i < GreetingLines; i++ {
		if _, err := l.ReadLine(); err != nil {
			return err
		}
	}

	return nil
}

// TrimTerminator removes any '\r' and '\n' bytes from both ends of data.
func TrimTerminator(data []byte) []byte {
	start, end := 0, len(data)

	for start < end && isTerminator(data[start]) {
		start++
	}

	for end > start && isTerminator(data[end-1]) {
		end--
	}

	return data[start:end]
}

func isTerminator(c byte) bool {
	return c == '\r' || c == '\n'
}
