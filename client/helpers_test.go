package client_test

import (
	"errors"
	"io"
	"net"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/tsquery/client"
	"github.com/luma/tsquery/event"
	"github.com/luma/tsquery/protocol"
)

// fakeServer is the server end of an in memory connection.
type fakeServer struct {
	conn  net.Conn
	lines *protocol.LineReader
}

func newPipeConn(options client.Options) (*client.Conn, *fakeServer) {
	serverSide, clientSide := net.Pipe()

	srv := &fakeServer{
		conn:  serverSide,
		lines: protocol.NewLineReader(serverSide),
	}

	greeted := make(chan struct{})
	go func() {
		defer GinkgoRecover()
		defer close(greeted)

		srv.write("TS3", "Welcome to the TeamSpeak 3 ServerQuery interface.")
	}()

	c, err := client.NewConn(clientSide, options)
	Expect(err).To(Succeed())
	<-greeted

	return c, srv
}

// expect reads the next command and checks it.
func (s *fakeServer) expect(line string) {
	got, err := s.lines.ReadLine()
	Expect(err).To(Succeed())
	Expect(string(got)).To(Equal(line))
}

func (s *fakeServer) read() string {
	got, err := s.lines.ReadLine()
	Expect(err).To(Succeed())
	return string(got)
}

func (s *fakeServer) write(lines ...string) {
	raw := make([][]byte, 0, len(lines))
	for _, line := range lines {
		raw = append(raw, []byte(line))
	}

	Expect(protocol.WriteLines(s.conn, raw...)).To(Succeed())
}

// reply writes the data lines followed by a successful status.
func (s *fakeServer) reply(lines ...string) {
	s.write(append(lines, string(protocol.OKLine()))...)
}

func (s *fakeServer) Close() {
	s.conn.Close()
}

// recordingHandler forwards text messages and errors to channels.
type recordingHandler struct {
	client.BaseHandler

	messages chan *event.TextMessage
	errors   chan error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		messages: make(chan *event.TextMessage, 16),
		errors:   make(chan error, 16),
	}
}

func (h *recordingHandler) TextMessage(c *client.Conn, ev *event.TextMessage) {
	h.messages <- ev
}

func (h *recordingHandler) Error(c *client.Conn, err error) {
	h.errors <- err
}

// blockingHandler holds every text message until gate is closed.
type blockingHandler struct {
	*recordingHandler
	gate chan struct{}
}

func (h *blockingHandler) TextMessage(c *client.Conn, ev *event.TextMessage) {
	<-h.gate
	h.recordingHandler.TextMessage(c, ev)
}

type panickingHandler struct {
	*recordingHandler
}

func (h *panickingHandler) TextMessage(c *client.Conn, ev *event.TextMessage) {
	panic("boom")
}

var errBrokenPipe = errors.New("broken pipe")

// brokenWriter reads normally but every write fails.
type brokenWriter struct {
	*io.PipeReader
}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errBrokenPipe
}
