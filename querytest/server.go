// Package querytest runs a fake ServerQuery server for tests and local
// development.
package querytest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/tsquery/protocol"
)

const (
	DefaultWelcome = "Welcome to the TeamSpeak 3 ServerQuery interface, type \"help\" for a list of commands."

	writeQueueSize = 127
)

var (
	ErrNotStarted = errors.New("server not started")
	ErrConnClosed = errors.New("connection closed")
)

type Server struct {
	ctx        context.Context
	cancel     context.CancelFunc
	stopWaiter sync.WaitGroup

	addr      string
	reuseport bool
	welcome   string
	responder Responder

	listener net.Listener

	mu          sync.Mutex
	activeConns map[*serverConn]struct{}

	log *zap.Logger
}

func NewServer(options Options) *Server {
	if options.Responder == nil {
		options.Responder = NewMux()
	}

	if options.Welcome == "" {
		options.Welcome = DefaultWelcome
	}

	if options.Log == nil {
		options.Log = zap.NewNop()
	}

	return &Server{
		addr:        net.JoinHostPort(options.Host, strconv.Itoa(options.Port)),
		reuseport:   options.Reuseport,
		welcome:     options.Welcome,
		responder:   options.Responder,
		activeConns: make(map[*serverConn]struct{}),
		log:         options.Log,
	}
}

// Start binds the listener and accepts connections in the background. The
// server is reachable once Start returns.
func (s *Server) Start(parentCtx context.Context) error {
	var (
		listener net.Listener
		err      error
	)

	if s.reuseport {
		listener, err = reuseport.Listen("tcp", s.addr)
	} else {
		listener, err = net.Listen("tcp", s.addr)
	}

	if err != nil {
		return fmt.Errorf("Failed to listen on %s: %w", s.addr, err)
	}

	s.ctx, s.cancel = context.WithCancel(parentCtx)
	s.listener = listener

	s.log.Info("Listening", zap.String("addr", listener.Addr().String()))

	s.stopWaiter.Add(1)
	go func() {
		defer s.stopWaiter.Done()
		s.acceptLoop()
	}()

	go func() {
		<-s.ctx.Done()

		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Warn("Listener did not close cleanly", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}

	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	log := s.log.Named("acceptLoop")

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				// The listener was closed while we were waiting for new
				// connections, that's fine.
				log.Info("Stopped accepting new connections")
				return
			}

			log.Error("Failed to accept", zap.Error(err))
			return
		}

		sc := newServerConn(s.ctx, conn, s.responder, s.log.Named("conn").With(zap.String("remote", conn.RemoteAddr().String())))
		s.addConn(sc)

		s.stopWaiter.Add(1)
		go func() {
			defer s.stopWaiter.Done()
			defer s.removeConn(sc)

			sc.Start(s.welcome)
		}()
	}
}

// Notify sends an event line, e.g. "notifytextmessage targetmode=3 msg=hi",
// to every connected client.
func (s *Server) Notify(line string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := append([]byte(line), protocol.ServerTerminal...)

	for conn := range s.activeConns {
		if cerr := conn.Write(data); cerr != nil {
			err = multierr.Append(err, cerr)
		}
	}

	return err
}

// NumConns returns the number of connected clients.
func (s *Server) NumConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.activeConns)
}

// Close immediately closes the listener and all connections.
func (s *Server) Close() (err error) {
	if s.cancel == nil {
		return ErrNotStarted
	}

	s.log.Info("Stopping server")
	s.cancel()

	s.mu.Lock()
	conns := make([]*serverConn, 0, len(s.activeConns))
	for conn := range s.activeConns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		err = multierr.Append(err, conn.Close())
	}

	s.stopWaiter.Wait()
	s.log.Info("Server stopped")

	return err
}

func (s *Server) addConn(conn *serverConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeConns[conn] = struct{}{}
}

func (s *Server) removeConn(conn *serverConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.activeConns, conn)
}

type serverConn struct {
	ctx        context.Context
	cancel     context.CancelFunc
	loopWaiter sync.WaitGroup
	closeOnce  sync.Once

	conn      net.Conn
	responder Responder

	writeQueue chan []byte

	log *zap.Logger
}

func newServerConn(
	parentCtx context.Context,
	conn net.Conn,
	responder Responder,
	log *zap.Logger,
) *serverConn {
	ctx, cancel := context.WithCancel(parentCtx)

	return &serverConn{
		ctx:        ctx,
		cancel:     cancel,
		conn:       conn,
		responder:  responder,
		writeQueue: make(chan []byte, writeQueueSize),
		log:        log,
	}
}

// Start greets the client and serves it until either side closes.
func (s *serverConn) Start(welcome string) {
	var greeting []byte
	greeting = append(greeting, "TS3"...)
	greeting = append(greeting, protocol.ServerTerminal...)
	greeting = append(greeting, welcome...)
	greeting = append(greeting, protocol.ServerTerminal...)

	s.writeQueue <- greeting

	s.loopWaiter.Add(2)

	go func() {
		defer s.loopWaiter.Done()
		s.ReadLoop()
	}()

	go func() {
		defer s.loopWaiter.Done()
		s.WriteLoop()
	}()

	s.loopWaiter.Wait()
	s.cancel()
}

func (s *serverConn) Close() (err error) {
	s.closeOnce.Do(func() {
		s.cancel()
		err = s.conn.Close()
	})

	if errors.Is(err, net.ErrClosed) {
		err = nil
	}

	return err
}

func (s *serverConn) ReadLoop() {
	log := s.log.Named("readLoop")

	defer func() {
		// Lets the write loop flush and exit
		s.enqueue(nil)
		log.Debug("Read loop exited")
	}()

	lines := protocol.NewLineReader(s.conn)

	for {
		line, err := lines.ReadLine()
		if err != nil {
			if s.isRunning() && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Warn("Failed to read client request", zap.Error(err))
			}

			return
		}

		req := ParseRequest(line)
		log.Debug("Received command", zap.String("line", req.Line))

		if req.Command == protocol.CmdQuit {
			s.enqueue(OK().Bytes())
			log.Info("Client quit, exiting...")
			return
		}

		s.enqueue(s.responder.Respond(req).Bytes())
	}
}

func (s *serverConn) WriteLoop() {
	log := s.log.Named("writeLoop")

	defer func() {
		if err := s.Close(); err != nil {
			log.Warn("Failed to close connection cleanly", zap.Error(err))
		}

		log.Debug("Write loop exited")
	}()

	for {
		select {
		case <-s.ctx.Done():
			return

		case data := <-s.writeQueue:
			if data == nil {
				// Our read loop has terminated, we should too
				return
			}

			if _, err := s.conn.Write(data); err != nil {
				log.Warn("Failed to write from write queue", zap.Error(err))
				return
			}
		}
	}
}

// Write queues data for the write loop.
func (s *serverConn) Write(data []byte) error {
	if !s.isRunning() {
		return ErrConnClosed
	}

	if !s.enqueue(data) {
		return ErrConnClosed
	}

	return nil
}

func (s *serverConn) enqueue(data []byte) bool {
	select {
	case s.writeQueue <- data:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// isRunning returns true if Close has not been called
func (s *serverConn) isRunning() bool {
	select {
	case <-s.ctx.Done():
		return false

	default:
		return true
	}
}
