package client

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/tsquery/protocol"
)

// Conn is a ServerQuery connection. It is safe for concurrent use: commands
// from any number of goroutines are queued and sent one at a time, and every
// caller receives the reply to its own command.
type Conn struct {
	ctx    context.Context
	cancel context.CancelFunc

	rwc   io.ReadWriteCloser
	lines *protocol.LineReader

	cmdQueue chan *pendingCommand
	replies  chan reply

	// writerDone is closed once the write loop has resolved every command it
	// will ever resolve
	writerDone chan struct{}

	handlerMu sync.RWMutex
	handler   EventHandler

	// events is nil unless events are delivered in order
	events *eventQueue

	closeOnce  sync.Once
	errMu      sync.Mutex
	err        error
	loopWaiter sync.WaitGroup

	keepAlive time.Duration

	log *zap.Logger
}

// Dial connects to the ServerQuery interface at addr, e.g. "localhost:10011".
// The deadline of ctx limits the connect and the greeting.
func Dial(ctx context.Context, addr string, options Options) (*Conn, error) {
	dialer := net.Dialer{Timeout: options.DialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, &TransportError{Op: "dial", Err: err}
		}
	}

	c, err := NewConn(conn, options)
	if err != nil {
		return nil, err
	}

	if err := conn.SetDeadline(time.Time{}); err != nil {
		return nil, multierr.Append(&TransportError{Op: "dial", Err: err}, c.Close())
	}

	return c, nil
}

// NewConn runs a connection over an established stream. It reads and
// discards the greeting, then starts the read, write and keepalive loops.
// The Conn owns rwc from here on, including on error.
func NewConn(rwc io.ReadWriteCloser, options Options) (*Conn, error) {
	options = options.withDefaults()

	lines := protocol.NewLineReader(rwc)
	if err := lines.SkipGreeting(); err != nil {
		rwc.Close()
		return nil, &TransportError{Op: "greeting", Err: err}
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Conn{
		ctx:        ctx,
		cancel:     cancel,
		rwc:        rwc,
		lines:      lines,
		cmdQueue:   make(chan *pendingCommand, options.QueueSize),
		replies:    make(chan reply, options.QueueSize),
		writerDone: make(chan struct{}),
		keepAlive:  options.KeepAlive,
		log:        options.Log,
	}

	if options.OrderedEvents {
		c.events = newEventQueue()
	}

	c.SetHandler(options.Handler)
	c.start()

	return c, nil
}

func (c *Conn) start() {
	loops := []func(){c.readLoop, c.writeLoop}
	if c.keepAlive > 0 {
		loops = append(loops, c.keepAliveLoop)
	}

	if c.events != nil {
		loops = append(loops, c.eventLoop)
	}

	c.loopWaiter.Add(len(loops))

	for _, loop := range loops {
		go func(loop func()) {
			defer c.loopWaiter.Done()
			loop()
		}(loop)
	}
}

// SetHandler replaces the event handler. Events dispatched afterwards use
// the new handler. A nil handler installs the default logging handler.
func (c *Conn) SetHandler(h EventHandler) {
	if h == nil {
		h = &logHandler{log: c.log.Named("handler")}
	}

	c.handlerMu.Lock()
	c.handler = h
	c.handlerMu.Unlock()
}

// Handler returns the current event handler.
func (c *Conn) Handler() EventHandler {
	c.handlerMu.RLock()
	defer c.handlerMu.RUnlock()

	return c.handler
}

// Send queues req and waits for its reply, which is decoded into v like
// protocol.Unmarshal does. v may be nil when the reply carries no data.
//
// A non zero status is returned as *protocol.Error, an undecodable reply as
// *DecodeError. Cancelling ctx stops waiting, but a command that was already
// queued is still sent and its reply discarded.
func (c *Conn) Send(ctx context.Context, req protocol.Request, v interface{}) error {
	data, err := c.roundTrip(ctx, req)
	if err != nil {
		return err
	}

	if err := protocol.Unmarshal(data, v); err != nil {
		return &DecodeError{Err: err}
	}

	return nil
}

// SendRaw sends a preformatted command line and returns the reply entries.
func (c *Conn) SendRaw(ctx context.Context, line string) (protocol.Response, error) {
	var resp protocol.Response

	if err := c.Send(ctx, protocol.RawRequest(line), &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Conn) roundTrip(ctx context.Context, req protocol.Request) ([]byte, error) {
	if !c.isRunning() {
		return nil, ErrClosed
	}

	cmd := newPendingCommand(req)

	select {
	case c.cmdQueue <- cmd:
	case <-c.ctx.Done():
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r.data, r.err

	case <-c.writerDone:
		// The write loop may have resolved the command just before stopping
		select {
		case r := <-cmd.reply:
			return r.data, r.err
		default:
			return nil, c.Err()
		}

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Err returns the reason the connection stopped, nil while it is running.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()

	return c.err
}

// Done is closed once the connection has stopped.
func (c *Conn) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close stops the connection and fails every pending command with
// ErrClosed. It returns the error that ended the connection earlier, if any,
// together with any error closing the stream.
func (c *Conn) Close() error {
	closeErr := c.shutdown(ErrClosed)
	c.loopWaiter.Wait()

	cause := c.Err()
	if errors.Is(cause, ErrClosed) || errors.Is(cause, io.EOF) {
		cause = nil
	}

	return multierr.Append(cause, closeErr)
}

// shutdown records cause and stops all loops. Only the first call has an
// effect.
func (c *Conn) shutdown(cause error) (err error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.err = cause
		c.errMu.Unlock()

		c.cancel()

		// Unblocks the read loop
		err = c.rwc.Close()
	})

	return err
}

func (c *Conn) readLoop() {
	log := c.log.Named("readLoop")

	defer log.Debug("Read loop exited")

	for {
		line, err := c.lines.ReadLine()
		if err != nil {
			c.readFailed(log, err)
			return
		}

		log.Debug("Received line", zap.ByteString("line", line))

		if c.dispatch(line) {
			continue
		}

		r, err := c.readReply(line)
		if err != nil {
			c.readFailed(log, err)
			return
		}

		select {
		case c.replies <- r:
		case <-c.ctx.Done():
			return
		}
	}
}

// readReply reads the rest of a reply starting with first. Events arriving
// before the status line are dispatched. The returned error is a read
// failure, reply errors are part of the reply.
func (c *Conn) readReply(first []byte) (reply, error) {
	if protocol.IsErrorLine(first) {
		return c.finishReply(nil, first), nil
	}

	var unexpected []byte

	for {
		line, err := c.lines.ReadLine()
		if err != nil {
			return reply{}, err
		}

		if c.dispatch(line) {
			continue
		}

		if !protocol.IsErrorLine(line) {
			// Keep reading to the status line so the next reply stays aligned
			if unexpected == nil {
				unexpected = line
			}

			continue
		}

		if unexpected != nil {
			return reply{err: &DecodeError{Err: &protocol.DecodeError{
				Kind:  protocol.UnexpectedLine,
				Value: string(unexpected),
			}}}, nil
		}

		return c.finishReply(first, line), nil
	}
}

func (c *Conn) finishReply(data, statusLine []byte) reply {
	status, err := protocol.ParseErrorLine(statusLine)
	if err != nil {
		return reply{err: &DecodeError{Err: err}}
	}

	if !status.OK() {
		return reply{err: status}
	}

	return reply{data: data}
}

func (c *Conn) readFailed(log *zap.Logger, err error) {
	if !c.isRunning() {
		// Closed locally
		return
	}

	terr := &TransportError{Op: "read", Err: err}

	if errors.Is(err, io.EOF) {
		log.Info("Server closed the connection")
	} else {
		log.Warn("Failed to read from server", zap.Error(err))
	}

	c.report(c.Handler(), terr)

	if cerr := c.shutdown(terr); cerr != nil {
		log.Debug("Failed to close connection cleanly", zap.Error(cerr))
	}
}

// writeLoop sends one command at a time and resolves it with the next
// reply, so replies are matched to commands in the order they were sent.
func (c *Conn) writeLoop() {
	log := c.log.Named("writeLoop")

	defer func() {
		c.failQueued()
		close(c.writerDone)
		log.Debug("Write loop exited")
	}()

	for {
		select {
		case <-c.ctx.Done():
			return

		case cmd := <-c.cmdQueue:
			log.Debug("Sending command", zap.String("command", string(cmd.req.Command())))

			if err := protocol.WriteRequest(c.rwc, cmd.req); err != nil {
				log.Warn("Failed to write command",
					zap.String("command", string(cmd.req.Command())),
					zap.Error(err))

				// Part of the line may have reached the server, whose reply
				// would then be matched to the next command
				terr := &TransportError{Op: "write", Err: err}
				c.report(c.Handler(), terr)

				if cerr := c.shutdown(terr); cerr != nil {
					log.Debug("Failed to close connection cleanly", zap.Error(cerr))
				}

				cmd.resolve(nil, terr)
				return
			}

			select {
			case r := <-c.replies:
				cmd.resolve(r.data, r.err)

			case <-c.ctx.Done():
				// A reply that arrived before the connection stopped still
				// belongs to this command
				select {
				case r := <-c.replies:
					cmd.resolve(r.data, r.err)
				default:
					cmd.resolve(nil, c.Err())
				}

				return
			}
		}
	}
}

func (c *Conn) failQueued() {
	cause := c.Err()

	for {
		select {
		case cmd := <-c.cmdQueue:
			cmd.resolve(nil, cause)
		default:
			return
		}
	}
}

func (c *Conn) keepAliveLoop() {
	log := c.log.Named("keepAlive")

	ticker := time.NewTicker(c.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.ctx, c.keepAlive)
			_, err := c.Version(ctx)
			cancel()

			if err != nil && c.isRunning() {
				log.Warn("Keepalive failed", zap.Error(err))
			}
		}
	}
}

// isRunning returns true if the connection has not stopped
func (c *Conn) isRunning() bool {
	select {
	case <-c.ctx.Done():
		return false

	default:
		return true
	}
}
