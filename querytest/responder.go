package querytest

import (
	"bytes"
	"sync"

	"github.com/luma/tsquery/protocol"
)

// Request is a command received by the server.
type Request struct {
	Command protocol.Command
	Args    protocol.Entry
	Line    string
}

// ParseRequest splits a command line into its name and arguments.
func ParseRequest(line []byte) Request {
	name, rest := line, []byte(nil)
	if space := bytes.IndexByte(line, ' '); space >= 0 {
		name, rest = line[:space], line[space+1:]
	}

	return Request{
		Command: protocol.Command(name),
		Args:    protocol.ParseEntry(rest),
		Line:    string(line),
	}
}

// Reply is the answer to a command: optional data lines followed by a
// status line. A nil Err is sent as success.
type Reply struct {
	Data []string
	Err  *protocol.Error
}

// OK is an empty successful reply.
func OK() Reply {
	return Reply{}
}

// Data is a successful reply carrying lines.
func Data(lines ...string) Reply {
	return Reply{Data: lines}
}

// Fail is a reply with a non zero status.
func Fail(id uint16, msg string) Reply {
	return Reply{Err: &protocol.Error{ID: id, Msg: msg}}
}

// ErrCommandNotFound is what servers answer to unknown commands.
var ErrCommandNotFound = &protocol.Error{ID: 256, Msg: "command not found"}

// Bytes renders the reply as server lines.
func (r Reply) Bytes() []byte {
	var buf bytes.Buffer

	for _, line := range r.Data {
		buf.WriteString(line)
		buf.Write(protocol.ServerTerminal)
	}

	if r.Err == nil {
		buf.Write(protocol.OKLine())
	} else {
		buf.Write(protocol.AppendErrorLine(nil, r.Err.ID, r.Err.Msg))
	}

	buf.Write(protocol.ServerTerminal)
	return buf.Bytes()
}

// Responder answers the commands of a connection. Respond may be called
// from several connections at once.
type Responder interface {
	Respond(req Request) Reply
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(req Request) Reply

func (f ResponderFunc) Respond(req Request) Reply {
	return f(req)
}

// Mux routes commands to responders by name. Unknown commands fail with
// ErrCommandNotFound.
type Mux struct {
	mu       sync.RWMutex
	handlers map[protocol.Command]Responder
}

// NewMux returns a Mux answering the session commands a client needs to get
// started: version, whoami, login, logout, use and servernotifyregister.
func NewMux() *Mux {
	m := &Mux{handlers: make(map[protocol.Command]Responder)}

	m.HandleReply(protocol.CmdVersion, Data("version=3.13.7 build=1655727713 platform=Linux"))
	m.HandleReply(protocol.CmdWhoAmI, Data(`virtualserver_status=online virtualserver_id=1 virtualserver_port=9987 client_id=1 client_channel_id=1 client_nickname=serveradmin client_database_id=1 client_login_name=serveradmin client_unique_identifier=serveradmin client_origin_server_id=0`))

	for _, cmd := range []protocol.Command{
		protocol.CmdLogin,
		protocol.CmdLogout,
		protocol.CmdUse,
		protocol.CmdServerNotifyRegister,
	} {
		m.HandleReply(cmd, OK())
	}

	return m
}

// Handle answers cmd with r, replacing any earlier responder.
func (m *Mux) Handle(cmd protocol.Command, r Responder) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[cmd] = r
}

// HandleReply answers cmd with a fixed reply.
func (m *Mux) HandleReply(cmd protocol.Command, reply Reply) {
	m.Handle(cmd, ResponderFunc(func(Request) Reply {
		return reply
	}))
}

func (m *Mux) Respond(req Request) Reply {
	m.mu.RLock()
	r, ok := m.handlers[req.Command]
	m.mu.RUnlock()

	if !ok {
		return Reply{Err: ErrCommandNotFound}
	}

	return r.Respond(req)
}
