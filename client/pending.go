package client

import (
	"github.com/luma/tsquery/protocol"
)

type reply struct {
	data []byte
	err  error
}

// pendingCommand is a request waiting in the queue or on the wire. reply
// has room for exactly one value, so resolving never blocks even when the
// caller has stopped waiting.
type pendingCommand struct {
	req   protocol.Request
	reply chan reply
}

func newPendingCommand(req protocol.Request) *pendingCommand {
	return &pendingCommand{
		req:   req,
		reply: make(chan reply, 1),
	}
}

func (p *pendingCommand) resolve(data []byte, err error) {
	select {
	case p.reply <- reply{data: data, err: err}:
	default:
		// already resolved
	}
}
