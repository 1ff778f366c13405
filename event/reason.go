package event

import (
	"strconv"

	"github.com/luma/tsquery/protocol"
)

// ReasonID says why an event happened.
type ReasonID uint8

const (
	// Switched channel themselves or joined the server
	ReasonSwitchChannel ReasonID = iota
	// Moved by another client or channel
	ReasonMoved
	// Timed out
	ReasonTimeout
	ReasonChannelKick
	ReasonServerKick
	ReasonBan
	// Left the server themselves
	ReasonServerLeave
	ReasonEdited
	ReasonServerShutdown
)

var reasonNames = [...]string{
	ReasonSwitchChannel:  "switch_channel",
	ReasonMoved:          "moved",
	ReasonTimeout:        "timeout",
	ReasonChannelKick:    "channel_kick",
	ReasonServerKick:     "server_kick",
	ReasonBan:            "ban",
	ReasonServerLeave:    "server_leave",
	ReasonEdited:         "edited",
	ReasonServerShutdown: "server_shutdown",
}

func (r ReasonID) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}

	return "reason(" + strconv.Itoa(int(r)) + ")"
}

func (r *ReasonID) UnmarshalQuery(data []byte) error {
	var n uint8
	if err := protocol.Unmarshal(data, &n); err != nil {
		return err
	}

	if int(n) >= len(reasonNames) {
		return &protocol.DecodeError{Kind: protocol.InvalidValue, Value: string(data)}
	}

	*r = ReasonID(n)
	return nil
}

func (r ReasonID) AppendQuery(dst []byte) []byte {
	return strconv.AppendUint(dst, uint64(r), 10)
}

var (
	_ protocol.Unmarshaler = (*ReasonID)(nil)
	_ protocol.Marshaler   = ReasonID(0)
)
