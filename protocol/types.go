package protocol

import (
	"strconv"
)

// ServerID identifies a virtual server.
type ServerID uint64

// ClientID identifies a client for the lifetime of its connection.
type ClientID uint64

// ClientDatabaseID identifies a client across connections.
type ClientDatabaseID uint64

// ChannelID identifies a channel.
type ChannelID uint64

// ServerGroupID identifies a server group.
type ServerGroupID uint64

// ChannelGroupID identifies a channel group.
type ChannelGroupID uint64

func (id ServerID) String() string         { return strconv.FormatUint(uint64(id), 10) }
func (id ClientID) String() string         { return strconv.FormatUint(uint64(id), 10) }
func (id ClientDatabaseID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id ChannelID) String() string        { return strconv.FormatUint(uint64(id), 10) }
func (id ServerGroupID) String() string    { return strconv.FormatUint(uint64(id), 10) }
func (id ChannelGroupID) String() string   { return strconv.FormatUint(uint64(id), 10) }

// APIKeyScope is the access level of an API key.
type APIKeyScope string

const (
	ScopeManage APIKeyScope = "manage"
	ScopeWrite  APIKeyScope = "write"
	ScopeRead   APIKeyScope = "read"
)

func (s *APIKeyScope) UnmarshalQuery(data []byte) error {
	value, err := Unescape(data)
	if err != nil {
		return err
	}

	switch scope := APIKeyScope(value); scope {
	case ScopeManage, ScopeWrite, ScopeRead:
		*s = scope
		return nil
	default:
		return &DecodeError{Kind: InvalidValue, Value: value}
	}
}

func (s APIKeyScope) AppendQuery(dst []byte) []byte {
	return append(dst, s...)
}

// TargetMode is the audience of a text message.
type TargetMode uint8

const (
	TargetClient  TargetMode = 1
	TargetChannel TargetMode = 2
	TargetServer  TargetMode = 3
)

// TextMessageTarget is the `targetmode` argument of sendtextmessage. Only
// client targets carry an id.
type TextMessageTarget struct {
	Mode   TargetMode
	Client ClientID
}

// ToClient addresses a private message.
func ToClient(clid ClientID) TextMessageTarget {
	return TextMessageTarget{Mode: TargetClient, Client: clid}
}

// ToChannel addresses the channel of the query client.
func ToChannel() TextMessageTarget {
	return TextMessageTarget{Mode: TargetChannel}
}

// ToServer addresses the whole virtual server.
func ToServer() TextMessageTarget {
	return TextMessageTarget{Mode: TargetServer}
}

func (t TextMessageTarget) AppendQuery(dst []byte) []byte {
	dst = strconv.AppendUint(dst, uint64(t.Mode), 10)
	if t.Mode == TargetClient {
		dst = append(dst, " target="...)
		dst = strconv.AppendUint(dst, uint64(t.Client), 10)
	}

	return dst
}

// NotifyEvent is an event category for servernotifyregister.
type NotifyEvent string

const (
	NotifyServer      NotifyEvent = "server"
	NotifyChannel     NotifyEvent = "channel"
	NotifyTextServer  NotifyEvent = "textserver"
	NotifyTextChannel NotifyEvent = "textchannel"
	NotifyTextPrivate NotifyEvent = "textprivate"
	NotifyTokenUsed   NotifyEvent = "tokenused"
)

// NotifyRegistration is the `event` argument of servernotifyregister.
// Channel registrations are limited to the channel in ChannelID.
type NotifyRegistration struct {
	Event     NotifyEvent
	ChannelID ChannelID
}

func (n NotifyRegistration) AppendQuery(dst []byte) []byte {
	dst = append(dst, n.Event...)
	if n.Event == NotifyChannel {
		dst = append(dst, " id="...)
		dst = strconv.AppendUint(dst, uint64(n.ChannelID), 10)
	}

	return dst
}

var (
	_ Unmarshaler = (*APIKeyScope)(nil)
	_ Marshaler   = APIKeyScope("")
	_ Marshaler   = TextMessageTarget{}
	_ Marshaler   = NotifyRegistration{}
)
