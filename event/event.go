// Package event decodes the notifications a ServerQuery server pushes after
// servernotifyregister.
package event

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/luma/tsquery/protocol"
)

var (
	// ErrUnknownEvent is returned for lines that are not notifications. A
	// reader should treat such a line as part of a command reply.
	ErrUnknownEvent = errors.New("not an event")
)

// Name is the first token of a notification line.
type Name string

const (
	NameClientEnterView           Name = "notifycliententerview"
	NameClientLeftView            Name = "notifyclientleftview"
	NameServerEdited              Name = "notifyserveredited"
	NameChannelDescriptionChanged Name = "notifychanneldescriptionchanged"
	NameChannelPasswordChanged    Name = "notifychannelpasswordchanged"
	NameChannelMoved              Name = "notifychannelmoved"
	NameChannelEdited             Name = "notifychanneledited"
	NameChannelCreated            Name = "notifychannelcreated"
	NameChannelDeleted            Name = "notifychanneldeleted"
	NameClientMoved               Name = "notifyclientmoved"
	NameTextMessage               Name = "notifytextmessage"
	NameTokenUsed                 Name = "notifytokenused"
)

// Event is a decoded notification.
type Event interface {
	EventName() Name
}

var registry = map[Name]func() Event{
	NameClientEnterView:           func() Event { return &ClientEnterView{} },
	NameClientLeftView:            func() Event { return &ClientLeftView{} },
	NameServerEdited:              func() Event { return &ServerEdited{} },
	NameChannelDescriptionChanged: func() Event { return &ChannelDescriptionChanged{} },
	NameChannelPasswordChanged:    func() Event { return &ChannelPasswordChanged{} },
	NameChannelMoved:              func() Event { return &ChannelMoved{} },
	NameChannelEdited:             func() Event { return &ChannelEdited{} },
	NameChannelCreated:            func() Event { return &ChannelCreated{} },
	NameChannelDeleted:            func() Event { return &ChannelDeleted{} },
	NameClientMoved:               func() Event { return &ClientMoved{} },
	NameTextMessage:               func() Event { return &TextMessage{} },
	NameTokenUsed:                 func() Event { return &TokenUsed{} },
}

// Names returns every known notification name.
func Names() []Name {
	names := make([]Name, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	return names
}

// Known reports whether name is a notification this package decodes.
func Known(name Name) bool {
	_, ok := registry[name]
	return ok
}

// Split separates the name of a line from its body on the first space.
func Split(line []byte) (Name, []byte) {
	space := bytes.IndexByte(line, ' ')
	if space < 0 {
		return Name(line), nil
	}

	return Name(line[:space]), line[space+1:]
}

// Decode decodes the body of a notification. Unknown names return
// ErrUnknownEvent.
func Decode(name Name, body []byte) (Event, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("Failed to decode '%s': %w", name, ErrUnknownEvent)
	}

	ev := factory()
	if err := protocol.Unmarshal(body, ev); err != nil {
		return nil, err
	}

	return ev, nil
}

// Parse splits and decodes a full notification line.
func Parse(line []byte) (Event, error) {
	name, body := Split(line)
	return Decode(name, body)
}
