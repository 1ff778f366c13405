package presence

import (
	"context"

	"github.com/luma/tsquery/client"
	"github.com/luma/tsquery/protocol"
)

type clientListEntry struct {
	ClientID     protocol.ClientID         `query:"clid"`
	ChannelID    protocol.ChannelID        `query:"cid"`
	DatabaseID   protocol.ClientDatabaseID `query:"client_database_id"`
	Nickname     string                    `query:"client_nickname"`
	Type         uint8                     `query:"client_type"`
	UID          string                    `query:"client_unique_identifier"`
	Away         bool                      `query:"client_away"`
	ServerGroups []protocol.ServerGroupID  `query:"client_servergroups,comma"`
}

type channelListEntry struct {
	ChannelID protocol.ChannelID `query:"cid"`
	ParentID  protocol.ChannelID `query:"pid"`
	Order     uint64             `query:"channel_order"`
	Name      string             `query:"channel_name"`
	Topic     string             `query:"channel_topic"`
}

// Seed replaces the tracked clients and channels with the current ones of
// the selected virtual server. Counters are kept.
func (t *Tracker) Seed(ctx context.Context, c *client.Conn) error {
	var clients []clientListEntry

	req := protocol.NewRequest(protocol.CmdClientList).Flag("-uid").Flag("-away").Flag("-groups").Build()
	if err := c.Send(ctx, req, &clients); err != nil {
		return err
	}

	var channels []channelListEntry

	req = protocol.NewRequest(protocol.CmdChannelList).Flag("-topic").Build()
	if err := c.Send(ctx, req, &channels); err != nil {
		return err
	}

	for _, prefix := range []string{KeyClientsPrefix, KeyChannelsPrefix} {
		if err := t.store.Delete(ctx, prefix); err != nil {
			return err
		}
	}

	for _, cl := range clients {
		if cl.Type == queryClientType {
			continue
		}

		err := t.store.Set(ctx, ClientKey(cl.ClientID), Client{
			Nickname:     cl.Nickname,
			UID:          cl.UID,
			DatabaseID:   uint64(cl.DatabaseID),
			Channel:      uint64(cl.ChannelID),
			Away:         cl.Away,
			ServerGroups: cl.ServerGroups,
		})
		if err != nil {
			return err
		}
	}

	for _, ch := range channels {
		err := t.store.Set(ctx, ChannelKey(ch.ChannelID), Channel{
			Name:   ch.Name,
			Topic:  ch.Topic,
			Parent: uint64(ch.ParentID),
			Order:  ch.Order,
		})
		if err != nil {
			return err
		}
	}

	return nil
}
