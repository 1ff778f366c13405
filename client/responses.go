package client

import (
	"github.com/luma/tsquery/protocol"
)

// Version is the reply to version.
type Version struct {
	Version  string `query:"version"`
	Build    uint64 `query:"build"`
	Platform string `query:"platform"`
}

// WhoAmI is the reply to whoami.
type WhoAmI struct {
	ServerStatus           string                    `query:"virtualserver_status"`
	ServerID               protocol.ServerID         `query:"virtualserver_id"`
	ServerUniqueIdentifier string                    `query:"virtualserver_unique_identifier"`
	ServerPort             uint16                    `query:"virtualserver_port"`
	ClientID               protocol.ClientID         `query:"client_id"`
	ChannelID              protocol.ChannelID        `query:"client_channel_id"`
	Nickname               string                    `query:"client_nickname"`
	DatabaseID             protocol.ClientDatabaseID `query:"client_database_id"`
	LoginName              string                    `query:"client_login_name"`
	UniqueIdentifier       string                    `query:"client_unique_identifier"`
	OriginServerID         protocol.ServerID         `query:"client_origin_server_id"`
}

// APIKey is returned by apikeyadd and apikeylist.
type APIKey struct {
	APIKey           string                    `query:"apikey"`
	ID               uint64                    `query:"id"`
	ServerID         protocol.ServerID         `query:"sid"`
	ClientDatabaseID protocol.ClientDatabaseID `query:"cldbid"`
	Scope            protocol.APIKeyScope      `query:"scope"`

	// Seconds until the key expires
	TimeLeft uint64 `query:"time_left"`
}

// BanID is the reply to banadd.
type BanID struct {
	ID uint64 `query:"banid"`
}
