package event

import (
	"github.com/luma/tsquery/protocol"
)

// Invoker is the client that caused an event. It is embedded in the events
// that carry one.
type Invoker struct {
	InvokerID   protocol.ClientID `query:"invokerid"`
	InvokerName string            `query:"invokername"`
	InvokerUID  string            `query:"invokeruid"`
}

// ClientEnterView is sent when a client comes into view, usually by
// connecting.
type ClientEnterView struct {
	FromChannel   protocol.ChannelID `query:"cfid"`
	TargetChannel protocol.ChannelID `query:"ctid"`
	Reason        ReasonID           `query:"reasonid"`
	ClientID      protocol.ClientID  `query:"clid"`

	UniqueIdentifier string                    `query:"client_unique_identifier"`
	Nickname         string                    `query:"client_nickname"`
	InputMuted       bool                      `query:"client_input_muted"`
	OutputMuted      bool                      `query:"client_output_muted"`
	OutputOnlyMuted  bool                      `query:"client_outputonly_muted"`
	InputHardware    uint64                    `query:"client_input_hardware"`
	OutputHardware   uint64                    `query:"client_output_hardware"`
	IsRecording      bool                      `query:"client_is_recording"`
	DatabaseID       protocol.ClientDatabaseID `query:"client_database_id"`
	ChannelGroupID   protocol.ChannelGroupID   `query:"client_channel_group_id"`
	ServerGroups     []protocol.ServerGroupID  `query:"client_servergroups,comma"`
	Away             bool                      `query:"client_away"`
	AwayMessage      string                    `query:"client_away_message"`
	Type             uint8                     `query:"client_type"`
	TalkPower        uint64                    `query:"client_talk_power"`
	TalkRequest      bool                      `query:"client_talk_request"`
	TalkRequestMsg   string                    `query:"client_talk_request_msg"`
	Description      string                    `query:"client_description"`
	IsTalker         bool                      `query:"client_is_talker"`
	NicknamePhonetic string                    `query:"client_nickname_phonetic"`
	NeededViewPower  uint64                    `query:"client_needed_serverquery_view_power"`
	IconID           uint64                    `query:"client_icon_id"`
	Country          string                    `query:"client_country"`
	InheritedChannel protocol.ChannelID        `query:"client_channel_group_inherited_channel_id"`
	Badges           string                    `query:"client_badges"`
}

// ClientLeftView is sent when a client disconnects or leaves the view.
type ClientLeftView struct {
	FromChannel   protocol.ChannelID `query:"cfid"`
	TargetChannel protocol.ChannelID `query:"ctid"`
	Reason        ReasonID           `query:"reasonid"`
	Invoker
	ReasonMsg string            `query:"reasonmsg"`
	BanTime   uint64            `query:"bantime"`
	ClientID  protocol.ClientID `query:"clid"`
}

// ServerEdited is sent when the virtual server settings change. Only changed
// settings are included.
type ServerEdited struct {
	Reason ReasonID `query:"reasonid"`
	Invoker

	Name                   string                  `query:"virtualserver_name"`
	CodecEncryptionMode    string                  `query:"virtualserver_codec_encryption_mode"`
	DefaultServerGroup     protocol.ServerGroupID  `query:"virtualserver_default_server_group"`
	DefaultChannelGroup    protocol.ChannelGroupID `query:"virtualserver_default_channel_group"`
	HostbannerURL          string                  `query:"virtualserver_hostbanner_url"`
	HostbannerGfxURL       string                  `query:"virtualserver_hostbanner_gfx_url"`
	HostbannerGfxInterval  uint64                  `query:"virtualserver_hostbanner_gfx_interval"`
	PrioritySpeakerDimm    string                  `query:"virtualserver_priority_speaker_dimm_modificator"`
	HostbuttonTooltip      string                  `query:"virtualserver_hostbutton_tooltip"`
	HostbuttonURL          string                  `query:"virtualserver_hostbutton_url"`
	HostbuttonGfxURL       string                  `query:"virtualserver_hostbutton_gfx_url"`
	NamePhonetic           string                  `query:"virtualserver_name_phonetic"`
	IconID                 uint64                  `query:"virtualserver_icon_id"`
	HostbannerMode         string                  `query:"virtualserver_hostbanner_mode"`
	ChannelTempDeleteDelay uint64                  `query:"virtualserver_channel_temp_delete_delay_default"`
}

// ChannelDescriptionChanged is sent when the description of a channel
// changes. The new description has to be queried.
type ChannelDescriptionChanged struct {
	ChannelID protocol.ChannelID `query:"cid"`
}

// ChannelPasswordChanged is sent when the password of a channel changes.
type ChannelPasswordChanged struct {
	ChannelID protocol.ChannelID `query:"cid"`
}

// ChannelMoved is sent when a channel gets a new parent or order.
type ChannelMoved struct {
	ChannelID protocol.ChannelID `query:"cid"`
	ParentID  protocol.ChannelID `query:"cpid"`
	Order     uint64             `query:"order"`
	Reason    ReasonID           `query:"reasonid"`
	Invoker
}

// ChannelProperties are the channel_ fields shared by ChannelCreated and
// ChannelEdited. In ChannelEdited only the changed ones are sent.
type ChannelProperties struct {
	Name                          string `query:"channel_name"`
	Topic                         string `query:"channel_topic"`
	Codec                         uint8  `query:"channel_codec"`
	CodecQuality                  uint8  `query:"channel_codec_quality"`
	MaxClients                    int32  `query:"channel_maxclients"`
	MaxFamilyClients              int32  `query:"channel_maxfamilyclients"`
	Order                         uint64 `query:"channel_order"`
	FlagPermanent                 bool   `query:"channel_flag_permanent"`
	FlagSemiPermanent             bool   `query:"channel_flag_semi_permanent"`
	FlagDefault                   bool   `query:"channel_flag_default"`
	FlagPassword                  bool   `query:"channel_flag_password"`
	CodecLatencyFactor            uint64 `query:"channel_codec_latency_factor"`
	CodecIsUnencrypted            bool   `query:"channel_codec_is_unencrypted"`
	DeleteDelay                   uint32 `query:"channel_delete_delay"`
	FlagMaxClientsUnlimited       bool   `query:"channel_flag_maxclients_unlimited"`
	FlagMaxFamilyClientsUnlimited bool   `query:"channel_flag_maxfamilyclients_unlimited"`
	FlagMaxFamilyClientsInherited bool   `query:"channel_flag_maxfamilyclients_inherited"`
	NeededTalkPower               uint32 `query:"channel_needed_talk_power"`
	NamePhonetic                  string `query:"channel_name_phonetic"`
	IconID                        uint64 `query:"channel_icon_id"`
}

// ChannelEdited is sent when channel properties change.
type ChannelEdited struct {
	ChannelID protocol.ChannelID `query:"cid"`
	Reason    ReasonID           `query:"reasonid"`
	Invoker
	ChannelProperties
}

// ChannelCreated is sent when a channel is created.
type ChannelCreated struct {
	ChannelID protocol.ChannelID `query:"cid"`
	ParentID  protocol.ChannelID `query:"cpid"`
	ChannelProperties
	Invoker
}

// ChannelDeleted is sent when a channel is deleted. Channels removed by the
// server after their delete delay have an invoker id of 0 named "Server".
type ChannelDeleted struct {
	Invoker
	ChannelID protocol.ChannelID `query:"cid"`
}

// ClientMoved is sent when a client switches channel.
type ClientMoved struct {
	TargetChannel protocol.ChannelID `query:"ctid"`
	Reason        ReasonID           `query:"reasonid"`
	Invoker
	ClientID protocol.ClientID `query:"clid"`
}

// TextMessage is a message sent to the server, a channel or the query
// client.
type TextMessage struct {
	TargetMode protocol.TargetMode `query:"targetmode"`
	Msg        string              `query:"msg"`
	Target     protocol.ClientID   `query:"target"`
	Invoker
}

// TokenUsed is sent when a privilege key is used.
type TokenUsed struct {
	ClientID   protocol.ClientID         `query:"clid"`
	DatabaseID protocol.ClientDatabaseID `query:"cldbid"`
	UID        string                    `query:"cluid"`
	Token      string                    `query:"token"`
	CustomSet  string                    `query:"tokencustomset"`

	// Group assigned by the token
	GroupID uint64 `query:"token1"`
	// Channel of the token, 0 for server groups
	ChannelID uint64 `query:"token2"`
}

func (*ClientEnterView) EventName() Name           { return NameClientEnterView }
func (*ClientLeftView) EventName() Name            { return NameClientLeftView }
func (*ServerEdited) EventName() Name              { return NameServerEdited }
func (*ChannelDescriptionChanged) EventName() Name { return NameChannelDescriptionChanged }
func (*ChannelPasswordChanged) EventName() Name    { return NameChannelPasswordChanged }
func (*ChannelMoved) EventName() Name              { return NameChannelMoved }
func (*ChannelEdited) EventName() Name             { return NameChannelEdited }
func (*ChannelCreated) EventName() Name            { return NameChannelCreated }
func (*ChannelDeleted) EventName() Name            { return NameChannelDeleted }
func (*ClientMoved) EventName() Name               { return NameClientMoved }
func (*TextMessage) EventName() Name               { return NameTextMessage }
func (*TokenUsed) EventName() Name                 { return NameTokenUsed }
