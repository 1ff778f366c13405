package client

import (
	"context"

	"github.com/luma/tsquery/protocol"
)

// Login authenticates the query client.
func (c *Conn) Login(ctx context.Context, name, password string) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdLogin).
		Arg("client_login_name", name).
		Arg("client_login_password", password).
		Build(), nil)
}

// Logout deselects the virtual server and drops the authentication.
func (c *Conn) Logout(ctx context.Context) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdLogout).Build(), nil)
}

// Quit asks the server to close the connection.
func (c *Conn) Quit(ctx context.Context) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdQuit).Build(), nil)
}

// UseSID selects the virtual server with the given id.
func (c *Conn) UseSID(ctx context.Context, sid protocol.ServerID) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdUse).Arg("sid", sid).Build(), nil)
}

// UsePort selects the virtual server listening on the given voice port.
func (c *Conn) UsePort(ctx context.Context, port uint16) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdUse).Arg("port", port).Build(), nil)
}

// Version returns the server version.
func (c *Conn) Version(ctx context.Context) (*Version, error) {
	v := &Version{}
	if err := c.Send(ctx, protocol.NewRequest(protocol.CmdVersion).Build(), v); err != nil {
		return nil, err
	}

	return v, nil
}

// WhoAmI returns information about the query client itself.
func (c *Conn) WhoAmI(ctx context.Context) (*WhoAmI, error) {
	w := &WhoAmI{}
	if err := c.Send(ctx, protocol.NewRequest(protocol.CmdWhoAmI).Build(), w); err != nil {
		return nil, err
	}

	return w, nil
}

// ServerNotifyRegister subscribes to a category of events on the selected
// virtual server.
func (c *Conn) ServerNotifyRegister(ctx context.Context, reg protocol.NotifyRegistration) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdServerNotifyRegister).
		Arg("event", reg).
		Build(), nil)
}

// SendTextMessage sends msg to a client, the current channel or the
// selected virtual server.
func (c *Conn) SendTextMessage(ctx context.Context, target protocol.TextMessageTarget, msg string) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdSendTextMessage).
		Arg("targetmode", target).
		Arg("msg", msg).
		Build(), nil)
}

// GlobalMessage sends msg to every client on every virtual server.
func (c *Conn) GlobalMessage(ctx context.Context, msg string) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdGM).Arg("msg", msg).Build(), nil)
}

// ServerGroupAddClient adds a client to a server group. Default and template
// groups cannot be assigned.
func (c *Conn) ServerGroupAddClient(ctx context.Context, sgid protocol.ServerGroupID, cldbid protocol.ClientDatabaseID) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdServerGroupAddClient).
		Arg("sgid", sgid).
		Arg("cldbid", cldbid).
		Build(), nil)
}

// ServerGroupDelClient removes a client from a server group.
func (c *Conn) ServerGroupDelClient(ctx context.Context, sgid protocol.ServerGroupID, cldbid protocol.ClientDatabaseID) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdServerGroupDelClient).
		Arg("sgid", sgid).
		Arg("cldbid", cldbid).
		Build(), nil)
}

// ServerStart starts a virtual server.
func (c *Conn) ServerStart(ctx context.Context, sid protocol.ServerID) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdServerStart).Arg("sid", sid).Build(), nil)
}

// ServerStop stops a virtual server. reasonMsg, if set, is shown to the
// clients being disconnected.
func (c *Conn) ServerStop(ctx context.Context, sid protocol.ServerID, reasonMsg string) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdServerStop).
		Arg("sid", sid).
		ArgIf(reasonMsg != "", "reasonmsg", reasonMsg).
		Build(), nil)
}

type APIKeyAddParams struct {
	Scope protocol.APIKeyScope

	// Lifetime in days. Nil uses the server default of 14 days, 0 never
	// expires.
	Lifetime *uint64

	// ClientDatabaseID creates the key for another client. Needs
	// b_virtualserver_apikey_manage.
	ClientDatabaseID protocol.ClientDatabaseID
}

// APIKeyAdd creates an API key.
func (c *Conn) APIKeyAdd(ctx context.Context, params APIKeyAddParams) (*APIKey, error) {
	req := protocol.NewRequest(protocol.CmdAPIKeyAdd).
		Arg("scope", params.Scope).
		ArgIf(params.ClientDatabaseID != 0, "cldbid", params.ClientDatabaseID)

	if params.Lifetime != nil {
		req.Arg("lifetime", *params.Lifetime)
	}

	key := &APIKey{}
	if err := c.Send(ctx, req.Build(), key); err != nil {
		return nil, err
	}

	return key, nil
}

// APIKeyDel deletes an API key.
func (c *Conn) APIKeyDel(ctx context.Context, id uint64) error {
	return c.Send(ctx, protocol.NewRequest(protocol.CmdAPIKeyDel).Arg("id", id).Build(), nil)
}

type APIKeyListParams struct {
	// ClientDatabaseID lists the keys of another client.
	ClientDatabaseID protocol.ClientDatabaseID

	// All lists the keys of every client, overriding ClientDatabaseID.
	All bool

	Start    uint64
	Duration uint64
	Count    bool
}

// APIKeyList lists API keys, by default the ones of the query client.
func (c *Conn) APIKeyList(ctx context.Context, params APIKeyListParams) ([]APIKey, error) {
	req := protocol.NewRequest(protocol.CmdAPIKeyList)

	switch {
	case params.All:
		req.Arg("cldbid", "*")
	case params.ClientDatabaseID != 0:
		req.Arg("cldbid", params.ClientDatabaseID)
	}

	req.ArgIf(params.Start != 0, "start", params.Start).
		ArgIf(params.Duration != 0, "duration", params.Duration).
		FlagIf(params.Count, "-count")

	var keys []APIKey
	if err := c.Send(ctx, req.Build(), &keys); err != nil {
		return nil, err
	}

	return keys, nil
}

// BanAddParams describes a ban rule. At least one of IP, Name, UID and
// MyTSID must be set.
type BanAddParams struct {
	IP     string
	Name   string
	UID    string
	MyTSID string

	// Duration in seconds, 0 bans permanently
	Time uint64

	Reason       string
	LastNickname string
}

// BanAdd adds a ban rule to the selected virtual server.
func (c *Conn) BanAdd(ctx context.Context, params BanAddParams) (*BanID, error) {
	if params.IP == "" && params.Name == "" && params.UID == "" && params.MyTSID == "" {
		return nil, ErrNoBanTarget
	}

	req := protocol.NewRequest(protocol.CmdBanAdd).
		ArgIf(params.IP != "", "ip", params.IP).
		ArgIf(params.Name != "", "name", params.Name).
		ArgIf(params.UID != "", "uid", params.UID).
		ArgIf(params.MyTSID != "", "mytsid", params.MyTSID).
		ArgIf(params.Time != 0, "time", params.Time).
		ArgIf(params.Reason != "", "banreason", params.Reason).
		ArgIf(params.LastNickname != "", "lastnickname", params.LastNickname).
		Build()

	id := &BanID{}
	if err := c.Send(ctx, req, id); err != nil {
		return nil, err
	}

	return id, nil
}
