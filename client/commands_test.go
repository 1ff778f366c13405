package client_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/tsquery/client"
	"github.com/luma/tsquery/protocol"
)

var _ = Describe("client / commands", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		c      *client.Conn
		srv    *fakeServer
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		c, srv = newPipeConn(client.Options{KeepAlive: -1, Handler: newRecordingHandler()})
	})

	AfterEach(func() {
		c.Close()
		srv.Close()
		cancel()
	})

	// call runs fn while the fake server expects line and answers with reply.
	call := func(fn func() error, line string, reply ...string) {
		result := make(chan error, 1)
		go func() {
			result <- fn()
		}()

		srv.expect(line)
		srv.reply(reply...)

		Eventually(result).Should(Receive(BeNil()))
	}

	It("formats simple commands", func() {
		call(func() error { return c.Login(ctx, "serveradmin", "se cr|et") },
			`login client_login_name=serveradmin client_login_password=se\scr\pet`)
		call(func() error { return c.UseSID(ctx, 1) }, "use sid=1")
		call(func() error { return c.UsePort(ctx, 9987) }, "use port=9987")
		call(func() error { return c.GlobalMessage(ctx, "going down") }, `gm msg=going\sdown`)
		call(func() error { return c.ServerStart(ctx, 2) }, "serverstart sid=2")
		call(func() error { return c.ServerStop(ctx, 2, "") }, "serverstop sid=2")
		call(func() error { return c.ServerStop(ctx, 2, "bye all") }, `serverstop sid=2 reasonmsg=bye\sall`)
		call(func() error { return c.ServerGroupAddClient(ctx, 6, 12) }, "servergroupaddclient sgid=6 cldbid=12")
		call(func() error { return c.ServerGroupDelClient(ctx, 6, 12) }, "servergroupdelclient sgid=6 cldbid=12")
		call(func() error { return c.APIKeyDel(ctx, 3) }, "apikeydel id=3")
		call(func() error { return c.Logout(ctx) }, "logout")
	})

	It("formats notification registrations", func() {
		call(func() error {
			return c.ServerNotifyRegister(ctx, protocol.NotifyRegistration{Event: protocol.NotifyServer})
		}, "servernotifyregister event=server")

		call(func() error {
			return c.ServerNotifyRegister(ctx, protocol.NotifyRegistration{Event: protocol.NotifyChannel, ChannelID: 4})
		}, "servernotifyregister event=channel id=4")
	})

	It("formats text messages", func() {
		call(func() error {
			return c.SendTextMessage(ctx, protocol.ToServer(), "hello world")
		}, `sendtextmessage targetmode=3 msg=hello\sworld`)

		call(func() error {
			return c.SendTextMessage(ctx, protocol.ToClient(7), "psst")
		}, "sendtextmessage targetmode=1 target=7 msg=psst")
	})

	It("decodes whoami", func() {
		var who *client.WhoAmI

		call(func() (err error) {
			who, err = c.WhoAmI(ctx)
			return err
		}, "whoami", `virtualserver_status=online virtualserver_id=1 virtualserver_unique_identifier=abc= virtualserver_port=9987 client_id=3 client_channel_id=1 client_nickname=serveradmin\sfrom\s127.0.0.1:5000 client_database_id=1 client_login_name=serveradmin client_unique_identifier=serveradmin client_origin_server_id=0`)

		Expect(who.ServerID).To(Equal(protocol.ServerID(1)))
		Expect(who.ServerPort).To(Equal(uint16(9987)))
		Expect(who.ClientID).To(Equal(protocol.ClientID(3)))
		Expect(who.Nickname).To(Equal("serveradmin from 127.0.0.1:5000"))
	})

	It("creates and lists api keys", func() {
		lifetime := uint64(0)
		var key *client.APIKey

		call(func() (err error) {
			key, err = c.APIKeyAdd(ctx, client.APIKeyAddParams{Scope: protocol.ScopeRead, Lifetime: &lifetime})
			return err
		}, "apikeyadd scope=read lifetime=0", "apikey=KEY id=1 sid=1 cldbid=2 scope=read time_left=0")

		Expect(key).To(Equal(&client.APIKey{
			APIKey:           "KEY",
			ID:               1,
			ServerID:         1,
			ClientDatabaseID: 2,
			Scope:            protocol.ScopeRead,
		}))

		var keys []client.APIKey

		call(func() (err error) {
			keys, err = c.APIKeyList(ctx, client.APIKeyListParams{All: true, Count: true})
			return err
		}, "apikeylist cldbid=* -count", "apikey=a id=1 sid=1 cldbid=2 scope=manage time_left=10|apikey=b id=2 sid=1 cldbid=3 scope=write time_left=20")

		Expect(keys).To(HaveLen(2))
		Expect(keys[0].Scope).To(Equal(protocol.ScopeManage))
		Expect(keys[1].APIKey).To(Equal("b"))
		Expect(keys[1].TimeLeft).To(Equal(uint64(20)))
	})

	It("adds bans", func() {
		var id *client.BanID

		call(func() (err error) {
			id, err = c.BanAdd(ctx, client.BanAddParams{IP: "10.0.0.1", Time: 600, Reason: "spam"})
			return err
		}, "banadd ip=10.0.0.1 time=600 banreason=spam", "banid=42")

		Expect(id.ID).To(Equal(uint64(42)))
	})

	It("refuses bans without a target", func() {
		_, err := c.BanAdd(ctx, client.BanAddParams{Reason: "spam"})
		Expect(err).To(MatchError(client.ErrNoBanTarget))
	})
})
