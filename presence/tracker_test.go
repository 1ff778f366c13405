package presence_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/tsquery/client"
	"github.com/luma/tsquery/event"
	"github.com/luma/tsquery/presence"
	"github.com/luma/tsquery/protocol"
	"github.com/luma/tsquery/querytest"
	"github.com/luma/tsquery/storage"
)

var _ = Describe("presence / Tracker", func() {
	var (
		ctx     context.Context
		store   *storage.InmemoryStore
		tracker *presence.Tracker
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = storage.NewInmemoryStore()
		tracker = presence.NewTracker(store, presence.Options{})
	})

	AfterEach(func() {
		store.Close()
	})

	get := func(key string) string {
		value, err := store.Get(ctx, key)
		Expect(err).To(Succeed())
		return string(value)
	}

	missing := func(key string) bool {
		_, err := store.Get(ctx, key)
		return errors.Is(err, storage.ErrNotFound)
	}

	decode := func(line string) event.Event {
		ev, err := event.Parse([]byte(line))
		Expect(err).To(Succeed())
		return ev
	}

	Describe("clients", func() {
		It("follows a client entering, moving and leaving", func() {
			tracker.ClientEnterView(nil, decode(`notifycliententerview cfid=0 ctid=1 reasonid=0 clid=5 client_unique_identifier=uid5 client_nickname=bob client_database_id=9 client_away=1 client_type=0 client_servergroups=6,8`).(*event.ClientEnterView))

			Expect(get("clients.clid-5")).To(MatchJSON(`{"nickname":"bob","uid":"uid5","dbid":9,"channel":1,"away":false,"server_groups":[6,8]}`))

			tracker.ClientMoved(nil, decode(`notifyclientmoved ctid=3 reasonid=0 clid=5`).(*event.ClientMoved))
			Expect(get("clients.clid-5.channel")).To(Equal("3"))

			tracker.ClientLeftView(nil, decode(`notifyclientleftview cfid=3 ctid=0 reasonid=8 reasonmsg=bye clid=5`).(*event.ClientLeftView))
			Expect(missing("clients.clid-5")).To(BeTrue())
		})

		It("ignores query clients", func() {
			tracker.ClientEnterView(nil, &event.ClientEnterView{ClientID: 2, Type: 1})
			Expect(missing("clients.clid-2")).To(BeTrue())

			tracker.ClientMoved(nil, decode(`notifyclientmoved ctid=3 reasonid=0 clid=2`).(*event.ClientMoved))
			Expect(missing("clients.clid-2")).To(BeTrue())
		})

		It("does not track moves of unknown clients", func() {
			tracker.ClientMoved(nil, decode(`notifyclientmoved ctid=3 reasonid=0 clid=5`).(*event.ClientMoved))
			Expect(missing("clients.clid-5")).To(BeTrue())
		})
	})

	Describe("channels", func() {
		It("follows a channel through its life", func() {
			tracker.ChannelCreated(nil, decode(`notifychannelcreated cid=10 cpid=0 channel_name=Lobby channel_topic=Welcome channel_order=0 invokerid=1`).(*event.ChannelCreated))
			Expect(get("channels.cid-10")).To(MatchJSON(`{"name":"Lobby","topic":"Welcome","parent":0,"order":0}`))

			tracker.ChannelEdited(nil, decode(`notifychanneledited cid=10 reasonid=7 channel_name=Hall`).(*event.ChannelEdited))
			Expect(get("channels.cid-10.name")).To(Equal(`"Hall"`))
			Expect(get("channels.cid-10.topic")).To(Equal(`"Welcome"`))

			tracker.ChannelMoved(nil, decode(`notifychannelmoved cid=10 cpid=2 order=4 reasonid=1`).(*event.ChannelMoved))
			Expect(get("channels.cid-10.parent")).To(Equal("2"))
			Expect(get("channels.cid-10.order")).To(Equal("4"))

			tracker.ChannelDeleted(nil, decode(`notifychanneldeleted invokerid=0 invokername=Server cid=10`).(*event.ChannelDeleted))
			Expect(missing("channels.cid-10")).To(BeTrue())
		})
	})

	Describe("unknown channels", func() {
		It("are not created by edits or moves", func() {
			tracker.ChannelEdited(nil, decode(`notifychanneledited cid=11 reasonid=7 channel_name=Hall`).(*event.ChannelEdited))
			tracker.ChannelMoved(nil, decode(`notifychannelmoved cid=12 cpid=2 order=4 reasonid=1`).(*event.ChannelMoved))

			Expect(missing("channels.cid-11")).To(BeTrue())
			Expect(missing("channels.cid-12")).To(BeTrue())
		})
	})

	Describe("server and stats", func() {
		It("stores the server name", func() {
			tracker.ServerEdited(nil, &event.ServerEdited{Name: "My Server"})
			Expect(get(presence.KeyServerName)).To(Equal(`"My Server"`))

			tracker.ServerEdited(nil, &event.ServerEdited{IconID: 4})
			Expect(get(presence.KeyServerName)).To(Equal(`"My Server"`))
		})

		It("counts messages and tokens", func() {
			msg := decode(`notifytextmessage targetmode=3 msg=hi invokerid=4 invokername=alice`).(*event.TextMessage)
			tracker.TextMessage(nil, msg)
			tracker.TextMessage(nil, msg)
			tracker.TokenUsed(nil, &event.TokenUsed{ClientID: 4, Token: "abc"})

			Expect(get(presence.KeyMessages)).To(Equal("2"))
			Expect(get(presence.KeyLastMessage)).To(MatchJSON(`{"from":"alice","msg":"hi","target_mode":3}`))
			Expect(get(presence.KeyTokensUsed)).To(Equal("1"))
		})
	})

	Describe("over a connection", func() {
		It("removes every client that left", func() {
			const n = 300

			srv := querytest.NewServer(querytest.Options{Host: "127.0.0.1"})
			Expect(srv.Start(ctx)).To(Succeed())
			defer srv.Close()

			dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			c, err := client.Dial(dialCtx, srv.Addr(), client.Options{KeepAlive: -1, Handler: tracker, OrderedEvents: true})
			Expect(err).To(Succeed())
			defer c.Close()

			for clid := 1; clid <= n; clid++ {
				Expect(srv.Notify(fmt.Sprintf("notifycliententerview cfid=0 ctid=1 reasonid=0 clid=%d client_nickname=c%d client_type=0", clid, clid))).To(Succeed())
				Expect(srv.Notify(fmt.Sprintf("notifyclientmoved ctid=2 reasonid=0 clid=%d", clid))).To(Succeed())
				Expect(srv.Notify(fmt.Sprintf("notifyclientleftview cfid=2 ctid=0 reasonid=8 clid=%d", clid))).To(Succeed())
			}

			// Delivered after everything above
			Expect(srv.Notify("notifytextmessage targetmode=3 msg=done invokerid=1")).To(Succeed())

			Eventually(func() string {
				value, _ := store.Get(ctx, presence.KeyMessages)
				return string(value)
			}, 5*time.Second).Should(Equal("1"))

			Expect(get(presence.KeyClientsPrefix)).To(MatchJSON(`{}`))
		})
	})

	Describe("Seed()", func() {
		It("loads the current clients and channels", func() {
			mux := querytest.NewMux()
			mux.HandleReply(protocol.CmdClientList, querytest.Data(
				`clid=1 cid=1 client_database_id=1 client_nickname=serveradmin client_type=1 client_unique_identifier=serveradmin client_away=1 client_servergroups=2|clid=7 cid=2 client_database_id=3 client_nickname=carol client_type=0 client_unique_identifier=uid7 client_away=0 client_servergroups=6`,
			))
			mux.HandleReply(protocol.CmdChannelList, querytest.Data(
				`cid=1 pid=0 channel_order=0 channel_name=Lobby channel_topic total_clients=1|cid=2 pid=1 channel_order=1 channel_name=AFK channel_topic=Away total_clients=1`,
			))

			srv := querytest.NewServer(querytest.Options{Host: "127.0.0.1", Responder: mux})
			Expect(srv.Start(ctx)).To(Succeed())
			defer srv.Close()

			dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			c, err := client.Dial(dialCtx, srv.Addr(), client.Options{KeepAlive: -1, Handler: tracker})
			Expect(err).To(Succeed())
			defer c.Close()

			Expect(store.Set(ctx, "clients.clid-99", presence.Client{Nickname: "stale"})).To(Succeed())
			Expect(store.Set(ctx, presence.KeyMessages, 4)).To(Succeed())

			Expect(tracker.Seed(dialCtx, c)).To(Succeed())

			Expect(missing("clients.clid-99")).To(BeTrue())
			Expect(get(presence.KeyMessages)).To(Equal("4"))

			Expect(missing("clients.clid-1")).To(BeTrue())
			Expect(get("clients.clid-7")).To(MatchJSON(`{"nickname":"carol","uid":"uid7","dbid":3,"channel":2,"away":true,"server_groups":[6]}`))
			Expect(get("channels.cid-1.name")).To(Equal(`"Lobby"`))
			Expect(get("channels.cid-2")).To(MatchJSON(`{"name":"AFK","topic":"Away","parent":1,"order":1}`))
		})
	})
})
