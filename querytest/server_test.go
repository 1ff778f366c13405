package querytest_test

import (
	"bufio"
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/tsquery/client"
	"github.com/luma/tsquery/event"
	"github.com/luma/tsquery/protocol"
	"github.com/luma/tsquery/querytest"
)

var _ = Describe("querytest / Server", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		mux    *querytest.Mux
		srv    *querytest.Server
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		mux = querytest.NewMux()
		srv = makeServer(mux)
	})

	AfterEach(func() {
		Expect(srv.Close()).To(Succeed())
		cancel()
	})

	It("greets and answers over a raw socket", func() {
		conn, err := net.Dial("tcp", srv.Addr())
		Expect(err).To(Succeed())
		defer conn.Close()

		lines := protocol.NewLineReader(bufio.NewReader(conn))

		line, err := lines.ReadLine()
		Expect(err).To(Succeed())
		Expect(string(line)).To(Equal("TS3"))

		line, err = lines.ReadLine()
		Expect(err).To(Succeed())
		Expect(string(line)).To(HavePrefix("Welcome"))

		_, err = conn.Write([]byte("unknowncommand\n"))
		Expect(err).To(Succeed())

		line, err = lines.ReadLine()
		Expect(err).To(Succeed())
		Expect(string(line)).To(Equal(`error id=256 msg=command\snot\sfound`))
	})

	It("serves a client end to end", func() {
		handler := &messageHandler{messages: make(chan *event.TextMessage, 1)}

		c, err := client.Dial(ctx, srv.Addr(), client.Options{KeepAlive: -1, Handler: handler})
		Expect(err).To(Succeed())
		defer c.Close()

		Expect(c.Login(ctx, "serveradmin", "secret")).To(Succeed())
		Expect(c.UseSID(ctx, 1)).To(Succeed())

		v, err := c.Version(ctx)
		Expect(err).To(Succeed())
		Expect(v.Platform).To(Equal("Linux"))

		who, err := c.WhoAmI(ctx)
		Expect(err).To(Succeed())
		Expect(who.LoginName).To(Equal("serveradmin"))

		Eventually(srv.NumConns).Should(Equal(1))
		Expect(srv.Notify(`notifytextmessage targetmode=3 msg=hello\sthere invokerid=0 invokername=Server`)).To(Succeed())

		var msg *event.TextMessage
		Eventually(handler.messages).Should(Receive(&msg))
		Expect(msg.Msg).To(Equal("hello there"))

		Expect(c.Quit(ctx)).To(Succeed())
		Eventually(c.Done()).Should(BeClosed())
		Eventually(srv.NumConns).Should(BeZero())
	})

	It("uses custom responders", func() {
		mux.Handle("channelinfo", querytest.ResponderFunc(func(req querytest.Request) querytest.Reply {
			cid, _ := req.Args.Get("cid")
			if cid != "1" {
				return querytest.Fail(768, "invalid channelID")
			}

			return querytest.Data(`channel_name=Lobby channel_topic=Say\shi`)
		}))

		c, err := client.Dial(ctx, srv.Addr(), client.Options{KeepAlive: -1})
		Expect(err).To(Succeed())
		defer c.Close()

		resp, err := c.SendRaw(ctx, "channelinfo cid=1")
		Expect(err).To(Succeed())

		topic, ok := resp.First().Get("channel_topic")
		Expect(ok).To(BeTrue())
		Expect(topic).To(Equal("Say hi"))

		_, err = c.SendRaw(ctx, "channelinfo cid=2")
		Expect(err).To(MatchError(&protocol.Error{ID: 768}))
	})

	It("closes connected clients on Close", func() {
		c, err := client.Dial(ctx, srv.Addr(), client.Options{KeepAlive: -1})
		Expect(err).To(Succeed())
		defer c.Close()

		Eventually(srv.NumConns).Should(Equal(1))
		Expect(srv.Close()).To(Succeed())

		Eventually(c.Done()).Should(BeClosed())
	})
})

var _ = Describe("querytest / Reply", func() {
	It("renders data and status lines", func() {
		Expect(string(querytest.Data("a=1").Bytes())).To(Equal("a=1\n\rerror id=0 msg=ok\n\r"))
		Expect(string(querytest.Fail(1024, "invalid serverID").Bytes())).To(Equal("error id=1024 msg=invalid\\sserverID\n\r"))
	})
})

type messageHandler struct {
	client.BaseHandler
	messages chan *event.TextMessage
}

func (h *messageHandler) TextMessage(c *client.Conn, ev *event.TextMessage) {
	h.messages <- ev
}

func (h *messageHandler) Error(c *client.Conn, err error) {}

func makeServer(responder querytest.Responder) *querytest.Server {
	log, err := zap.NewDevelopment()
	Expect(err).To(Succeed())

	srv := querytest.NewServer(querytest.Options{
		Host:      "127.0.0.1",
		Port:      0,
		Reuseport: true,
		Responder: responder,
		Log:       log,
	})

	Expect(srv.Start(context.Background())).To(Succeed())
	return srv
}
