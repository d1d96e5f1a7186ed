package callback_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/mucharafal/py4j/callback"
	"github.com/mucharafal/py4j/codec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// echoDispatcher answers "echo" by returning its single string argument
// unchanged, and otherwise reports the command unknown.
type echoDispatcher struct{}

func (echoDispatcher) Dispatch(ctx context.Context, group, subcommand string, args []codec.Value) (codec.ReturnObject, bool) {
	if group == "echo" {
		return codec.Primitive(args[0]), true
	}
	return codec.ReturnObject{}, false
}

// notifyDispatcher answers "notify" with void; used as the peer-side
// dispatcher in the reentrancy test.
type notifyDispatcher struct {
	received chan codec.Value
}

func (n notifyDispatcher) Dispatch(ctx context.Context, group, subcommand string, args []codec.Value) (codec.ReturnObject, bool) {
	if group == "notify" {
		n.received <- args[0]
		return codec.Void(), true
	}
	return codec.ReturnObject{}, false
}

// callbackingDispatcher handles "call" by first calling back into the peer
// on the same duplex connection (looked up via context), then replying
// based on the nested result — exercising the FIFO reentrancy pattern.
type callbackingDispatcher struct{}

func (callbackingDispatcher) Dispatch(ctx context.Context, group, subcommand string, args []codec.Value) (codec.ReturnObject, bool) {
	if group != "call" {
		return codec.ReturnObject{}, false
	}
	conn, ok := callback.FromContext(ctx)
	if !ok {
		return codec.ProtocolErrorObj("no bound connection"), true
	}
	nestedResult, err := conn.SendCommand(ctx, "notify", "", args[0])
	if err != nil {
		return codec.ProtocolErrorObj(err.Error()), true
	}
	_ = nestedResult
	return codec.Primitive(codec.Str("done")), true
}

var _ = Describe("Connection", func() {
	It("round-trips a simple request/reply", func() {
		serverSide, clientSide := net.Pipe()
		defer serverSide.Close()
		defer clientSide.Close()

		host, err := callback.New(serverSide, echoDispatcher{}, true, nil)
		Expect(err).ToNot(HaveOccurred())
		go host.ServeInbound(context.Background())

		peer, err := callback.New(clientSide, nil, false, nil)
		Expect(err).ToNot(HaveOccurred())

		ro, err := peer.SendCommand(context.Background(), "echo", "", codec.Str("hi"))
		Expect(err).ToNot(HaveOccurred())
		Expect(ro.Kind).To(Equal(codec.ObjPrimitive))
		Expect(ro.Primitive.Str).To(Equal("hi"))
	})

	It("times out waiting for a reply when the dispatcher drops an unknown command", func() {
		serverSide, clientSide := net.Pipe()
		defer serverSide.Close()
		defer clientSide.Close()

		host, err := callback.New(serverSide, echoDispatcher{}, true, nil)
		Expect(err).ToNot(HaveOccurred())
		go host.ServeInbound(context.Background())

		peer, err := callback.New(clientSide, nil, false, nil)
		Expect(err).ToNot(HaveOccurred())

		_, err = peer.SendCommandTimeout(context.Background(), "nope", "", 200*time.Millisecond, codec.Str("x"))
		Expect(err).To(HaveOccurred())
	})

	It("supports a nested callback while a reply is pending (FIFO reentrancy)", func() {
		hostSide, peerSide := net.Pipe()
		defer hostSide.Close()
		defer peerSide.Close()

		received := make(chan codec.Value, 1)

		host, err := callback.New(hostSide, callbackingDispatcher{}, true, nil)
		Expect(err).ToNot(HaveOccurred())
		go host.ServeInbound(context.Background())

		peer, err := callback.New(peerSide, notifyDispatcher{received: received}, false, nil)
		Expect(err).ToNot(HaveOccurred())

		ro, err := peer.SendCommand(context.Background(), "call", "", codec.Str("payload"))
		Expect(err).ToNot(HaveOccurred())
		Expect(ro.Primitive.Str).To(Equal("done"))

		Eventually(received).Should(Receive(Equal(codec.Str("payload"))))
	})

	It("accepts a connection that sends the correct token first", func() {
		serverSide, clientSide := net.Pipe()
		defer serverSide.Close()
		defer clientSide.Close()

		host, err := callback.New(serverSide, echoDispatcher{}, true, nil)
		Expect(err).ToNot(HaveOccurred())
		host.RequireToken("s3cr3t")
		go host.ServeInbound(context.Background())

		w := bufio.NewWriter(clientSide)
		Expect(codec.WriteLine(w, "s3cr3t")).To(Succeed())
		Expect(w.Flush()).To(Succeed())

		peer, err := callback.New(clientSide, nil, false, nil)
		Expect(err).ToNot(HaveOccurred())

		ro, err := peer.SendCommand(context.Background(), "echo", "", codec.Str("hi"))
		Expect(err).ToNot(HaveOccurred())
		Expect(ro.Primitive.Str).To(Equal("hi"))
	})

	It("rejects a connection that sends the wrong token", func() {
		serverSide, clientSide := net.Pipe()
		defer serverSide.Close()
		defer clientSide.Close()

		host, err := callback.New(serverSide, echoDispatcher{}, true, nil)
		Expect(err).ToNot(HaveOccurred())
		host.RequireToken("s3cr3t")

		done := make(chan error, 1)
		go func() { done <- host.ServeInbound(context.Background()) }()

		w := bufio.NewWriter(clientSide)
		Expect(codec.WriteLine(w, "wrong")).To(Succeed())
		Expect(w.Flush()).To(Succeed())

		// Drain the rejection reply so the host's write on the unbuffered
		// pipe can complete before ServeInbound returns.
		go func() { _, _ = io.Copy(io.Discard, clientSide) }()

		Eventually(done).Should(Receive(HaveOccurred()))
	})
})
