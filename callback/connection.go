package callback

import (
	"bufio"
	"context"
	"crypto/subtle"
	"io"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/go-uuid"

	"github.com/mucharafal/py4j/codec"
	"github.com/mucharafal/py4j/liberr"
	"github.com/mucharafal/py4j/logger"
)

// Dispatcher is the subset of gateway.Gateway a Connection needs: enough to
// route one decoded inbound command to its handler. Kept as an interface so
// this package does not import gateway (which would create an import cycle,
// since the gateway's own handlers may originate callbacks through this
// package).
type Dispatcher interface {
	Dispatch(ctx context.Context, group, subcommand string, args []codec.Value) (codec.ReturnObject, bool)
}

// Connection is a duplex, single-socket channel: it can serve an inbound
// request loop (peer -> host) and, independently, originate outbound
// callback commands (host -> peer) on the same underlying net.Conn,
// interleaved per the FIFO reentrancy rule of §4.5.
type Connection struct {
	id                  string
	conn                net.Conn
	r                    *bufio.Reader
	w                    *bufio.Writer
	initiatedFromClient bool

	mu         sync.Mutex // serializes full send/receive round trips
	dispatcher Dispatcher
	log        logger.Logger

	authToken string // empty disables the handshake
}

// New wraps conn as a Connection. initiatedFromClient marks a connection
// accepted from the peer (as opposed to one the host dialed outward for a
// callback).
func New(conn net.Conn, dispatcher Dispatcher, initiatedFromClient bool, log logger.Logger) (*Connection, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, liberr.Wrap(liberr.NetworkError, err)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Connection{
		id:                  id,
		conn:                conn,
		r:                   bufio.NewReader(conn),
		w:                   bufio.NewWriter(conn),
		initiatedFromClient: initiatedFromClient,
		dispatcher:          dispatcher,
		log:                 log.WithFields(logger.Fields{"connection": id}),
	}, nil
}

// RequireToken enables the shared-token handshake (§6) for this connection:
// ServeInbound will read and verify one token line, constant-time compared
// against token, before entering its command loop. An empty token disables
// the handshake (the zero value of a freshly constructed Connection).
func (c *Connection) RequireToken(token string) {
	c.authToken = token
}

// ID returns the connection's generated identifier.
func (c *Connection) ID() string { return c.id }

// InitiatedFromClient reports whether this connection was accepted from the
// peer rather than dialed outward by the host.
func (c *Connection) InitiatedFromClient() bool { return c.initiatedFromClient }

// Close closes the underlying socket.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// ServeInbound runs the receive loop for requests the peer sends on this
// connection: it reads one command name (two lines), the argument list, and
// dispatches, looping until a read error (io.EOF on a clean peer close is
// treated as normal termination). It installs itself on ctx so any callback
// issued transitively by a handler reuses this same socket.
func (c *Connection) ServeInbound(ctx context.Context) error {
	ctx = WithConnection(ctx, c)

	if c.authToken != "" {
		if err := c.authenticate(); err != nil {
			return err
		}
	}

	for {
		group, err := codec.ReadLine(c.r)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return liberr.Wrap(liberr.NetworkError, err)
		}
		subcommand, err := codec.ReadLine(c.r)
		if err != nil {
			return liberr.Wrap(liberr.NetworkError, err)
		}
		args, err := codec.ReadArgs(c.r)
		if err != nil {
			c.log.Error("failed to read command arguments", err)
			c.writeBestEffortError(err)
			continue
		}

		ro, ok := c.dispatcher.Dispatch(ctx, group, subcommand, args)
		if !ok {
			continue // unknown command, non-strict mode: log already happened, no reply
		}
		if err := c.writeReturn(ro); err != nil {
			return liberr.Wrap(liberr.NetworkError, err)
		}
	}
}

// authenticate reads the token the peer must send as its very first message
// and rejects the connection on mismatch, comparing in constant time so a
// wrong guess can't be timed to narrow down the secret.
func (c *Connection) authenticate() error {
	token, err := codec.ReadLine(c.r)
	if err != nil {
		return liberr.Wrap(liberr.NetworkError, err)
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(c.authToken)) != 1 {
		c.writeBestEffortError(liberr.New(liberr.ProtocolError, "authentication failed", nil))
		return liberr.New(liberr.ProtocolError, "authentication failed", nil)
	}
	return nil
}

func (c *Connection) writeReturn(ro codec.ReturnObject) error {
	if err := codec.WriteLine(c.w, codec.EncodeReturn(ro)); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *Connection) writeBestEffortError(cause error) {
	_ = c.writeReturn(codec.ProtocolErrorObj(cause.Error()))
}

// SendCommand issues an outbound command and blocks for the reply, per the
// blocking-mode algorithm of §4.5: reads interleave with any inbound
// commands nested ahead of our reply, each dispatched to completion before
// the loop continues.
func (c *Connection) SendCommand(ctx context.Context, group, subcommand string, args ...codec.Value) (codec.ReturnObject, error) {
	return c.sendCommand(ctx, group, subcommand, args, 0)
}

// SendCommandBlocking is an explicit alias for SendCommand's no-deadline
// behavior, named to mirror the embedding API surface of §6.
func (c *Connection) SendCommandBlocking(ctx context.Context, group, subcommand string, args ...codec.Value) (codec.ReturnObject, error) {
	return c.sendCommand(ctx, group, subcommand, args, 0)
}

// SendCommandTimeout is the non-blocking variant: it sets a finite read
// deadline for each reply-line read, always clearing it before returning.
func (c *Connection) SendCommandTimeout(ctx context.Context, group, subcommand string, timeout time.Duration, args ...codec.Value) (codec.ReturnObject, error) {
	return c.sendCommand(ctx, group, subcommand, args, timeout)
}

func (c *Connection) sendCommand(ctx context.Context, group, subcommand string, args []codec.Value, timeout time.Duration) (codec.ReturnObject, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := codec.WriteCommand(c.w, group, subcommand, args...); err != nil {
		return codec.ReturnObject{}, liberr.Wrap(liberr.NetworkError, err)
	}

	for {
		if timeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
		}
		line, err := codec.ReadLine(c.r)
		if timeout > 0 {
			_ = c.conn.SetReadDeadline(time.Time{})
		}
		if err != nil {
			return codec.ReturnObject{}, liberr.Wrap(liberr.NetworkError, err)
		}
		if line == "" {
			return codec.ReturnObject{}, liberr.New(liberr.NetworkError, "empty response", nil)
		}

		if line[0] == 'y' || line[0] == '!' {
			ro, err := codec.DecodeReturn(line)
			if err != nil {
				return codec.ReturnObject{}, liberr.Wrap(liberr.ProtocolError, err)
			}
			return ro, nil
		}

		// Not a reply: treat as a nested inbound command name. Its
		// subcommand line and argument lines follow exactly as in
		// ServeInbound, and its response is written on this same writer
		// before we loop back to read our own reply.
		subcommandLine, err := codec.ReadLine(c.r)
		if err != nil {
			return codec.ReturnObject{}, liberr.Wrap(liberr.NetworkError, err)
		}
		nestedArgs, err := codec.ReadArgs(c.r)
		if err != nil {
			return codec.ReturnObject{}, liberr.Wrap(liberr.NetworkError, err)
		}

		if c.dispatcher == nil {
			return codec.ReturnObject{}, liberr.New(liberr.ProtocolError, "nested inbound command on a connection with no dispatcher", nil)
		}
		ctxWithSelf := WithConnection(ctx, c)
		nestedRO, ok := c.dispatcher.Dispatch(ctxWithSelf, line, subcommandLine, nestedArgs)
		if ok {
			if err := c.writeReturn(nestedRO); err != nil {
				return codec.ReturnObject{}, liberr.Wrap(liberr.NetworkError, err)
			}
		}
	}
}
