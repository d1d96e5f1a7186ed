// Package pool implements the connection pool / peer client (C8): for
// non-duplex deployments the host keeps a bounded set of sockets toward the
// peer's callback server and round-trips commands over them, retrying once
// on a freshly-borrowed connection that turns out to be stale.
package pool

import (
	"context"
	"net"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"

	"github.com/mucharafal/py4j/callback"
	"github.com/mucharafal/py4j/codec"
	"github.com/mucharafal/py4j/liberr"
	"github.com/mucharafal/py4j/logger"
)

// Dialer opens a new transport connection to the peer's callback server.
type Dialer func(ctx context.Context) (net.Conn, error)

// Config configures a Client.
type Config struct {
	Address     string
	Port        int
	MaxPoolSize int           // admission gate width; 0 defaults to 8
	DialTimeout time.Duration // carried and copied by CopyWith; the Client never reads it, dialing is up to the Dialer
	Logger      logger.Logger
}

// Client is the peer-facing connection pool described in §4.6.
type Client struct {
	cfg    Config
	dial   Dialer
	idle   *lru.Cache // key: arbitrary slot int, value: *callback.Connection
	sem    *semaphore.Weighted
	log    logger.Logger
	nextID int
}

// New returns a Client against the given dialer. dial is called whenever the
// pool needs a fresh connection (either because it is empty or because a
// borrowed one failed).
func New(cfg Config, dial Dialer) (*Client, error) {
	size := cfg.MaxPoolSize
	if size <= 0 {
		size = 8
	}
	idle, err := lru.New(size)
	if err != nil {
		return nil, liberr.Wrap(liberr.UnknownError, err)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		cfg:  cfg,
		dial: dial,
		idle: idle,
		sem:  semaphore.NewWeighted(int64(size)),
		log:  log,
	}, nil
}

// CopyWith returns a new Client with this client's pool sizing whose Config
// carries address and port. It reuses this client's Dialer unchanged, and the
// Client never reads Config.Address or Config.Port itself, so the copy
// connects wherever that Dialer connects.
func (c *Client) CopyWith(address string, port int) (*Client, error) {
	cfg := c.cfg
	cfg.Address = address
	cfg.Port = port
	return New(cfg, c.dial)
}

// Shutdown closes every idle connection and releases pool resources. A
// failure closing one connection does not stop the others from being
// closed; every failure is aggregated and returned together.
func (c *Client) Shutdown() error {
	var errs *multierror.Error
	for _, key := range c.idle.Keys() {
		if v, ok := c.idle.Get(key); ok {
			if conn, ok := v.(*callback.Connection); ok {
				if err := conn.Close(); err != nil {
					errs = multierror.Append(errs, err)
				}
			}
		}
	}
	c.idle.Purge()
	return errs.ErrorOrNil()
}

// borrow takes a slot of the admission semaphore, then an idle connection
// from the pool, or dials a fresh one if none is idle. release and discard
// give the slot back.
func (c *Client) borrow(ctx context.Context) (*callback.Connection, bool, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, false, liberr.Wrap(liberr.NetworkError, err)
	}
	for _, key := range c.idle.Keys() {
		if v, ok := c.idle.Get(key); ok {
			c.idle.Remove(key)
			if conn, ok := v.(*callback.Connection); ok {
				return conn, false, nil
			}
		}
	}

	netConn, err := c.dial(ctx)
	if err != nil {
		c.sem.Release(1)
		return nil, false, liberr.Wrap(liberr.NetworkError, err)
	}
	conn, err := callback.New(netConn, nil, false, c.log)
	if err != nil {
		c.sem.Release(1)
		return nil, false, err
	}
	return conn, true, nil
}

// release returns conn to the idle pool (a real deployment would also check
// conn's health here; this binding trusts the caller already round-tripped
// successfully on it).
func (c *Client) release(conn *callback.Connection) {
	c.nextID++
	c.idle.Add(c.nextID, conn)
	c.sem.Release(1)
}

func (c *Client) discard(conn *callback.Connection) {
	_ = conn.Close()
	c.sem.Release(1)
}

// SendCommand borrows a connection, round-trips the command in blocking
// mode, and returns it to the pool. If a connection taken from the idle pool
// fails, it is discarded and the command is retried once on a newly dialed
// connection (§4.6 step 4); a failure on a newly dialed connection is
// returned without a retry.
func (c *Client) SendCommand(ctx context.Context, group, subcommand string, args ...codec.Value) (codec.ReturnObject, error) {
	return c.sendCommand(ctx, group, subcommand, args, 0)
}

// SendCommandBlocking is an explicit alias for SendCommand.
func (c *Client) SendCommandBlocking(ctx context.Context, group, subcommand string, args ...codec.Value) (codec.ReturnObject, error) {
	return c.sendCommand(ctx, group, subcommand, args, 0)
}

// SendCommandTimeout round-trips with a finite read deadline per attempt.
func (c *Client) SendCommandTimeout(ctx context.Context, group, subcommand string, timeout time.Duration, args ...codec.Value) (codec.ReturnObject, error) {
	return c.sendCommand(ctx, group, subcommand, args, timeout)
}

func (c *Client) sendCommand(ctx context.Context, group, subcommand string, args []codec.Value, timeout time.Duration) (codec.ReturnObject, error) {
	conn, fresh, err := c.borrow(ctx)
	if err != nil {
		return codec.ReturnObject{}, err
	}

	ro, err := c.roundTrip(ctx, conn, group, subcommand, args, timeout)
	if err != nil {
		c.discard(conn)
		if fresh {
			return codec.ReturnObject{}, err
		}
		// First failure was on a recycled connection: retry once with a
		// guaranteed-fresh one, per §4.6 step 4.
		conn2, _, err2 := c.borrowFresh(ctx)
		if err2 != nil {
			return codec.ReturnObject{}, err2
		}
		ro, err = c.roundTrip(ctx, conn2, group, subcommand, args, timeout)
		if err != nil {
			c.discard(conn2)
			return codec.ReturnObject{}, err
		}
		c.release(conn2)
		return ro, nil
	}

	c.release(conn)
	return ro, nil
}

func (c *Client) borrowFresh(ctx context.Context) (*callback.Connection, bool, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, false, liberr.Wrap(liberr.NetworkError, err)
	}
	netConn, err := c.dial(ctx)
	if err != nil {
		c.sem.Release(1)
		return nil, false, liberr.Wrap(liberr.NetworkError, err)
	}
	conn, err := callback.New(netConn, nil, false, c.log)
	if err != nil {
		c.sem.Release(1)
		return nil, false, err
	}
	return conn, true, nil
}

func (c *Client) roundTrip(ctx context.Context, conn *callback.Connection, group, subcommand string, args []codec.Value, timeout time.Duration) (codec.ReturnObject, error) {
	if timeout > 0 {
		return conn.SendCommandTimeout(ctx, group, subcommand, timeout, args...)
	}
	return conn.SendCommandBlocking(ctx, group, subcommand, args...)
}
