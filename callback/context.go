// Package callback implements the duplex connection (C7) and the callback
// channel send/receive loop (C6): one socket serves both inbound peer
// requests and outbound host-initiated callbacks, with connection affinity
// modeled as an explicit context.Context value since Go has no per-goroutine
// thread-local storage.
package callback

import "context"

type connKey struct{}

// WithConnection binds conn to ctx so that host code invoked transitively
// and choosing to call back into the peer reuses the same socket, per the
// connection-affinity rule of §4.5.
func WithConnection(ctx context.Context, conn *Connection) context.Context {
	return context.WithValue(ctx, connKey{}, conn)
}

// FromContext returns the Connection bound to ctx, if any.
func FromContext(ctx context.Context) (*Connection, bool) {
	c, ok := ctx.Value(connKey{}).(*Connection)
	return c, ok
}
