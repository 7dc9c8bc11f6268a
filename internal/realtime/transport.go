package realtime

import (
	"context"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"
)

// Transport is the persistent bidirectional connection the manager
// multiplexes events over. internal/transport/ws provides the WebSocket
// implementation; tests substitute a fake.
type Transport interface {
	// Start begins connecting. The Dialer returns the transport inert so
	// the caller can store the handle before any callback fires.
	Start()

	// Connected reports whether a frame emitted now would reach the wire.
	Connected() bool

	// Emit sends one named event. Implementations must not block
	// indefinitely and must not retry on failure.
	Emit(event string, payload any) error

	// Close tears the connection down and stops any reconnect loop.
	// Safe to call more than once.
	Close() error
}

// Binds are the callbacks a Transport invokes from its read loop. Connect
// fires on every successful (re)connect, Disconnect on every drop that will
// be retried, Fatal once when retries are exhausted.
type Binds struct {
	Connect    func()
	Disconnect func(reason string)
	Packet     func(pkt proto.Packet)
	Fatal      func(err error)
}

// Dialer opens a Transport against the gateway. token travels in the
// handshake query, never as a regular event.
type Dialer func(ctx context.Context, url, token string, binds Binds) (Transport, error)
