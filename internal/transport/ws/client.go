// Package ws implements the realtime.Transport over a WebSocket connection
// to the AuraFlow gateway, including the bounded reconnect loop the
// connection manager relies on.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/realtime"
)

// ErrNotConnected is returned by Emit when no live connection exists.
var ErrNotConnected = errors.New("ws: not connected")

// Options bound the reconnect behavior.
type Options struct {
	// MaxAttempts is how many consecutive failed connects are tolerated
	// before the transport reports a fatal error and stops.
	MaxAttempts int

	// BaseDelay is the wait before the first retry; each further retry
	// doubles it up to MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps the retry delay.
	MaxDelay time.Duration

	// WriteTimeout bounds a single Emit.
	WriteTimeout time.Duration
}

func (o *Options) withDefaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
}

// Client is a reconnecting WebSocket transport.
type Client struct {
	url   string
	opts  Options
	binds realtime.Binds
	log   *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// Dialer adapts this package to the realtime.Dialer seam.
func Dialer(opts Options, logger *zerolog.Logger) realtime.Dialer {
	return func(ctx context.Context, gatewayURL, token string, binds realtime.Binds) (realtime.Transport, error) {
		return New(ctx, gatewayURL, token, opts, binds, logger)
	}
}

// New builds an inert client. token is carried in the handshake query so
// the gateway authenticates the socket before admitting it to any room.
// Call Start to begin connecting.
func New(ctx context.Context, gatewayURL, token string, opts Options, binds realtime.Binds, logger *zerolog.Logger) (*Client, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	opts.withDefaults()
	runCtx, cancel := context.WithCancel(ctx)
	return &Client{
		url:    u.String(),
		opts:   opts,
		binds:  binds,
		log:    logger,
		ctx:    runCtx,
		cancel: cancel,
	}, nil
}

// Start launches the connect/reconnect loop.
func (c *Client) Start() {
	go c.run()
}

// Connected reports whether a live connection exists right now.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && !c.closed
}

// Emit writes one event frame. It never retries; a failed write surfaces to
// the caller and the read loop notices the broken connection on its own.
func (c *Client) Emit(event string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	pkt, err := proto.NewPacket(event, payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.WriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, pkt)
}

// Close stops the reconnect loop and drops the connection. Safe to call
// repeatedly and from transport callbacks.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.cancel()
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client closing")
	}
	return nil
}

func (c *Client) run() {
	attempts := 0
	for {
		if c.isClosed() {
			return
		}

		conn, _, err := websocket.Dial(c.ctx, c.url, nil)
		if err != nil {
			if c.isClosed() || c.ctx.Err() != nil {
				return
			}
			attempts++
			c.log.Warn().Err(err).Int("attempt", attempts).Msg("gateway dial failed")
			if attempts > c.opts.MaxAttempts {
				if c.binds.Fatal != nil {
					c.binds.Fatal(fmt.Errorf("gateway unreachable after %d attempts: %w", attempts-1, err))
				}
				return
			}
			select {
			case <-time.After(c.retryDelay(attempts)):
			case <-c.ctx.Done():
				return
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close(websocket.StatusNormalClosure, "client closing")
			return
		}
		c.conn = conn
		c.mu.Unlock()

		attempts = 0
		if c.binds.Connect != nil {
			c.binds.Connect()
		}

		readErr := c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "reconnecting")

		if c.isClosed() || c.ctx.Err() != nil {
			return
		}
		// Server-initiated drops land here too: reconnect proactively
		// instead of waiting for the next Emit to fail.
		if c.binds.Disconnect != nil {
			c.binds.Disconnect(closeReason(readErr))
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		var pkt proto.Packet
		if err := wsjson.Read(c.ctx, conn, &pkt); err != nil {
			return err
		}
		if c.binds.Packet != nil {
			c.binds.Packet(pkt)
		}
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.opts.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.opts.MaxDelay {
			return c.opts.MaxDelay
		}
	}
	if delay > c.opts.MaxDelay {
		return c.opts.MaxDelay
	}
	return delay
}

func closeReason(err error) string {
	if err == nil {
		return "connection closed"
	}
	if status := websocket.CloseStatus(err); status != -1 {
		return fmt.Sprintf("close status %d", status)
	}
	return err.Error()
}
