package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/log"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"
)

// fakeTransport records emits and lets tests drive connect/disconnect and
// inbound packets by invoking the captured binds directly.
type fakeTransport struct {
	mu        sync.Mutex
	binds     Binds
	token     string
	connected bool
	closed    bool
	emits     []emitted
}

type emitted struct {
	event   string
	payload any
}

func (f *fakeTransport) Start() {
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	f.binds.Connect()
}

func (f *fakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected && !f.closed
}

func (f *fakeTransport) Emit(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emits = append(f.emits, emitted{event: event, payload: payload})
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.connected = false
	f.mu.Unlock()
	return nil
}

// drop simulates the connection breaking; the transport keeps retrying.
func (f *fakeTransport) drop() {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
	f.binds.Disconnect("test drop")
}

// reconnect simulates the retry succeeding.
func (f *fakeTransport) reconnect() {
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	f.binds.Connect()
}

// inject delivers an inbound packet as if read off the wire.
func (f *fakeTransport) inject(t *testing.T, event string, payload any) {
	t.Helper()
	pkt, err := proto.NewPacket(event, payload)
	if err != nil {
		t.Fatalf("encode %s payload: %v", event, err)
	}
	f.binds.Packet(pkt)
}

// injectRaw delivers an inbound packet with a hand-written JSON payload.
func (f *fakeTransport) injectRaw(event string, raw string) {
	f.binds.Packet(proto.Packet{Event: event, Data: json.RawMessage(raw)})
}

func (f *fakeTransport) emitted() []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]emitted, len(f.emits))
	copy(out, f.emits)
	return out
}

func (f *fakeTransport) emittedNames() []string {
	events := f.emitted()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.event
	}
	return names
}

// newTestManager wires a Manager to a fakeTransport and a buffered logger.
func newTestManager(t *testing.T, opts Options) (*Manager, *fakeTransport, *bytes.Buffer) {
	t.Helper()

	ft := &fakeTransport{}
	dial := func(_ context.Context, _, token string, binds Binds) (Transport, error) {
		ft.binds = binds
		ft.token = token
		return ft, nil
	}

	buf := &bytes.Buffer{}
	logger := log.NewWithWriter("debug", buf)
	m := New(opts, logger, dial)
	t.Cleanup(m.Disconnect)
	return m, ft, buf
}

var errTestFatal = errors.New("gateway unreachable")

// changesRecorder collects state transitions across goroutines.
type changesRecorder struct {
	mu      sync.Mutex
	changes []StateChange
}

func (c *changesRecorder) record(change StateChange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, change)
}

func (c *changesRecorder) has(state ConnState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, change := range c.changes {
		if change.New == state {
			return true
		}
	}
	return false
}

// waitFor polls until cond holds or the deadline expires.
func waitFor(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
