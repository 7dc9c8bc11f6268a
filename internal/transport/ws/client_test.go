package ws_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/log"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/realtime"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/transport/ws"
)

type recorder struct {
	mu          sync.Mutex
	connects    int
	disconnects int
	fatalErr    error
	packets     []proto.Packet
}

func (r *recorder) binds() realtime.Binds {
	return realtime.Binds{
		Connect: func() {
			r.mu.Lock()
			r.connects++
			r.mu.Unlock()
		},
		Disconnect: func(string) {
			r.mu.Lock()
			r.disconnects++
			r.mu.Unlock()
		},
		Packet: func(pkt proto.Packet) {
			r.mu.Lock()
			r.packets = append(r.packets, pkt)
			r.mu.Unlock()
		},
		Fatal: func(err error) {
			r.mu.Lock()
			r.fatalErr = err
			r.mu.Unlock()
		},
	}
}

func (r *recorder) snapshot() (int, int, error, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connects, r.disconnects, r.fatalErr, len(r.packets)
}

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

func fastOptions() ws.Options {
	return ws.Options{
		MaxAttempts:  3,
		BaseDelay:    10 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		WriteTimeout: time.Second,
	}
}

func TestClientHandshakeCarriesToken(t *testing.T) {
	tokens := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens <- r.URL.Query().Get("token")
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		conn.Read(r.Context())
	}))
	defer server.Close()

	rec := &recorder{}
	client := dialTest(t, server.URL, "Bearer abc", fastOptions(), rec)
	defer client.Close()

	waitFor(t, 2*time.Second, func() bool { c, _, _, _ := rec.snapshot(); return c == 1 }, "no connect callback")

	select {
	case got := <-tokens:
		if got != "Bearer abc" {
			t.Fatalf("handshake token = %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("server saw no handshake")
	}
	if !client.Connected() {
		t.Fatal("client not connected after connect callback")
	}
}

func TestClientEmitAndReceive(t *testing.T) {
	received := make(chan proto.Packet, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		var pkt proto.Packet
		if err := wsjson.Read(r.Context(), conn, &pkt); err != nil {
			return
		}
		received <- pkt

		reply, _ := proto.NewPacket("message_received", map[string]any{"id": "9", "content": "pong"})
		_ = wsjson.Write(r.Context(), conn, reply)
		conn.Read(r.Context())
	}))
	defer server.Close()

	rec := &recorder{}
	client := dialTest(t, server.URL, "Bearer abc", fastOptions(), rec)
	defer client.Close()

	waitFor(t, 2*time.Second, func() bool { c, _, _, _ := rec.snapshot(); return c == 1 }, "not connected")

	if err := client.Emit("join_channel", proto.JoinChannelData{ChannelID: 4}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	select {
	case pkt := <-received:
		if pkt.Event != "join_channel" {
			t.Fatalf("server saw event %q", pkt.Event)
		}
	case <-time.After(time.Second):
		t.Fatal("server never received the emit")
	}

	waitFor(t, 2*time.Second, func() bool { _, _, _, p := rec.snapshot(); return p == 1 }, "no inbound packet")
	rec.mu.Lock()
	got := rec.packets[0]
	rec.mu.Unlock()
	if got.Event != "message_received" {
		t.Fatalf("inbound event = %q", got.Event)
	}
}

func TestClientReconnectsAfterServerDrop(t *testing.T) {
	var mu sync.Mutex
	accepts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		accepts++
		n := accepts
		mu.Unlock()
		if n == 1 {
			// Kick the first connection immediately.
			conn.Close(websocket.StatusGoingAway, "be right back")
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		conn.Read(r.Context())
	}))
	defer server.Close()

	rec := &recorder{}
	client := dialTest(t, server.URL, "Bearer abc", fastOptions(), rec)
	defer client.Close()

	waitFor(t, 3*time.Second, func() bool {
		c, d, _, _ := rec.snapshot()
		return c >= 2 && d >= 1
	}, "client did not reconnect after server drop")
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening

	rec := &recorder{}
	client := dialTest(t, server.URL, "Bearer abc", fastOptions(), rec)
	defer client.Close()

	waitFor(t, 3*time.Second, func() bool {
		_, _, fatal, _ := rec.snapshot()
		return fatal != nil
	}, "no fatal callback after exhausting attempts")

	if client.Connected() {
		t.Fatal("client claims connected after giving up")
	}
}

func TestClientEmitWithoutConnection(t *testing.T) {
	rec := &recorder{}
	client, err := ws.New(context.Background(), "ws://localhost:1", "Bearer abc",
		fastOptions(), rec.binds(), log.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer client.Close()

	// Never started: Emit must fail cleanly, not hang or panic.
	if err := client.Emit("typing", proto.TypingData{ChannelID: 1}); err == nil {
		t.Fatal("expected ErrNotConnected")
	}
}

func dialTest(t *testing.T, httpURL, token string, opts ws.Options, rec *recorder) *ws.Client {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http")
	client, err := ws.New(context.Background(), wsURL, token, opts, rec.binds(), log.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.Start()
	return client
}
