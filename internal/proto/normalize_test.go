package proto

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizeMessageCoercesStringID(t *testing.T) {
	msg := NormalizeMessage(json.RawMessage(`{"id":"100","channel_id":42,"sender_id":"7","content":"hi"}`), nil)

	if msg.ID != 100 {
		t.Fatalf("id not coerced: %d", msg.ID)
	}
	if msg.SenderID != 7 {
		t.Fatalf("sender_id not coerced: %d", msg.SenderID)
	}
	if msg.ChannelID != 42 || msg.Content != "hi" {
		t.Fatalf("fields mangled: %+v", msg)
	}
}

func TestNormalizeMessageDefaults(t *testing.T) {
	before := time.Now().Add(-time.Second)
	msg := NormalizeMessage(json.RawMessage(`{"id":1,"content":"x"}`), nil)

	if msg.MessageType != DefaultMessageType {
		t.Fatalf("message_type not defaulted: %q", msg.MessageType)
	}
	ts, err := time.Parse(time.RFC3339, msg.Timestamp)
	if err != nil {
		t.Fatalf("defaulted timestamp not RFC3339: %q", msg.Timestamp)
	}
	if ts.Before(before) {
		t.Fatalf("defaulted timestamp not recent: %v", ts)
	}
}

func TestNormalizeMessageKeepsExplicitFields(t *testing.T) {
	raw := `{"id":5,"content":"pic","message_type":"image","timestamp":"2026-01-02T03:04:05Z","username":"ava","display_name":"Ava"}`
	msg := NormalizeMessage(json.RawMessage(raw), nil)

	if msg.MessageType != "image" {
		t.Fatalf("explicit message_type overridden: %q", msg.MessageType)
	}
	if msg.Timestamp != "2026-01-02T03:04:05Z" {
		t.Fatalf("explicit timestamp overridden: %q", msg.Timestamp)
	}
	if msg.DisplayName != "Ava" {
		t.Fatalf("display name lost: %+v", msg)
	}
}

func TestNormalizeMessageFallsBackToUsername(t *testing.T) {
	msg := NormalizeMessage(json.RawMessage(`{"id":1,"username":"ava"}`), nil)
	if msg.DisplayName != "ava" {
		t.Fatalf("display_name should fall back to username: %+v", msg)
	}
}

func TestNormalizeMessageIsTotal(t *testing.T) {
	for _, raw := range []string{``, `null`, `{}`, `{"id":{"nested":true}}`, `not json`, `[1,2]`} {
		msg := NormalizeMessage(json.RawMessage(raw), nil)
		if msg.MessageType != DefaultMessageType {
			t.Fatalf("payload %q: message_type not defaulted", raw)
		}
		if msg.Timestamp == "" {
			t.Fatalf("payload %q: timestamp not defaulted", raw)
		}
	}
}

func TestFlexInt64(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		fail bool
	}{
		{raw: `7`, want: 7},
		{raw: `"42"`, want: 42},
		{raw: `null`, want: 0},
		{raw: `""`, want: 0},
		{raw: `"abc"`, fail: true},
		{raw: `1.5`, fail: true},
	}
	for _, tc := range tests {
		var f FlexInt64
		err := json.Unmarshal([]byte(tc.raw), &f)
		if tc.fail {
			if err == nil {
				t.Fatalf("raw %s: expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("raw %s: %v", tc.raw, err)
		}
		if int64(f) != tc.want {
			t.Fatalf("raw %s: got %d want %d", tc.raw, f, tc.want)
		}
	}
}
