package realtime

import (
	"testing"
	"time"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"
)

func TestInboundMessageIsNormalizedOncePerHandler(t *testing.T) {
	m, ft, _ := newTestManager(t, Options{})
	m.Connect("Bearer test")

	var got []proto.ChatMessage
	m.OnMessage(func(msg proto.ChatMessage) { got = append(got, msg) })

	ft.injectRaw(proto.EventMessageReceived, `{"id":"100","channel_id":42,"content":"hi"}`)

	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	msg := got[0]
	if msg.ID != 100 {
		t.Fatalf("id not coerced to a number: %+v", msg)
	}
	if msg.ChannelID != 42 || msg.Content != "hi" {
		t.Fatalf("payload mangled: %+v", msg)
	}
	if msg.MessageType != "text" {
		t.Fatalf("message_type not defaulted: %q", msg.MessageType)
	}
	if msg.Timestamp == "" {
		t.Fatal("timestamp not defaulted")
	}
	if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
		t.Fatalf("defaulted timestamp not RFC3339: %q", msg.Timestamp)
	}
}

func TestMultipleSubscribersPerClass(t *testing.T) {
	m, ft, _ := newTestManager(t, Options{})
	m.Connect("Bearer test")

	var first, second int
	m.OnMessage(func(proto.ChatMessage) { first++ })
	m.OnMessage(func(proto.ChatMessage) { second++ })

	ft.injectRaw(proto.EventMessageReceived, `{"id":1,"content":"a"}`)
	ft.injectRaw(proto.EventMessageReceived, `{"id":2,"content":"b"}`)

	if first != 2 || second != 2 {
		t.Fatalf("expected each subscriber to see every event, got %d/%d", first, second)
	}
}

func TestChannelLifecycleFunnelsIntoOneClass(t *testing.T) {
	m, ft, _ := newTestManager(t, Options{})
	m.Connect("Bearer test")

	var got []proto.ChannelEvent
	m.OnChannelEvent(func(ev proto.ChannelEvent) { got = append(got, ev) })

	ft.injectRaw(proto.EventChannelCreated, `{"channel_id":1,"name":"general"}`)
	ft.injectRaw(proto.EventChannelUpdated, `{"channel_id":1,"name":"general-2"}`)
	ft.injectRaw(proto.EventChannelDeleted, `{"channel_id":1}`)
	ft.injectRaw(proto.EventCommunityMemberAdded, `{"community_id":7,"user_id":"3"}`)

	want := []string{
		proto.ChannelEventCreated,
		proto.ChannelEventUpdated,
		proto.ChannelEventDeleted,
		proto.ChannelEventMemberAdded,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), got)
	}
	for i, kind := range want {
		if got[i].Type != kind {
			t.Fatalf("event %d tagged %q, want %q", i, got[i].Type, kind)
		}
	}
	if got[3].UserID != 3 {
		t.Fatalf("member_added user id not coerced: %+v", got[3])
	}
}

func TestTypingEventsCarryScope(t *testing.T) {
	m, ft, _ := newTestManager(t, Options{})
	m.Connect("Bearer test")

	var got []proto.TypingEvent
	m.OnTyping(func(ev proto.TypingEvent) { got = append(got, ev) })

	ft.injectRaw(proto.EventUserTyping, `{"channel_id":5,"user_id":2,"is_typing":true}`)
	ft.injectRaw(proto.EventUserTypingDM, `{"user_id":2,"is_typing":true}`)

	if len(got) != 2 {
		t.Fatalf("expected 2 typing events, got %d", len(got))
	}
	if got[0].Scope != proto.TypingScopeChannel || got[1].Scope != proto.TypingScopeDM {
		t.Fatalf("scopes wrong: %+v", got)
	}
}

func TestServerErrorsForwardedVerbatim(t *testing.T) {
	m, ft, _ := newTestManager(t, Options{})
	m.Connect("Bearer test")

	var got []proto.Error
	m.OnError(func(e proto.Error) { got = append(got, e) })

	ft.injectRaw(proto.EventError, `{"code":"not_in_room","msg":"join the channel first"}`)

	if len(got) != 1 || got[0].Code != "not_in_room" || got[0].Msg != "join the channel first" {
		t.Fatalf("error not forwarded verbatim: %+v", got)
	}
}

func TestFriendEventUnions(t *testing.T) {
	m, ft, _ := newTestManager(t, Options{})
	m.Connect("Bearer test")

	var requests []proto.FriendRequestEvent
	var statuses []proto.FriendStatusEvent
	m.OnFriendRequest(func(ev proto.FriendRequestEvent) { requests = append(requests, ev) })
	m.OnFriendStatus(func(ev proto.FriendStatusEvent) { statuses = append(statuses, ev) })

	ft.injectRaw(proto.EventFriendRequestRecv, `{"request_id":1,"sender_id":2}`)
	ft.injectRaw(proto.EventFriendRequestAccept, `{"request_id":1}`)
	ft.injectRaw(proto.EventFriendRequestReject, `{"request_id":1}`)
	ft.injectRaw(proto.EventFriendStatusChanged, `{"user_id":2,"status":"online"}`)
	ft.injectRaw(proto.EventFriendRemoved, `{"user_id":2}`)
	ft.injectRaw(proto.EventUserBlocked, `{"user_id":2}`)
	ft.injectRaw(proto.EventUserUnblocked, `{"user_id":2}`)

	if len(requests) != 3 {
		t.Fatalf("expected 3 friend request events, got %+v", requests)
	}
	if requests[0].Type != proto.FriendRequestReceived ||
		requests[1].Type != proto.FriendRequestAccepted ||
		requests[2].Type != proto.FriendRequestRejected {
		t.Fatalf("friend request tags wrong: %+v", requests)
	}

	wantStatus := []string{
		proto.FriendStatusChanged,
		proto.FriendStatusRemoved,
		proto.FriendStatusBlocked,
		proto.FriendStatusUnblocked,
	}
	if len(statuses) != len(wantStatus) {
		t.Fatalf("expected %d friend status events, got %+v", len(wantStatus), statuses)
	}
	for i, kind := range wantStatus {
		if statuses[i].Type != kind {
			t.Fatalf("status %d tagged %q, want %q", i, statuses[i].Type, kind)
		}
	}
}

func TestUnknownInboundEventIsIgnored(t *testing.T) {
	m, ft, _ := newTestManager(t, Options{})
	m.Connect("Bearer test")

	var deliveries int
	m.OnMessage(func(proto.ChatMessage) { deliveries++ })

	ft.injectRaw("mystery_event", `{"anything":true}`)

	if deliveries != 0 {
		t.Fatal("unknown event leaked into a handler class")
	}
}

func TestTransportFatalDisconnectsManager(t *testing.T) {
	m, ft, _ := newTestManager(t, Options{})
	m.Connect("Bearer test")
	m.JoinChannel(5)

	ft.binds.Fatal(errTestFatal)

	waitFor(t, time.Second, func() bool { return m.State() == StateClosed }, "manager not closed after fatal")
	if m.Connected() {
		t.Fatal("transport still connected after fatal")
	}
}

func TestStateChangeNotifications(t *testing.T) {
	m, ft, _ := newTestManager(t, Options{})

	var rec changesRecorder
	m.OnStateChange(rec.record)

	m.Connect("Bearer test")
	ft.drop()
	ft.reconnect()
	m.Disconnect()

	waitFor(t, time.Second, func() bool {
		return rec.has(StateConnecting) && rec.has(StateConnected) &&
			rec.has(StateReconnecting) && rec.has(StateClosed)
	}, "missing state transitions")
}
