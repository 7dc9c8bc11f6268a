package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"
)

// Options configure a Manager. Zero values fall back to defaults.
type Options struct {
	// GatewayURL is the websocket endpoint, e.g. ws://localhost:8080/ws.
	GatewayURL string

	// TypingAutoStop is how long after the last "is typing" emission the
	// manager sends the stop event on the caller's behalf.
	TypingAutoStop time.Duration
}

// DefaultTypingAutoStop matches the delay the AuraFlow web client uses.
const DefaultTypingAutoStop = 3 * time.Second

// StateChange reports a connection state transition to subscribers.
type StateChange struct {
	Old ConnState
	New ConnState
	Err error
}

// Manager owns the gateway connection and multiplexes chat messages, direct
// messages, typing indicators, presence, friend events and channel lifecycle
// events over it. It tracks the rooms the client believes it has joined and
// resynchronizes them after a reconnect; the server forgets room membership
// when a socket drops.
//
// One Manager exists per authenticated session. Construct it at login, call
// Disconnect at logout.
type Manager struct {
	opts Options
	log  *zerolog.Logger
	dial Dialer

	mu             sync.Mutex
	transport      Transport
	state          ConnState
	token          string
	currentChannel int64 // 0 means no channel joined
	currentDMUser  int64 // 0 means no DM room joined
	inFriendStatus bool

	channelTyping autoStopTimer
	dmTyping      autoStopTimer

	messages       registry[proto.ChatMessage]
	statuses       registry[proto.UserStatus]
	typing         registry[proto.TypingEvent]
	errs           registry[proto.Error]
	communities    registry[proto.CommunityEvent]
	channels       registry[proto.ChannelEvent]
	directMessages registry[proto.ChatMessage]
	dmReads        registry[proto.DirectMessageRead]
	friendRequests registry[proto.FriendRequestEvent]
	friendStatuses registry[proto.FriendStatusEvent]
	states         registry[StateChange]
}

// New constructs a Manager. dial opens the transport when Connect is called;
// pass ws.Dialer(...) outside tests.
func New(opts Options, logger *zerolog.Logger, dial Dialer) *Manager {
	if opts.TypingAutoStop <= 0 {
		opts.TypingAutoStop = DefaultTypingAutoStop
	}
	return &Manager{
		opts:  opts,
		log:   logger,
		dial:  dial,
		state: StateDisconnected,
	}
}

// Connect opens the gateway transport, authenticating with token in the
// handshake. Idempotent: a second call while a transport exists is ignored.
// The call returns immediately; connection progress is reported through
// OnStateChange.
func (m *Manager) Connect(token string) {
	m.mu.Lock()
	if m.transport != nil {
		m.mu.Unlock()
		m.log.Debug().Msg("connect ignored: transport already exists")
		return
	}
	m.token = token
	m.setStateLocked(StateConnecting, nil)
	m.mu.Unlock()

	binds := Binds{
		Connect:    m.onTransportConnect,
		Disconnect: m.onTransportDisconnect,
		Packet:     m.handlePacket,
		Fatal:      m.onTransportFatal,
	}

	t, err := m.dial(context.Background(), m.opts.GatewayURL, token, binds)
	if err != nil {
		m.log.Error().Err(err).Str("url", m.opts.GatewayURL).Msg("gateway dial setup failed")
		m.mu.Lock()
		m.setStateLocked(StateClosed, err)
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	m.transport = t
	m.mu.Unlock()
	t.Start()
}

// Disconnect cancels pending typing auto-stops, closes the transport and
// clears all room state. Safe to call when already disconnected.
func (m *Manager) Disconnect() {
	m.channelTyping.Cancel()
	m.dmTyping.Cancel()

	m.mu.Lock()
	t := m.transport
	m.transport = nil
	m.currentChannel = 0
	m.currentDMUser = 0
	m.inFriendStatus = false
	m.setStateLocked(StateClosed, nil)
	m.mu.Unlock()

	if t != nil {
		if err := t.Close(); err != nil {
			m.log.Warn().Err(err).Msg("transport close")
		}
		m.log.Info().Msg("disconnected from gateway")
	}
}

// State returns the current connection state.
func (m *Manager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connected reports whether emits would currently reach the gateway.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	t := m.transport
	m.mu.Unlock()
	return t != nil && t.Connected()
}

func (m *Manager) setStateLocked(next ConnState, err error) {
	if m.state == next {
		return
	}
	change := StateChange{Old: m.state, New: next, Err: err}
	m.state = next
	go m.states.dispatch(change, m.log)
}

// onTransportConnect fires on every successful connect, including post-drop
// reconnects. The server does not remember room membership across a dropped
// socket, so the previously joined channel is re-joined here.
func (m *Manager) onTransportConnect() {
	m.mu.Lock()
	channel := m.currentChannel
	m.setStateLocked(StateConnected, nil)
	m.mu.Unlock()

	m.log.Info().Str("url", m.opts.GatewayURL).Msg("gateway connected")

	if channel != 0 {
		m.log.Debug().Int64("channel_id", channel).Msg("rejoining channel after reconnect")
		m.emit(proto.EmitJoinChannel, proto.JoinChannelData{ChannelID: channel})
	}
}

func (m *Manager) onTransportDisconnect(reason string) {
	m.mu.Lock()
	m.setStateLocked(StateReconnecting, nil)
	m.mu.Unlock()
	m.log.Warn().Str("reason", reason).Msg("gateway connection dropped, reconnecting")
}

// onTransportFatal fires once when the transport exhausted its reconnect
// attempts. This is user-visible through OnStateChange, not silently
// retried.
func (m *Manager) onTransportFatal(err error) {
	m.log.Error().Err(err).Msg("gateway connection failed permanently")
	m.mu.Lock()
	m.setStateLocked(StateClosed, err)
	m.mu.Unlock()
	m.Disconnect()
}

// handlePacket routes one inbound frame: normalize once, then fan out to
// every handler registered for the event's class.
func (m *Manager) handlePacket(pkt proto.Packet) {
	switch pkt.Event {
	case proto.EventMessageReceived:
		m.messages.dispatch(proto.NormalizeMessage(pkt.Data, m.log), m.log)

	case proto.EventReceiveDirectMessage:
		m.directMessages.dispatch(proto.NormalizeMessage(pkt.Data, m.log), m.log)

	case proto.EventUserStatus, proto.EventStatus:
		m.statuses.dispatch(decode[proto.UserStatus](pkt.Data, m.log), m.log)

	case proto.EventUserTyping:
		ev := decode[proto.TypingEvent](pkt.Data, m.log)
		ev.Scope = proto.TypingScopeChannel
		m.typing.dispatch(ev, m.log)

	case proto.EventUserTypingDM:
		ev := decode[proto.TypingEvent](pkt.Data, m.log)
		ev.Scope = proto.TypingScopeDM
		m.typing.dispatch(ev, m.log)

	case proto.EventError:
		m.errs.dispatch(decode[proto.Error](pkt.Data, m.log), m.log)

	case proto.EventCommunityCreated:
		m.communities.dispatch(decode[proto.CommunityEvent](pkt.Data, m.log), m.log)

	case proto.EventChannelCreated:
		m.dispatchChannel(pkt.Data, proto.ChannelEventCreated)
	case proto.EventChannelUpdated:
		m.dispatchChannel(pkt.Data, proto.ChannelEventUpdated)
	case proto.EventChannelDeleted:
		m.dispatchChannel(pkt.Data, proto.ChannelEventDeleted)
	case proto.EventCommunityMemberAdded:
		m.dispatchChannel(pkt.Data, proto.ChannelEventMemberAdded)

	case proto.EventDirectMessageRead:
		m.dmReads.dispatch(decode[proto.DirectMessageRead](pkt.Data, m.log), m.log)

	case proto.EventFriendRequestRecv:
		m.dispatchFriendRequest(pkt.Data, proto.FriendRequestReceived)
	case proto.EventFriendRequestAccept:
		m.dispatchFriendRequest(pkt.Data, proto.FriendRequestAccepted)
	case proto.EventFriendRequestReject:
		m.dispatchFriendRequest(pkt.Data, proto.FriendRequestRejected)

	case proto.EventFriendStatusChanged:
		m.dispatchFriendStatus(pkt.Data, proto.FriendStatusChanged)
	case proto.EventFriendRemoved:
		m.dispatchFriendStatus(pkt.Data, proto.FriendStatusRemoved)
	case proto.EventUserBlocked:
		m.dispatchFriendStatus(pkt.Data, proto.FriendStatusBlocked)
	case proto.EventUserUnblocked:
		m.dispatchFriendStatus(pkt.Data, proto.FriendStatusUnblocked)

	default:
		m.log.Debug().Str("event", pkt.Event).Msg("unhandled gateway event")
	}
}

// dispatchChannel funnels the four channel lifecycle events through one
// handler class, discriminated by kind, so subscribers hold a single
// subscription instead of four.
func (m *Manager) dispatchChannel(data json.RawMessage, kind string) {
	ev := decode[proto.ChannelEvent](data, m.log)
	ev.Type = kind
	m.channels.dispatch(ev, m.log)
}

func (m *Manager) dispatchFriendRequest(data json.RawMessage, kind string) {
	ev := decode[proto.FriendRequestEvent](data, m.log)
	ev.Type = kind
	m.friendRequests.dispatch(ev, m.log)
}

func (m *Manager) dispatchFriendStatus(data json.RawMessage, kind string) {
	ev := decode[proto.FriendStatusEvent](data, m.log)
	ev.Type = kind
	m.friendStatuses.dispatch(ev, m.log)
}

// decode unmarshals a payload leniently: a malformed payload yields the zero
// value and a debug diagnostic, never an error to the dispatch path.
func decode[T any](data json.RawMessage, logger *zerolog.Logger) T {
	var v T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &v); err != nil && logger != nil {
			logger.Debug().Err(err).Msg("decode gateway payload")
		}
	}
	return v
}

// Subscriptions. Each returns an unsubscribe closure; see registry.go for
// the ordering and removal guarantees.

// OnMessage subscribes to normalized channel messages.
func (m *Manager) OnMessage(fn func(proto.ChatMessage)) func() { return m.messages.subscribe(fn) }

// OnUserStatus subscribes to presence changes.
func (m *Manager) OnUserStatus(fn func(proto.UserStatus)) func() { return m.statuses.subscribe(fn) }

// OnTyping subscribes to channel and DM typing indicators; the payload's
// Scope field tells them apart.
func (m *Manager) OnTyping(fn func(proto.TypingEvent)) func() { return m.typing.subscribe(fn) }

// OnError subscribes to application-level errors reported by the gateway.
// The manager forwards them verbatim and takes no corrective action itself.
func (m *Manager) OnError(fn func(proto.Error)) func() { return m.errs.subscribe(fn) }

// OnCommunityCreated subscribes to community creation announcements.
func (m *Manager) OnCommunityCreated(fn func(proto.CommunityEvent)) func() {
	return m.communities.subscribe(fn)
}

// OnChannelEvent subscribes to the tagged channel lifecycle union
// (created, updated, deleted, member_added).
func (m *Manager) OnChannelEvent(fn func(proto.ChannelEvent)) func() {
	return m.channels.subscribe(fn)
}

// OnDirectMessage subscribes to normalized direct messages.
func (m *Manager) OnDirectMessage(fn func(proto.ChatMessage)) func() {
	return m.directMessages.subscribe(fn)
}

// OnDirectMessageRead subscribes to DM read receipts.
func (m *Manager) OnDirectMessageRead(fn func(proto.DirectMessageRead)) func() {
	return m.dmReads.subscribe(fn)
}

// OnFriendRequest subscribes to the tagged friend request union
// (received, accepted, rejected).
func (m *Manager) OnFriendRequest(fn func(proto.FriendRequestEvent)) func() {
	return m.friendRequests.subscribe(fn)
}

// OnFriendStatus subscribes to the tagged friend status union
// (status_changed, removed, blocked, unblocked).
func (m *Manager) OnFriendStatus(fn func(proto.FriendStatusEvent)) func() {
	return m.friendStatuses.subscribe(fn)
}

// OnStateChange subscribes to connection state transitions.
func (m *Manager) OnStateChange(fn func(StateChange)) func() { return m.states.subscribe(fn) }
