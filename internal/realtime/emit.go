package realtime

import "github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"

// emit sends one named event if the transport is up. Emitting while
// disconnected is a logged no-op, never an error: the REST API is the
// durability path, the socket only notifies already-connected peers.
func (m *Manager) emit(event string, payload any) {
	m.mu.Lock()
	t := m.transport
	m.mu.Unlock()

	if t == nil || !t.Connected() {
		m.log.Warn().Str("event", event).Msg("emit dropped: not connected")
		return
	}
	if err := t.Emit(event, payload); err != nil {
		m.log.Warn().Err(err).Str("event", event).Msg("emit failed")
	}
}

// BroadcastMessage notifies channel peers of a message the REST API already
// persisted. Fire-and-forget: no acknowledgement, no retry.
func (m *Manager) BroadcastMessage(msg proto.NewMessageData) {
	m.emit(proto.EmitNewMessage, msg)
}

// SendDirectMessage notifies the DM peer of a persisted direct message.
func (m *Manager) SendDirectMessage(msg proto.DirectMessageData) {
	m.emit(proto.EmitSendDirectMessage, msg)
}

// SendFriendRequest notifies a peer that a friend request was created.
func (m *Manager) SendFriendRequest(req proto.FriendRequestData) {
	m.emit(proto.EmitFriendRequestSent, req)
}

// NotifyFriendRequestAccepted notifies the original sender of an acceptance.
func (m *Manager) NotifyFriendRequestAccepted(req proto.FriendRequestData) {
	m.emit(proto.EmitFriendRequestAccepted, req)
}

// NotifyCommunityCreated announces a newly created community.
func (m *Manager) NotifyCommunityCreated(data proto.CommunityCreatedData) {
	m.emit(proto.EmitCommunityCreated, data)
}

// NotifyChannelCreated announces a newly created channel.
func (m *Manager) NotifyChannelCreated(data proto.ChannelLifecycleData) {
	m.emit(proto.EmitChannelCreated, data)
}

// NotifyChannelUpdated announces a channel rename or topic change.
func (m *Manager) NotifyChannelUpdated(data proto.ChannelLifecycleData) {
	m.emit(proto.EmitChannelUpdated, data)
}

// NotifyChannelDeleted announces a channel deletion.
func (m *Manager) NotifyChannelDeleted(data proto.ChannelLifecycleData) {
	m.emit(proto.EmitChannelDeleted, data)
}

// NotifyCommunityMemberAdded announces a new community member.
func (m *Manager) NotifyCommunityMemberAdded(data proto.MemberAddedData) {
	m.emit(proto.EmitCommunityMemberAdded, data)
}
