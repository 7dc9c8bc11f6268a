package realtime

import "github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"

// JoinChannel subscribes the socket to a channel room. Joining a different
// channel leaves the previous one first; the client is in at most one
// channel room at a time. Re-joining the currently joined channel is a
// no-op.
func (m *Manager) JoinChannel(channelID int64) {
	if !m.Connected() {
		m.log.Warn().Int64("channel_id", channelID).Msg("join_channel dropped: not connected")
		return
	}

	m.mu.Lock()
	prev := m.currentChannel
	if prev == channelID {
		m.mu.Unlock()
		m.log.Debug().Int64("channel_id", channelID).Msg("already in channel")
		return
	}
	m.currentChannel = channelID
	m.mu.Unlock()

	if prev != 0 {
		m.emit(proto.EmitLeaveChannel, proto.JoinChannelData{ChannelID: prev})
	}
	m.emit(proto.EmitJoinChannel, proto.JoinChannelData{ChannelID: channelID})
}

// LeaveChannel leaves the current channel room, if any.
func (m *Manager) LeaveChannel() {
	m.mu.Lock()
	channel := m.currentChannel
	m.currentChannel = 0
	m.mu.Unlock()

	if channel == 0 {
		return
	}
	m.channelTyping.Cancel()
	m.emit(proto.EmitLeaveChannel, proto.JoinChannelData{ChannelID: channel})
}

// JoinDMConversation subscribes the socket to the DM room with one peer.
// The DM room is independent of channel membership and follows the same
// one-at-a-time rule.
func (m *Manager) JoinDMConversation(userID int64) {
	if !m.Connected() {
		m.log.Warn().Int64("user_id", userID).Msg("join_dm dropped: not connected")
		return
	}

	m.mu.Lock()
	prev := m.currentDMUser
	if prev == userID {
		m.mu.Unlock()
		m.log.Debug().Int64("user_id", userID).Msg("already in dm room")
		return
	}
	m.currentDMUser = userID
	m.mu.Unlock()

	if prev != 0 {
		m.emit(proto.EmitLeaveDM, proto.JoinDMData{UserID: prev})
	}
	m.emit(proto.EmitJoinDM, proto.JoinDMData{UserID: userID})
}

// LeaveDMConversation leaves the current DM room, if any.
func (m *Manager) LeaveDMConversation() {
	m.mu.Lock()
	peer := m.currentDMUser
	m.currentDMUser = 0
	m.mu.Unlock()

	if peer == 0 {
		return
	}
	m.dmTyping.Cancel()
	m.emit(proto.EmitLeaveDM, proto.JoinDMData{UserID: peer})
}

// JoinFriendStatus subscribes to the friend presence broadcast room.
func (m *Manager) JoinFriendStatus() {
	if !m.Connected() {
		m.log.Warn().Msg("join_friend_status dropped: not connected")
		return
	}
	m.mu.Lock()
	already := m.inFriendStatus
	m.inFriendStatus = true
	m.mu.Unlock()
	if already {
		return
	}
	m.emit(proto.EmitJoinFriendStatus, nil)
}

// LeaveFriendStatus leaves the friend presence broadcast room.
func (m *Manager) LeaveFriendStatus() {
	m.mu.Lock()
	joined := m.inFriendStatus
	m.inFriendStatus = false
	m.mu.Unlock()
	if !joined {
		return
	}
	m.emit(proto.EmitLeaveFriendStatus, nil)
}

// SendTyping reports local typing state for a channel. A true emission
// schedules (replacing any pending one) an auto-stop that fires the false
// emission after the configured delay, so a peer never sees a stuck typing
// indicator when the user just stops.
func (m *Manager) SendTyping(channelID int64, isTyping bool) {
	if !m.Connected() {
		m.log.Warn().Int64("channel_id", channelID).Msg("typing dropped: not connected")
		return
	}

	if isTyping {
		m.emit(proto.EmitTyping, proto.TypingData{ChannelID: channelID, IsTyping: true})
		m.channelTyping.Restart(m.opts.TypingAutoStop, func() {
			m.SendTyping(channelID, false)
		})
		return
	}

	m.channelTyping.Cancel()
	m.emit(proto.EmitTyping, proto.TypingData{ChannelID: channelID, IsTyping: false})
}

// SendTypingDM is the DM-scoped twin of SendTyping, with its own timer slot.
func (m *Manager) SendTypingDM(userID int64, isTyping bool) {
	if !m.Connected() {
		m.log.Warn().Int64("user_id", userID).Msg("typing_dm dropped: not connected")
		return
	}

	if isTyping {
		m.emit(proto.EmitTypingDM, proto.TypingDMData{UserID: userID, IsTyping: true})
		m.dmTyping.Restart(m.opts.TypingAutoStop, func() {
			m.SendTypingDM(userID, false)
		})
		return
	}

	m.dmTyping.Cancel()
	m.emit(proto.EmitTypingDM, proto.TypingDMData{UserID: userID, IsTyping: false})
}
