package proto

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexInt64 decodes a JSON number or a numeric JSON string. The gateway is
// not consistent about which one it sends for entity ids.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*f = FlexInt64(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexInt64(n)
	return nil
}

// ChatMessage is the canonical message shape handed to subscribers, for both
// channel messages and direct messages. Inbound payloads are coerced into it
// by Normalize; see normalize.go for the defaults.
type ChatMessage struct {
	ID          int64  `json:"id"`
	ChannelID   int64  `json:"channel_id,omitempty"`
	SenderID    int64  `json:"sender_id"`
	ReceiverID  int64  `json:"receiver_id,omitempty"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	Timestamp   string `json:"timestamp"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// UserStatus reports a presence change for one user.
type UserStatus struct {
	UserID FlexInt64 `json:"user_id"`
	Status string    `json:"status"`
}

// Typing scopes: a typing indicator belongs to either a channel or a DM pair.
const (
	TypingScopeChannel = "channel"
	TypingScopeDM      = "dm"
)

// TypingEvent reports that a user started or stopped typing. Scope is set by
// the client when funneling channel and DM typing into one handler class.
type TypingEvent struct {
	Scope     string    `json:"scope,omitempty"`
	ChannelID FlexInt64 `json:"channel_id,omitempty"`
	UserID    FlexInt64 `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	IsTyping  bool      `json:"is_typing"`
}

// CommunityEvent announces a newly created community.
type CommunityEvent struct {
	ID      FlexInt64 `json:"id"`
	Name    string    `json:"name"`
	OwnerID FlexInt64 `json:"owner_id"`
}

// ChannelEvent is the tagged union for channel lifecycle notifications. Type
// is one of the ChannelEvent* discriminators.
type ChannelEvent struct {
	Type        string    `json:"type"`
	ChannelID   FlexInt64 `json:"channel_id,omitempty"`
	CommunityID FlexInt64 `json:"community_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	ChannelType string    `json:"channel_type,omitempty"`
	UserID      FlexInt64 `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
}

// DirectMessageRead is a read receipt for a DM conversation.
type DirectMessageRead struct {
	ReaderID  FlexInt64 `json:"reader_id"`
	PeerID    FlexInt64 `json:"peer_id"`
	MessageID FlexInt64 `json:"message_id,omitempty"`
}

// FriendRequestEvent is the tagged union for friend request notifications.
// Type is one of the FriendRequest* discriminators.
type FriendRequestEvent struct {
	Type        string    `json:"type"`
	RequestID   FlexInt64 `json:"request_id,omitempty"`
	SenderID    FlexInt64 `json:"sender_id,omitempty"`
	ReceiverID  FlexInt64 `json:"receiver_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
}

// FriendStatusEvent is the tagged union for friend presence and relationship
// notifications. Type is one of the FriendStatus* discriminators.
type FriendStatusEvent struct {
	Type     string    `json:"type"`
	UserID   FlexInt64 `json:"user_id"`
	Username string    `json:"username,omitempty"`
	Status   string    `json:"status,omitempty"`
}

// Outbound payload shapes. The gateway expects snake_case field names.

// JoinChannelData subscribes the socket to a channel room.
type JoinChannelData struct {
	ChannelID int64 `json:"channel_id"`
}

// TypingData reports local typing state for a channel.
type TypingData struct {
	ChannelID int64 `json:"channel_id"`
	IsTyping  bool  `json:"is_typing"`
}

// NewMessageData notifies channel peers of a message already persisted via
// the REST API.
type NewMessageData struct {
	ID        int64  `json:"id,omitempty"`
	ChannelID int64  `json:"channel_id"`
	Content   string `json:"content"`
}

// JoinDMData subscribes the socket to the DM room with one peer.
type JoinDMData struct {
	UserID int64 `json:"user_id"`
}

// TypingDMData reports local typing state for a DM conversation.
type TypingDMData struct {
	UserID   int64 `json:"user_id"`
	IsTyping bool  `json:"is_typing"`
}

// DirectMessageData notifies a DM peer of a message already persisted via
// the REST API.
type DirectMessageData struct {
	ID         int64  `json:"id,omitempty"`
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
}

// FriendRequestData notifies a peer about a friend request operation.
type FriendRequestData struct {
	RequestID  int64 `json:"request_id,omitempty"`
	ReceiverID int64 `json:"receiver_id"`
}

// CommunityCreatedData announces a new community to connected peers.
type CommunityCreatedData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ChannelLifecycleData announces a channel create/update/delete to peers.
type ChannelLifecycleData struct {
	ChannelID   int64  `json:"channel_id"`
	CommunityID int64  `json:"community_id,omitempty"`
	Name        string `json:"name,omitempty"`
	ChannelType string `json:"channel_type,omitempty"`
}

// MemberAddedData announces a new community member to peers.
type MemberAddedData struct {
	CommunityID int64 `json:"community_id"`
	UserID      int64 `json:"user_id"`
}
