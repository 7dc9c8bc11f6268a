package proto

// Event names consumed from the gateway. The vocabulary is fixed; the client
// never subscribes to names outside this set.
const (
	// Connection lifecycle names, listed to keep the gateway vocabulary
	// complete. The manager never routes them as packets; the transport
	// reports these transitions through its Connect/Disconnect/Fatal
	// callbacks instead.
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventConnectError = "connect_error"

	EventUserStatus           = "user_status"
	EventMessageReceived      = "message_received"
	EventUserTyping           = "user_typing"
	EventStatus               = "status"
	EventError                = "error"
	EventCommunityCreated     = "community_created"
	EventChannelCreated       = "channel_created"
	EventChannelUpdated       = "channel_updated"
	EventChannelDeleted       = "channel_deleted"
	EventCommunityMemberAdded = "community_member_added"
	EventReceiveDirectMessage = "receive_direct_message"
	EventDirectMessageRead    = "direct_message_read"
	EventUserTypingDM         = "user_typing_dm"
	EventFriendRequestRecv    = "friend_request_received"
	EventFriendRequestAccept  = "friend_request_accepted"
	EventFriendRequestReject  = "friend_request_rejected"
	EventFriendStatusChanged  = "friend_status_changed"
	EventFriendRemoved        = "friend_removed"
	EventUserBlocked          = "user_blocked"
	EventUserUnblocked        = "user_unblocked"
)

// Event names emitted to the gateway.
const (
	EmitJoinChannel           = "join_channel"
	EmitLeaveChannel          = "leave_channel"
	EmitTyping                = "typing"
	EmitNewMessage            = "new_message"
	EmitJoinDM                = "join_dm"
	EmitLeaveDM               = "leave_dm"
	EmitTypingDM              = "typing_dm"
	EmitSendDirectMessage     = "send_direct_message"
	EmitFriendRequestSent     = "friend_request_sent"
	EmitFriendRequestAccepted = "friend_request_accepted_response"
	EmitJoinFriendStatus      = "join_friend_status"
	EmitLeaveFriendStatus     = "leave_friend_status"
	EmitCommunityCreated      = "community_created"
	EmitChannelCreated        = "channel_created"
	EmitChannelUpdated        = "channel_updated"
	EmitChannelDeleted        = "channel_deleted"
	EmitCommunityMemberAdded  = "community_member_added"
)

// Discriminator values for channel lifecycle events fanned out through a
// single handler class.
const (
	ChannelEventCreated     = "created"
	ChannelEventUpdated     = "updated"
	ChannelEventDeleted     = "deleted"
	ChannelEventMemberAdded = "member_added"
)

// Discriminator values for friend request events.
const (
	FriendRequestReceived = "received"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// Discriminator values for friend status events.
const (
	FriendStatusChanged   = "status_changed"
	FriendStatusRemoved   = "removed"
	FriendStatusBlocked   = "blocked"
	FriendStatusUnblocked = "unblocked"
)
