package proto

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMessageType is assumed when an inbound payload omits message_type.
const DefaultMessageType = "text"

type rawMessage struct {
	ID          FlexInt64 `json:"id"`
	ChannelID   FlexInt64 `json:"channel_id"`
	SenderID    FlexInt64 `json:"sender_id"`
	ReceiverID  FlexInt64 `json:"receiver_id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	Timestamp   string    `json:"timestamp"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar"`
}

// NormalizeMessage coerces an inbound channel or direct message payload into
// the canonical ChatMessage shape. It is total: malformed or missing fields
// fall back to documented defaults (zero ids, message_type "text", timestamp
// now) and are logged at debug level rather than surfaced as errors.
func NormalizeMessage(data json.RawMessage, logger *zerolog.Logger) ChatMessage {
	var raw rawMessage
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil && logger != nil {
			logger.Debug().Err(err).Msg("normalize: partial message payload")
		}
	}

	msg := ChatMessage{
		ID:          int64(raw.ID),
		ChannelID:   int64(raw.ChannelID),
		SenderID:    int64(raw.SenderID),
		ReceiverID:  int64(raw.ReceiverID),
		Content:     raw.Content,
		MessageType: raw.MessageType,
		Timestamp:   raw.Timestamp,
		Username:    raw.Username,
		DisplayName: raw.DisplayName,
		Avatar:      raw.Avatar,
	}
	if msg.MessageType == "" {
		msg.MessageType = DefaultMessageType
	}
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if msg.DisplayName == "" {
		msg.DisplayName = msg.Username
	}
	return msg
}
