package devgateway

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/auth"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"
)

var errUnknownUser = errors.New("devgateway: unknown user")

func mustPacket(event string, payload any) proto.Packet {
	pkt, err := proto.NewPacket(event, payload)
	if err != nil {
		return proto.Packet{Event: event}
	}
	return pkt
}

// handleSocket authenticates the handshake token, upgrades the connection
// and bridges it to the hub. The token rides in the query as
// "Bearer <jwt>"; an invalid token is rejected before any event flows.
func (s *Server) handleSocket(c *gin.Context) {
	claims, err := auth.Verify(s.jwt, auth.StripBearer(c.Query("token")))
	if err != nil {
		s.log.Warn().Err(err).Msg("socket handshake rejected")
		c.JSON(401, gin.H{"error": gin.H{"code": "unauthorized", "msg": "invalid handshake token"}})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("socket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sess := newSession(claims.UserID, claims.Username)
	s.hub.register(sess)
	defer s.hub.unregister(sess)

	s.log.Info().Str("session", sess.id).Str("user", sess.username).Msg("socket connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- s.readLoop(ctx, conn, sess)
	}()
	go func() {
		errCh <- s.writeLoop(ctx, conn, sess)
	}()

	<-errCh
	cancel()
	<-errCh

	s.log.Info().Str("session", sess.id).Msg("socket closed")
	conn.Close(websocket.StatusNormalClosure, "closing")
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess *session) error {
	for {
		var pkt proto.Packet
		if err := wsjson.Read(ctx, conn, &pkt); err != nil {
			return err
		}
		s.handleEvent(sess, pkt)
	}
}

func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, sess *session) error {
	for {
		select {
		case pkt := <-sess.events:
			if err := wsjson.Write(ctx, conn, pkt); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handleEvent implements the gateway's room semantics for one inbound
// socket event.
func (s *Server) handleEvent(sess *session, pkt proto.Packet) {
	logger := s.log.With().Str("session", sess.id).Str("event", pkt.Event).Logger()
	logger.Debug().Msg("socket event")

	switch pkt.Event {
	case proto.EmitJoinChannel:
		data := decodePayload[proto.JoinChannelData](pkt)
		s.hub.join(sess, channelRoom(data.ChannelID))
		sess.send(mustPacket(proto.EventStatus, gin.H{"msg": "joined channel", "channel_id": data.ChannelID}))

	case proto.EmitLeaveChannel:
		data := decodePayload[proto.JoinChannelData](pkt)
		s.hub.leave(sess, channelRoom(data.ChannelID))

	case proto.EmitTyping:
		data := decodePayload[proto.TypingData](pkt)
		s.hub.broadcastRoom(channelRoom(data.ChannelID), mustPacket(proto.EventUserTyping, gin.H{
			"channel_id": data.ChannelID,
			"user_id":    sess.userID,
			"username":   sess.username,
			"is_typing":  data.IsTyping,
		}), sess)

	case proto.EmitNewMessage:
		data := decodePayload[proto.NewMessageData](pkt)
		// The production gateway relays ids as JSON strings here; keep the
		// quirk so clients exercise their coercion path.
		s.hub.broadcastRoom(channelRoom(data.ChannelID), mustPacket(proto.EventMessageReceived, gin.H{
			"id":         strconv.FormatInt(data.ID, 10),
			"channel_id": data.ChannelID,
			"sender_id":  sess.userID,
			"content":    data.Content,
			"username":   sess.username,
		}), sess)

	case proto.EmitJoinDM:
		data := decodePayload[proto.JoinDMData](pkt)
		s.hub.join(sess, dmRoom(sess.userID, data.UserID))

	case proto.EmitLeaveDM:
		data := decodePayload[proto.JoinDMData](pkt)
		s.hub.leave(sess, dmRoom(sess.userID, data.UserID))

	case proto.EmitTypingDM:
		data := decodePayload[proto.TypingDMData](pkt)
		s.hub.broadcastRoom(dmRoom(sess.userID, data.UserID), mustPacket(proto.EventUserTypingDM, gin.H{
			"user_id":   sess.userID,
			"username":  sess.username,
			"is_typing": data.IsTyping,
		}), sess)

	case proto.EmitSendDirectMessage:
		data := decodePayload[proto.DirectMessageData](pkt)
		s.hub.sendToUser(data.ReceiverID, mustPacket(proto.EventReceiveDirectMessage, gin.H{
			"id":          strconv.FormatInt(data.ID, 10),
			"sender_id":   sess.userID,
			"receiver_id": data.ReceiverID,
			"content":     data.Content,
			"username":    sess.username,
		}))

	case proto.EmitJoinFriendStatus:
		s.hub.join(sess, friendStatusRoom)

	case proto.EmitLeaveFriendStatus:
		s.hub.leave(sess, friendStatusRoom)

	case proto.EmitFriendRequestSent:
		data := decodePayload[proto.FriendRequestData](pkt)
		s.hub.sendToUser(data.ReceiverID, mustPacket(proto.EventFriendRequestRecv, gin.H{
			"request_id": data.RequestID,
			"sender_id":  sess.userID,
			"username":   sess.username,
		}))

	case proto.EmitFriendRequestAccepted:
		data := decodePayload[proto.FriendRequestData](pkt)
		s.hub.sendToUser(data.ReceiverID, mustPacket(proto.EventFriendRequestAccept, gin.H{
			"request_id": data.RequestID,
			"sender_id":  sess.userID,
			"username":   sess.username,
		}))

	case proto.EmitCommunityCreated:
		s.hub.broadcastAll(proto.Packet{Event: proto.EventCommunityCreated, Data: pkt.Data}, sess)
	case proto.EmitChannelCreated:
		s.hub.broadcastAll(proto.Packet{Event: proto.EventChannelCreated, Data: pkt.Data}, sess)
	case proto.EmitChannelUpdated:
		s.hub.broadcastAll(proto.Packet{Event: proto.EventChannelUpdated, Data: pkt.Data}, sess)
	case proto.EmitChannelDeleted:
		s.hub.broadcastAll(proto.Packet{Event: proto.EventChannelDeleted, Data: pkt.Data}, sess)
	case proto.EmitCommunityMemberAdded:
		s.hub.broadcastAll(proto.Packet{Event: proto.EventCommunityMemberAdded, Data: pkt.Data}, sess)

	default:
		sess.send(mustPacket(proto.EventError, proto.Error{
			Code: "invalid_event",
			Msg:  "unknown event " + pkt.Event,
		}))
	}
}

func decodePayload[T any](pkt proto.Packet) T {
	var v T
	if len(pkt.Data) > 0 {
		_ = json.Unmarshal(pkt.Data, &v)
	}
	return v
}
