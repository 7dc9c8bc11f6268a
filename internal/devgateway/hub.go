package devgateway

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/proto"
)

// session is one connected socket as seen by the hub.
type session struct {
	id       string
	userID   int64
	username string
	events   chan proto.Packet
	rooms    map[string]struct{}
}

func newSession(userID int64, username string) *session {
	return &session{
		id:       uuid.NewString(),
		userID:   userID,
		username: username,
		events:   make(chan proto.Packet, 32),
		rooms:    make(map[string]struct{}),
	}
}

// send queues a packet for the session, dropping if the consumer is slow.
func (s *session) send(pkt proto.Packet) {
	select {
	case s.events <- pkt:
	default:
	}
}

// hub tracks sessions and their room membership. Room membership lives only
// as long as the socket: a dropped socket loses all rooms, which is exactly
// why the client re-joins after reconnecting.
type hub struct {
	mu       sync.Mutex
	sessions map[*session]struct{}
	byUser   map[int64]map[*session]struct{}
	rooms    map[string]map[*session]struct{}
}

func newHub() *hub {
	return &hub{
		sessions: make(map[*session]struct{}),
		byUser:   make(map[int64]map[*session]struct{}),
		rooms:    make(map[string]map[*session]struct{}),
	}
}

func channelRoom(channelID int64) string {
	return fmt.Sprintf("channel:%d", channelID)
}

// dmRoom names the room for a DM pair; the key is order-independent.
func dmRoom(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("dm:%d:%d", a, b)
}

const friendStatusRoom = "friends"

func (h *hub) register(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s] = struct{}{}
	if h.byUser[s.userID] == nil {
		h.byUser[s.userID] = make(map[*session]struct{})
	}
	h.byUser[s.userID][s] = struct{}{}
}

func (h *hub) unregister(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range s.rooms {
		h.leaveLocked(s, room)
	}
	delete(h.sessions, s)
	if peers := h.byUser[s.userID]; peers != nil {
		delete(peers, s)
		if len(peers) == 0 {
			delete(h.byUser, s.userID)
		}
	}
}

func (h *hub) join(s *session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*session]struct{})
	}
	h.rooms[room][s] = struct{}{}
	s.rooms[room] = struct{}{}
}

func (h *hub) leave(s *session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(s, room)
}

func (h *hub) leaveLocked(s *session, room string) {
	if members := h.rooms[room]; members != nil {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(s.rooms, room)
}

// broadcastRoom fans a packet out to room members. except may be nil.
func (h *hub) broadcastRoom(room string, pkt proto.Packet, except *session) {
	h.mu.Lock()
	members := make([]*session, 0, len(h.rooms[room]))
	for member := range h.rooms[room] {
		if member != except {
			members = append(members, member)
		}
	}
	h.mu.Unlock()

	for _, member := range members {
		member.send(pkt)
	}
}

// broadcastAll fans a packet out to every connected session.
func (h *hub) broadcastAll(pkt proto.Packet, except *session) {
	h.mu.Lock()
	members := make([]*session, 0, len(h.sessions))
	for member := range h.sessions {
		if member != except {
			members = append(members, member)
		}
	}
	h.mu.Unlock()

	for _, member := range members {
		member.send(pkt)
	}
}

// sendToUser delivers a packet to every session of one user.
func (h *hub) sendToUser(userID int64, pkt proto.Packet) {
	h.mu.Lock()
	members := make([]*session, 0, len(h.byUser[userID]))
	for member := range h.byUser[userID] {
		members = append(members, member)
	}
	h.mu.Unlock()

	for _, member := range members {
		member.send(pkt)
	}
}
