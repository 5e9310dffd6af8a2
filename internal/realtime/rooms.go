package realtime

import (
	"sync"
)

// PersonalRoom is the room every session joins automatically for its own
// identity; notifications are delivered here.
func PersonalRoom(userID string) string {
	return "user_" + userID
}

// ConversationRoom is the room scoped to one conversation's participants.
func ConversationRoom(conversationID string) string {
	return "conversation_" + conversationID
}

// RoomSet maintains the room -> sessions reverse index. Membership is purely
// in-memory and session-scoped; clients re-join conversation rooms after a
// reconnect.
type RoomSet struct {
	mu    sync.RWMutex
	rooms map[string]map[*Session]struct{}
}

// NewRoomSet returns an empty room index.
func NewRoomSet() *RoomSet {
	return &RoomSet{
		rooms: make(map[string]map[*Session]struct{}),
	}
}

// Join adds the session to the room. Idempotent.
func (r *RoomSet) Join(room string, s *Session) {
	r.mu.Lock()
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[*Session]struct{})
	}
	r.rooms[room][s] = struct{}{}
	r.mu.Unlock()
	s.trackJoin(room)
}

// Leave removes the session from the room. A room the session never joined
// is a no-op.
func (r *RoomSet) Leave(room string, s *Session) {
	r.mu.Lock()
	if members, ok := r.rooms[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	r.mu.Unlock()
	s.trackLeave(room)
}

// LeaveAll removes the session from every room it joined. Called on
// disconnect.
func (r *RoomSet) LeaveAll(s *Session) {
	for _, room := range s.Rooms() {
		r.Leave(room, s)
	}
}

// Members returns a snapshot of the sessions currently in the room.
func (r *RoomSet) Members(room string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]*Session, 0, len(r.rooms[room]))
	for s := range r.rooms[room] {
		members = append(members, s)
	}
	return members
}

// Broadcast delivers the event to every session in the room except the
// originating one. Returns how many sessions accepted the write; sessions
// with dead sockets are simply skipped, their reader loops handle cleanup.
func (r *RoomSet) Broadcast(room string, except *Session, event string, data any) int {
	payload, ok := encodeEvent(event, data)
	if !ok {
		return 0
	}

	sent := 0
	for _, s := range r.Members(room) {
		if s == except {
			continue
		}
		if s.conn.Send(payload) {
			sent++
		}
	}
	return sent
}
