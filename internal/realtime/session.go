package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Conn is the transport side of a session. The actual network connection is
// managed by the ws handler; Send reports whether the write succeeded so
// callers can treat a dead socket as "recipient offline".
type Conn interface {
	Send(message []byte) bool
	Close()
}

// Session is one authenticated live connection: a user identity, its
// transport and the set of rooms it has joined. Sessions are ephemeral and
// rebuilt from scratch on reconnect.
type Session struct {
	UserID    string
	Name      string
	CreatedAt time.Time

	conn Conn

	mu    sync.Mutex
	rooms map[string]struct{}
}

// NewSession wraps a transport connection for an authenticated user.
func NewSession(userID, name string, conn Conn) *Session {
	return &Session{
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
		conn:      conn,
		rooms:     make(map[string]struct{}),
	}
}

// envelope is the wire framing for every outbound event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encodeEvent(event string, data any) ([]byte, bool) {
	payload, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		slog.Error("failed to encode event", "event", event, "error", err)
		return nil, false
	}
	return payload, true
}

// Emit sends one event to this session. Best-effort: a false return means
// the socket is dead and the reader loop will tear the session down.
func (s *Session) Emit(event string, data any) bool {
	payload, ok := encodeEvent(event, data)
	if !ok {
		return false
	}
	return s.conn.Send(payload)
}

// Close closes the underlying transport.
func (s *Session) Close() {
	s.conn.Close()
}

func (s *Session) trackJoin(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room] = struct{}{}
}

func (s *Session) trackLeave(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, room)
}

// Rooms returns a snapshot of the rooms this session has joined.
func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.rooms))
	for room := range s.rooms {
		out = append(out, room)
	}
	return out
}

// InRoom reports whether the session has joined the room.
func (s *Session) InRoom(room string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[room]
	return ok
}
