package realtime

import (
	"log/slog"
	"time"

	"devconnect-api/internal/chat"
	"devconnect-api/internal/models"

	"gorm.io/gorm"
)

// Hub owns the realtime subsystem: the presence registry, the room index
// and the event router. One hub is created at process start and torn down
// with it; nothing else reaches into the registry directly.
type Hub struct {
	Registry *Registry
	Rooms    *RoomSet
	Router   *Router

	chat *chat.Service
	db   *gorm.DB
}

// NewHub wires the realtime subsystem. db is used for best-effort presence
// status writes and may be nil in tests that don't care about them.
func NewHub(db *gorm.DB, chatSvc *chat.Service) *Hub {
	h := &Hub{
		Registry: NewRegistry(),
		Rooms:    NewRoomSet(),
		chat:     chatSvc,
		db:       db,
	}
	h.Router = newRouter(h)
	return h
}

// Connect runs the session setup that follows a successful authenticated
// handshake: register presence (superseding any previous connection for the
// same user), join the personal notification room and record the user as
// active. The status write is best-effort and never blocks the connection.
func (h *Hub) Connect(userID, name string, conn Conn) *Session {
	s := NewSession(userID, name, conn)

	if previous := h.Registry.Register(userID, s); previous != nil {
		// The old connection is superseded, not closed; its reader loop
		// will notice the dead socket eventually and tear itself down.
		h.Rooms.LeaveAll(previous)
		slog.Info("session superseded by reconnect", "user", userID)
	}
	h.Rooms.Join(PersonalRoom(userID), s)

	if err := h.persistStatus(userID, models.StatusActive); err != nil {
		slog.Warn("failed to update user presence on connect", "user", userID, "error", err)
	}

	slog.Info("user connected", "user", userID, "name", name)
	return s
}

// Disconnect tears a session down: leave all rooms, drop the registry entry
// (only if this session still owns it) and record the user as inactive.
// Everything here is fire-and-forget; failures are logged, never raised.
func (h *Hub) Disconnect(s *Session) {
	h.Rooms.LeaveAll(s)

	if h.Registry.UnregisterSession(s.UserID, s) {
		if err := h.persistStatus(s.UserID, models.StatusInactive); err != nil {
			slog.Warn("failed to update user presence on disconnect", "user", s.UserID, "error", err)
		}
	}

	slog.Info("user disconnected", "user", s.UserID)
}

// persistStatus records the user's status and last-active time.
func (h *Hub) persistStatus(userID string, status models.UserStatus) error {
	if h.db == nil {
		return nil
	}
	return h.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"status":      status,
			"last_active": time.Now(),
		}).Error
}

// PushToUser delivers an event to the user's personal room if they have a
// live connection. Implements the notify.LivePusher port. Best-effort: a
// stale registry entry with a dead socket counts as offline.
func (h *Hub) PushToUser(userID, event string, data any) bool {
	if !h.Registry.Online(userID) {
		return false
	}
	return h.Rooms.Broadcast(PersonalRoom(userID), nil, event, data) > 0
}
