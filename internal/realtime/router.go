package realtime

import (
	"log/slog"

	"devconnect-api/internal/apperr"
	"devconnect-api/internal/chat"
	"devconnect-api/internal/models"

	"github.com/goccy/go-json"
)

// inboundEnvelope is the wire framing for inbound events.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type handlerFunc func(s *Session, data json.RawMessage)

// Router dispatches inbound events by name to per-event handlers. The ws
// handler calls Dispatch from a single reader goroutine per connection, so
// one session's events run in arrival order while independent sessions run
// concurrently. Handlers respond to bad payloads with error events; a panic
// in a handler is contained and never tears down the connection.
type Router struct {
	hub      *Hub
	handlers map[string]handlerFunc
}

func newRouter(h *Hub) *Router {
	r := &Router{hub: h}
	r.handlers = map[string]handlerFunc{
		EvtJoinConversation:  r.handleJoinConversation,
		EvtLeaveConversation: r.handleLeaveConversation,
		EvtSendMessage:       r.handleSendMessage,
		EvtMarkMessagesRead:  r.handleMarkMessagesRead,
		EvtTyping:            r.handleTyping,
		EvtStopTyping:        r.handleStopTyping,
		EvtUpdateStatus:      r.handleUpdateStatus,
	}
	return r
}

// Dispatch routes one raw inbound frame to its handler.
func (r *Router) Dispatch(s *Session, raw []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.Emit(EvtError, errorPayload{Message: "Malformed event"})
		return
	}

	handler, ok := r.handlers[env.Event]
	if !ok {
		s.Emit(EvtError, errorPayload{Message: "Unknown event: " + env.Event})
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("event handler panic", "event", env.Event, "user", s.UserID, "panic", rec)
			s.Emit(EvtError, errorPayload{Message: "Internal error"})
		}
	}()
	handler(s, env.Data)
}

func (r *Router) handleJoinConversation(s *Session, data json.RawMessage) {
	var p conversationRef
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		s.Emit(EvtError, errorPayload{Message: "conversationId is required"})
		return
	}

	room := ConversationRoom(p.ConversationID)
	r.hub.Rooms.Join(room, s)

	// Joining the room is the catch-up point: pending messages addressed to
	// this user are upgraded to delivered now, even if they were sent while
	// the user was offline.
	if _, err := r.hub.chat.MarkDelivered(p.ConversationID, s.UserID); err != nil {
		slog.Warn("failed to mark messages delivered on join",
			"conversation", p.ConversationID, "user", s.UserID, "error", err)
		return
	}
	r.hub.Rooms.Broadcast(room, s, EvtMessagesDelivered, messagesDeliveredPayload{
		ConversationID: p.ConversationID,
		UserID:         s.UserID,
	})
}

func (r *Router) handleLeaveConversation(s *Session, data json.RawMessage) {
	var p conversationRef
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		s.Emit(EvtError, errorPayload{Message: "conversationId is required"})
		return
	}
	r.hub.Rooms.Leave(ConversationRoom(p.ConversationID), s)
}

func (r *Router) handleSendMessage(s *Session, data json.RawMessage) {
	var p sendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.Emit(EvtMessageError, messageErrorPayload{Success: false, Message: "Malformed payload"})
		return
	}

	msg, conv, err := r.hub.chat.SendMessage(chat.SendMessageInput{
		SenderID:       s.UserID,
		RecipientID:    p.RecipientID,
		ConversationID: p.ConversationID,
		Content:        p.Content,
		Type:           models.MessageType(p.Type),
	})
	if err != nil {
		s.Emit(EvtMessageError, messageErrorPayload{
			TempID:  p.TempID,
			Success: false,
			Message: apperr.MessageOf(err),
		})
		return
	}

	senderName := s.Name
	senderAvatar := ""
	if profile, perr := r.hub.chat.UserProfile(s.UserID); perr == nil {
		senderName = profile.FullName
		senderAvatar = profile.Avatar
	}

	payload := newMessagePayload{
		ID:             msg.ID,
		SenderID:       msg.SenderID,
		SenderName:     senderName,
		SenderAvatar:   senderAvatar,
		ConversationID: conv.ID,
		Content:        msg.Content,
		Type:           msg.Type,
		Timestamp:      msg.CreatedAt.Format("15:04"),
		Status:         string(msg.Status),
	}

	r.hub.Rooms.Broadcast(ConversationRoom(conv.ID), s, EvtNewMessage, payload)

	// If any recipient has a live connection, nudge their personal room and
	// upgrade the message to delivered. Otherwise it stays "sent" until the
	// recipient joins the conversation room.
	delivered := false
	for _, userID := range conv.ParticipantIDs() {
		if userID == s.UserID {
			continue
		}
		if r.hub.PushToUser(userID, EvtMessageNotification, messageNotificationPayload{
			ConversationID: conv.ID,
			SenderName:     senderName,
			Content:        msg.Content,
			Timestamp:      msg.CreatedAt,
		}) {
			delivered = true
		}
	}
	if delivered {
		if err := r.hub.chat.MarkMessageDelivered(msg.ID); err != nil {
			slog.Warn("failed to upgrade message status", "message", msg.ID, "error", err)
		} else {
			payload.Status = string(models.MessageDelivered)
		}
	}

	s.Emit(EvtMessageSent, messageSentPayload{
		newMessagePayload: payload,
		TempID:            p.TempID,
		Success:           true,
	})
}

func (r *Router) handleMarkMessagesRead(s *Session, data json.RawMessage) {
	var p markMessagesReadPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		s.Emit(EvtError, errorPayload{Message: "conversationId is required"})
		return
	}

	if _, err := r.hub.chat.MarkRead(p.ConversationID, s.UserID, p.MessageIDs); err != nil {
		slog.Warn("failed to mark messages read",
			"conversation", p.ConversationID, "user", s.UserID, "error", err)
		return
	}
	r.hub.Rooms.Broadcast(ConversationRoom(p.ConversationID), s, EvtMessagesRead, messagesReadPayload{
		ConversationID: p.ConversationID,
		MessageIDs:     p.MessageIDs,
		ReadBy:         s.UserID,
	})
}

func (r *Router) handleTyping(s *Session, data json.RawMessage) {
	var p conversationRef
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		return
	}
	r.hub.Rooms.Broadcast(ConversationRoom(p.ConversationID), s, EvtUserTyping, userTypingPayload{
		UserID:         s.UserID,
		UserName:       s.Name,
		ConversationID: p.ConversationID,
	})
}

func (r *Router) handleStopTyping(s *Session, data json.RawMessage) {
	var p conversationRef
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		return
	}
	r.hub.Rooms.Broadcast(ConversationRoom(p.ConversationID), s, EvtUserStoppedTyping, userTypingPayload{
		UserID:         s.UserID,
		ConversationID: p.ConversationID,
	})
}

func (r *Router) handleUpdateStatus(s *Session, data json.RawMessage) {
	var p updateStatusPayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.Emit(EvtError, errorPayload{Message: "Malformed payload"})
		return
	}
	status := models.UserStatus(p.Status)
	if !models.ValidUserStatus(status) {
		s.Emit(EvtError, errorPayload{Message: "Invalid status value"})
		return
	}

	if err := r.hub.persistStatus(s.UserID, status); err != nil {
		s.Emit(EvtError, errorPayload{Message: "Failed to update status"})
		return
	}

	// Broadcast to every other connected session.
	payload := userStatusUpdatePayload{UserID: s.UserID, Status: p.Status}
	for _, other := range r.hub.Registry.Sessions() {
		if other == s {
			continue
		}
		other.Emit(EvtUserStatusUpdate, payload)
	}
}
