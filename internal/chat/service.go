package chat

import (
	"errors"
	"strings"
	"time"

	"devconnect-api/internal/apperr"
	"devconnect-api/internal/cache"
	"devconnect-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// profileTTL bounds how long sender display info may be served from cache
// on broadcast paths.
const profileTTL = 5 * time.Minute

// Service implements the message delivery pipeline: conversation
// resolution, message persistence and the sent -> delivered -> read status
// transitions. Live fan-out stays in the realtime layer; this service only
// touches storage.
type Service struct {
	db       *gorm.DB
	profiles *cache.TTLCache[string, models.PublicUser]
}

// NewService creates a chat service on top of the given database.
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:       db,
		profiles: cache.NewTTLCache[string, models.PublicUser](),
	}
}

// UserProfile returns the public projection of a user, cached briefly so
// message broadcasts do not hit the users table on every event.
func (s *Service) UserProfile(userID string) (models.PublicUser, error) {
	if p, ok := s.profiles.Get(userID); ok {
		return p, nil
	}
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PublicUser{}, apperr.New(apperr.NotFound, "User not found")
		}
		return models.PublicUser{}, apperr.Wrap(apperr.Internal, "Failed to fetch user", err)
	}
	p := user.Public()
	s.profiles.Set(userID, p, profileTTL)
	return p, nil
}

// GetConversation loads a conversation with its participants.
func (s *Service) GetConversation(conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.Preload("Participants").Where("id = ?", conversationID).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Conversation not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch conversation", err)
	}
	return &conv, nil
}

// FindOrCreateDirect resolves the direct conversation between two users,
// creating it when absent. The normalized pair key carries a unique index,
// so two concurrent first messages race on the insert and the loser re-reads
// the winner's row: both calls resolve to the same conversation.
func (s *Service) FindOrCreateDirect(userA, userB string) (*models.Conversation, error) {
	if userA == "" || userB == "" {
		return nil, apperr.New(apperr.Validation, "Recipient ID is required")
	}
	if userA == userB {
		return nil, apperr.New(apperr.Validation, "Cannot create conversation with yourself")
	}

	pairKey := models.DirectPairKey(userA, userB)

	var conv models.Conversation
	err := s.db.Preload("Participants").Where("pair_key = ?", pairKey).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch conversation", err)
	}

	now := time.Now()
	created := models.Conversation{
		ID:           uuid.NewString(),
		Type:         models.ConversationDirect,
		PairKey:      &pairKey,
		LastActivity: now,
		Participants: []models.ConversationParticipant{
			{UserID: userA, JoinedAt: now},
			{UserID: userB, JoinedAt: now},
		},
	}
	if err := s.db.Create(&created).Error; err != nil {
		// Lost the insert race; the other sender's row is authoritative.
		var existing models.Conversation
		if err2 := s.db.Preload("Participants").Where("pair_key = ?", pairKey).First(&existing).Error; err2 == nil {
			return &existing, nil
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to create conversation", err)
	}
	return &created, nil
}

// SendMessageInput carries everything needed to send one message. Exactly
// one of RecipientID / ConversationID must resolve the target conversation.
type SendMessageInput struct {
	SenderID       string
	RecipientID    string
	ConversationID string
	Content        string
	Type           models.MessageType
	FileName       string
	FileSize       string
	FileURL        string
}

// SendMessage validates and persists a message with status "sent", then
// advances the conversation's last-message pointer. The pointer update is
// only attempted after the message write commits, so a failed send never
// leaves a dangling pointer.
func (s *Service) SendMessage(in SendMessageInput) (*models.Message, *models.Conversation, error) {
	var (
		conv *models.Conversation
		err  error
	)
	switch {
	case in.ConversationID != "":
		conv, err = s.GetConversation(in.ConversationID)
		if err != nil {
			return nil, nil, err
		}
		if !conv.IsParticipant(in.SenderID) {
			return nil, nil, apperr.New(apperr.Forbidden, "Access denied to this conversation")
		}
	case in.RecipientID != "":
		conv, err = s.FindOrCreateDirect(in.SenderID, in.RecipientID)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, apperr.New(apperr.Validation, "Recipient ID or conversation ID is required")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" && in.FileURL == "" {
		return nil, nil, apperr.New(apperr.Validation, "Message content or file is required")
	}
	msgType := in.Type
	if msgType == "" {
		msgType = models.MessageText
	}
	if !models.ValidMessageType(msgType) {
		return nil, nil, apperr.New(apperr.Validation, "Invalid message type")
	}

	msg := models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		Content:        content,
		Type:           msgType,
		Status:         models.MessageSent,
		FileName:       in.FileName,
		FileSize:       in.FileSize,
		FileURL:        in.FileURL,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "Failed to send message", err)
	}

	if err := s.db.Model(&models.Conversation{}).
		Where("id = ?", conv.ID).
		Updates(map[string]any{
			"last_message_id": msg.ID,
			"last_activity":   time.Now(),
		}).Error; err != nil {
		// Message is committed; the pointer is advisory and recoverable
		// by querying messages directly.
		return nil, nil, apperr.Wrap(apperr.Internal, "Failed to update conversation", err)
	}
	conv.LastMessageID = &msg.ID

	return &msg, conv, nil
}

// MarkDelivered advances every pending "sent" message in the conversation
// that was not authored by userID to "delivered". The status guard keeps the
// transition monotonic.
func (s *Service) MarkDelivered(conversationID, userID string) (int64, error) {
	res := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND status = ?",
			conversationID, userID, models.MessageSent).
		Update("status", models.MessageDelivered)
	if res.Error != nil {
		return 0, apperr.Wrap(apperr.Internal, "Failed to mark messages delivered", res.Error)
	}
	return res.RowsAffected, nil
}

// MarkMessageDelivered upgrades a single message from "sent" to "delivered".
// A message already delivered or read is left untouched.
func (s *Service) MarkMessageDelivered(messageID string) error {
	err := s.db.Model(&models.Message{}).
		Where("id = ? AND status = ?", messageID, models.MessageSent).
		Update("status", models.MessageDelivered).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to mark message delivered", err)
	}
	return nil
}

// MarkRead marks messages in the conversation as read on behalf of readerID.
// With messageIDs it targets that set; without, every unread message. The
// reader's own messages are never touched and "read" never regresses.
func (s *Service) MarkRead(conversationID, readerID string, messageIDs []string) (int64, error) {
	query := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND status <> ?",
			conversationID, readerID, models.MessageRead)
	if len(messageIDs) > 0 {
		query = query.Where("id IN ?", messageIDs)
	}
	res := query.Update("status", models.MessageRead)
	if res.Error != nil {
		return 0, apperr.Wrap(apperr.Internal, "Failed to mark messages as read", res.Error)
	}
	return res.RowsAffected, nil
}

// ListMessages returns a page of the conversation's messages, oldest first.
// Soft-deleted messages never show up. The caller must be a participant.
func (s *Service) ListMessages(conversationID, userID string, page, limit int) ([]models.Message, error) {
	conv, err := s.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(userID) {
		return nil, apperr.New(apperr.Forbidden, "Access denied to this conversation")
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var messages []models.Message
	err = s.db.Where("conversation_id = ?", conversationID).
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&messages).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch messages", err)
	}

	// Reverse to oldest-first for display
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// EditMessage updates a message's content. Only the sender may edit.
func (s *Service) EditMessage(messageID, editorID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.New(apperr.Validation, "Message content is required")
	}

	var msg models.Message
	if err := s.db.Where("id = ?", messageID).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Message not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch message", err)
	}
	if msg.SenderID != editorID {
		return nil, apperr.New(apperr.Forbidden, "You can only edit your own messages")
	}

	now := time.Now()
	msg.Content = content
	msg.IsEdited = true
	msg.EditedAt = &now
	if err := s.db.Save(&msg).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to edit message", err)
	}
	return &msg, nil
}

// DeleteMessage soft-deletes a message. Only the sender may delete.
func (s *Service) DeleteMessage(messageID, userID string) error {
	var msg models.Message
	if err := s.db.Where("id = ?", messageID).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Message not found")
		}
		return apperr.Wrap(apperr.Internal, "Failed to fetch message", err)
	}
	if msg.SenderID != userID {
		return apperr.New(apperr.Forbidden, "You can only delete your own messages")
	}
	if err := s.db.Delete(&msg).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to delete message", err)
	}
	return nil
}

// participantConversations is the subquery of conversation ids the user is in.
func (s *Service) participantConversations(userID string) *gorm.DB {
	return s.db.Model(&models.ConversationParticipant{}).
		Select("conversation_id").
		Where("user_id = ?", userID)
}

// SearchMessages finds messages by substring. Scoped to one conversation
// when conversationID is given, otherwise to all of the user's conversations.
func (s *Service) SearchMessages(userID, query, conversationID string, page, limit int) ([]models.Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.Validation, "Search query is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	q := s.db.Where("content LIKE ?", "%"+query+"%")
	if conversationID != "" {
		conv, err := s.GetConversation(conversationID)
		if err != nil {
			return nil, err
		}
		if !conv.IsParticipant(userID) {
			return nil, apperr.New(apperr.Forbidden, "Access denied to this conversation")
		}
		q = q.Where("conversation_id = ?", conversationID)
	} else {
		q = q.Where("conversation_id IN (?)", s.participantConversations(userID))
	}

	var messages []models.Message
	err := q.Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&messages).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to search messages", err)
	}
	return messages, nil
}

// UnreadMessageCount counts unread messages addressed to the user across all
// of their conversations.
func (s *Service) UnreadMessageCount(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Message{}).
		Where("conversation_id IN (?)", s.participantConversations(userID)).
		Where("sender_id <> ? AND status <> ?", userID, models.MessageRead).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "Failed to get unread count", err)
	}
	return count, nil
}

// ConversationSummary augments a conversation with per-user derived fields.
type ConversationSummary struct {
	models.Conversation
	UnreadCount int64           `json:"unreadCount"`
	LastMessage *models.Message `json:"lastMessage,omitempty"`
}

// ListConversations returns the user's conversations, most recently active
// first, each with its unread count and last message.
func (s *Service) ListConversations(userID string, page, limit int) ([]ConversationSummary, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var convs []models.Conversation
	err := s.db.Preload("Participants").
		Where("id IN (?)", s.participantConversations(userID)).
		Order("last_activity desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&convs).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch conversations", err)
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := ConversationSummary{Conversation: conv}

		var unread int64
		if err := s.db.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND status <> ?",
				conv.ID, userID, models.MessageRead).
			Count(&unread).Error; err == nil {
			summary.UnreadCount = unread
		}

		if conv.LastMessageID != nil {
			var last models.Message
			if err := s.db.Where("id = ?", *conv.LastMessageID).First(&last).Error; err == nil {
				summary.LastMessage = &last
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
