package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ConversationType distinguishes one-to-one chats from group chats.
type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
)

// Conversation represents a chat between two or more users.
// Direct conversations have exactly 2 participants and a unique pair key.
type Conversation struct {
	ID   string           `json:"id" gorm:"primaryKey"`
	Type ConversationType `json:"type" gorm:"not null;default:'direct'"`

	// PairKey is "<minUserID>:<maxUserID>" for direct conversations, so
	// find-or-create is commutative and the unique index prevents two
	// concurrent first messages from creating duplicate conversations.
	// Nil for group conversations.
	PairKey *string `json:"-" gorm:"uniqueIndex"`

	// Group-only fields
	Name string `json:"name,omitempty"`

	LastMessageID *string   `json:"lastMessageId" gorm:"column:last_message_id"`
	LastActivity  time.Time `json:"lastActivity" gorm:"column:last_activity;index"`

	Participants []ConversationParticipant `json:"participants" gorm:"foreignKey:ConversationID"`
	gorm.Model
}

// TableName specifies the table name for Conversation Model
func (Conversation) TableName() string {
	return "conversations"
}

// IsParticipant reports whether userID is a member of the conversation.
func (c *Conversation) IsParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the member user IDs.
func (c *Conversation) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// ConversationParticipant links a user to a conversation.
type ConversationParticipant struct {
	ConversationID string    `json:"-" gorm:"primaryKey"`
	UserID         string    `json:"userId" gorm:"primaryKey;index"`
	JoinedAt       time.Time `json:"joinedAt"`
}

// TableName specifies the table name for ConversationParticipant Model
func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

// DirectPairKey builds the order-independent key for a direct conversation.
func DirectPairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
