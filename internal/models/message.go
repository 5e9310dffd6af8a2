package models

import (
	"time"

	"gorm.io/gorm"
)

// MessageType represents the content type of a message
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
	MessageCode  MessageType = "code"
	MessageLink  MessageType = "link"
)

// ValidMessageType reports whether t is an allowed message type.
func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageCode, MessageLink:
		return true
	}
	return false
}

// MessageStatus tracks delivery progress. Transitions are monotonic:
// sent -> delivered -> read, never backwards.
type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

// Message represents a chat message in a conversation.
// Soft deletion goes through gorm.Model's DeletedAt, so deleted messages
// drop out of every default query.
type Message struct {
	ID             string        `json:"id" gorm:"primaryKey"`
	ConversationID string        `json:"conversationId" gorm:"column:conversation_id;index;not null"`
	SenderID       string        `json:"senderId" gorm:"column:sender_id;index;not null"`
	Content        string        `json:"content"`
	Type           MessageType   `json:"type" gorm:"default:'text'"`
	Status         MessageStatus `json:"status" gorm:"index;default:'sent'"`

	// File messages
	FileName string `json:"fileName,omitempty"`
	FileSize string `json:"fileSize,omitempty"`
	FileURL  string `json:"fileUrl,omitempty" gorm:"column:file_url"`

	// Edited messages
	IsEdited bool       `json:"isEdited" gorm:"column:is_edited;default:false"`
	EditedAt *time.Time `json:"editedAt,omitempty" gorm:"column:edited_at"`

	gorm.Model
}

// TableName specifies the table name for Message Model
func (Message) TableName() string {
	return "messages"
}
