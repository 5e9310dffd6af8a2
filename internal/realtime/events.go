package realtime

import (
	"time"

	"devconnect-api/internal/models"
)

// Inbound event names.
const (
	EvtJoinConversation  = "joinConversation"
	EvtLeaveConversation = "leaveConversation"
	EvtSendMessage       = "sendMessage"
	EvtMarkMessagesRead  = "markMessagesRead"
	EvtTyping            = "typing"
	EvtStopTyping        = "stopTyping"
	EvtUpdateStatus      = "updateStatus"
)

// Outbound event names.
const (
	EvtNewMessage          = "newMessage"
	EvtMessageSent         = "messageSent"
	EvtMessageNotification = "messageNotification"
	EvtNewNotification     = "newNotification"
	EvtMessagesRead        = "messagesRead"
	EvtMessagesDelivered   = "messagesDelivered"
	EvtUserTyping          = "userTyping"
	EvtUserStoppedTyping   = "userStoppedTyping"
	EvtUserStatusUpdate    = "userStatusUpdate"
	EvtMessageError        = "messageError"
	EvtError               = "error"
)

// conversationRef is the payload for events that only name a conversation.
type conversationRef struct {
	ConversationID string `json:"conversationId"`
}

type sendMessagePayload struct {
	RecipientID    string `json:"recipientId"`
	Content        string `json:"content"`
	Type           string `json:"type"`
	ConversationID string `json:"conversationId"`
	TempID         string `json:"tempId"`
}

type markMessagesReadPayload struct {
	ConversationID string   `json:"conversationId"`
	MessageIDs     []string `json:"messageIds"`
}

type updateStatusPayload struct {
	Status string `json:"status"`
}

// newMessagePayload is broadcast to the conversation room and echoed back
// to the sender inside messageSent.
type newMessagePayload struct {
	ID             string             `json:"id"`
	SenderID       string             `json:"senderId"`
	SenderName     string             `json:"senderName"`
	SenderAvatar   string             `json:"senderAvatar,omitempty"`
	ConversationID string             `json:"conversationId"`
	Content        string             `json:"content"`
	Type           models.MessageType `json:"type"`
	Timestamp      string             `json:"timestamp"`
	Status         string             `json:"status"`
}

type messageSentPayload struct {
	newMessagePayload
	TempID  string `json:"tempId"`
	Success bool   `json:"success"`
}

type messageNotificationPayload struct {
	ConversationID string    `json:"conversationId"`
	SenderName     string    `json:"senderName"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

type messagesDeliveredPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

type messagesReadPayload struct {
	ConversationID string   `json:"conversationId"`
	MessageIDs     []string `json:"messageIds"`
	ReadBy         string   `json:"readBy"`
}

type userTypingPayload struct {
	UserID         string `json:"userId"`
	UserName       string `json:"userName,omitempty"`
	ConversationID string `json:"conversationId"`
}

type userStatusUpdatePayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type messageErrorPayload struct {
	TempID  string `json:"tempId,omitempty"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorPayload struct {
	Message string `json:"message"`
}
