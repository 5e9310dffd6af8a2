package handlers

import (
	"log/slog"
	"net/http"

	"devconnect-api/internal/chat"
	"devconnect-api/internal/models"

	"github.com/gin-gonic/gin"
)

// MessageHandler is the request/response surface over the message delivery
// pipeline. It mirrors the socket semantics but performs no live push.
type MessageHandler struct {
	Chat *chat.Service
}

// NewMessageHandler constructs a message handler.
func NewMessageHandler(chatSvc *chat.Service) *MessageHandler {
	return &MessageHandler{Chat: chatSvc}
}

// CreateDirectConversationRequest carries the target of a direct chat.
type CreateDirectConversationRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
}

// CreateDirectConversation handles POST /api/messages/conversations/direct
func (h *MessageHandler) CreateDirectConversation(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateDirectConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Recipient ID is required",
		})
		return
	}

	// Recipient must exist before we create anything.
	if _, err := h.Chat.UserProfile(req.RecipientID); err != nil {
		respondError(c, err)
		return
	}

	conv, err := h.Chat.FindOrCreateDirect(userID, req.RecipientID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"conversation": conv,
	})
}

// ListConversations handles GET /api/messages/conversations
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID := c.GetString("user_id")
	page, limit := pageParams(c, 20)

	conversations, err := h.Chat.ListConversations(userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"conversations": conversations,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": len(conversations),
		},
	})
}

// GetMessages handles GET /api/messages/conversations/:conversationId/messages
// Fetching a page also marks the conversation read for the caller.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	conversationID := c.Param("conversationId")
	page, limit := pageParams(c, 50)

	messages, err := h.Chat.ListMessages(conversationID, userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.Chat.MarkRead(conversationID, userID, nil); err != nil {
		slog.Warn("failed to mark conversation read", "conversation", conversationID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": messages,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": len(messages),
		},
	})
}

// SendMessageRequest is the REST payload for sending a message.
type SendMessageRequest struct {
	Content  string             `json:"content"`
	Type     models.MessageType `json:"type"`
	FileName string             `json:"fileName"`
	FileSize string             `json:"fileSize"`
	FileURL  string             `json:"fileUrl"`
}

// SendMessage handles POST /api/messages/conversations/:conversationId/messages
// Real-time delivery is handled by the socket path; this one only persists.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	conversationID := c.Param("conversationId")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request payload",
		})
		return
	}

	msg, _, err := h.Chat.SendMessage(chat.SendMessageInput{
		SenderID:       userID,
		ConversationID: conversationID,
		Content:        req.Content,
		Type:           req.Type,
		FileName:       req.FileName,
		FileSize:       req.FileSize,
		FileURL:        req.FileURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msg,
	})
}

// MarkReadRequest optionally narrows mark-as-read to specific messages.
type MarkReadRequest struct {
	MessageIDs []string `json:"messageIds"`
}

// MarkRead handles PATCH /api/messages/conversations/:conversationId/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")
	conversationID := c.Param("conversationId")

	var req MarkReadRequest
	// Body is optional; an empty body means "all unread".
	_ = c.ShouldBindJSON(&req)

	conv, err := h.Chat.GetConversation(conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !conv.IsParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Access denied to this conversation",
		})
		return
	}

	modified, err := h.Chat.MarkRead(conversationID, userID, req.MessageIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"modifiedCount": modified,
	})
}

// EditMessageRequest carries the replacement content.
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// EditMessage handles PATCH /api/messages/:messageId
func (h *MessageHandler) EditMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Message content is required",
		})
		return
	}

	msg, err := h.Chat.EditMessage(c.Param("messageId"), userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msg,
	})
}

// DeleteMessage handles DELETE /api/messages/:messageId
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.Chat.DeleteMessage(c.Param("messageId"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Message deleted successfully",
	})
}

// SearchMessages handles GET /api/messages/search
func (h *MessageHandler) SearchMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	query := c.Query("query")
	conversationID := c.Query("conversationId")
	page, limit := pageParams(c, 20)

	messages, err := h.Chat.SearchMessages(userID, query, conversationID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": messages,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"query": query,
		},
	})
}

// UnreadCount handles GET /api/messages/unread-count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID := c.GetString("user_id")

	count, err := h.Chat.UnreadMessageCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"totalUnread": count,
	})
}
