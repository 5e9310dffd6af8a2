package handlers

import (
	"net/http"

	"devconnect-api/internal/notify"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the notification query/mutation endpoints.
type NotificationHandler struct {
	Notifier *notify.Service
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(notifier *notify.Service) *NotificationHandler {
	return &NotificationHandler{Notifier: notifier}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	page, limit := pageParams(c, 20)

	notifications, total, unread, err := h.Notifier.List(userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"notifications": notifications,
			"pagination": gin.H{
				"currentPage":        page,
				"totalPages":         totalPages,
				"totalNotifications": total,
				"hasMore":            int64(page*limit) < total,
			},
			"unreadCount": unread,
		},
	})
}

// MarkRead handles PATCH /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")

	notification, unread, err := h.Notifier.MarkRead(c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification marked as read",
		"data": gin.H{
			"notification": notification,
			"unreadCount":  unread,
		},
	})
}

// MarkAllRead handles PATCH /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.Notifier.MarkAllRead(userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked as read",
		"data":    gin.H{"unreadCount": 0},
	})
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := c.GetString("user_id")

	unread, err := h.Notifier.UnreadCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"unreadCount": unread},
	})
}

// Delete handles DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.Notifier.Delete(c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification deleted successfully",
	})
}
