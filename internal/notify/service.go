package notify

import (
	"errors"
	"log/slog"
	"time"

	"devconnect-api/internal/apperr"
	"devconnect-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notificationTTL is how long notification rows are kept before the
// retention sweep removes them.
const notificationTTL = 30 * 24 * time.Hour

// LivePusher is the realtime port used for best-effort delivery. It reports
// whether the payload reached a live connection; failure is never an error.
type LivePusher interface {
	PushToUser(userID, event string, data any) bool
}

// Result tells callers what happened to a notification: it is always
// persisted before any live delivery is attempted, and a failed live push
// never rolls it back.
type Result struct {
	Persisted    bool `json:"persisted"`
	LiveDelivery bool `json:"liveDelivery"`
}

// Service persists notifications and attempts immediate live delivery to
// the recipient's personal room.
type Service struct {
	db   *gorm.DB
	live LivePusher
}

// NewService creates a notification service. live may be nil (no realtime
// layer, e.g. in tests); every push then counts as "recipient offline".
func NewService(db *gorm.DB, live LivePusher) *Service {
	return &Service{db: db, live: live}
}

// newNotificationEvent mirrors the socket payload: the stored notification
// plus the recipient's fresh unread count.
type newNotificationEvent struct {
	Notification *models.Notification    `json:"notification"`
	UnreadCount  int64                   `json:"unreadCount"`
	Type         models.NotificationType `json:"type"`
}

// Notify persists a notification, computes the recipient's unread count and
// pushes a "newNotification" event if the recipient is online.
func (s *Service) Notify(recipientID, senderID string, typ models.NotificationType, message string, related models.JSONMap) (Result, *models.Notification, error) {
	if recipientID == "" || senderID == "" || message == "" {
		return Result{}, nil, apperr.New(apperr.Validation, "Recipient, sender and message are required")
	}
	if related == nil {
		related = models.JSONMap{}
	}

	notification := models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        typ,
		Message:     message,
		IsRead:      false,
		RelatedData: related,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return Result{}, nil, apperr.Wrap(apperr.Internal, "Failed to create notification", err)
	}

	unread, err := s.UnreadCount(recipientID)
	if err != nil {
		// The notification is committed; fall back to a zero count rather
		// than failing the caller.
		slog.Warn("unread count lookup failed after notify", "recipient", recipientID, "error", err)
		unread = 0
	}

	delivered := false
	if s.live != nil {
		delivered = s.live.PushToUser(recipientID, "newNotification", newNotificationEvent{
			Notification: &notification,
			UnreadCount:  unread,
			Type:         typ,
		})
		if !delivered {
			// Swallowed: the notification is committed and the failed push
			// only shapes the LiveDelivery flag.
			slog.Debug("notification stored for later delivery",
				"recipient", recipientID, "type", typ,
				"error", apperr.New(apperr.Delivery, "recipient has no live connection"))
		}
	}

	return Result{Persisted: true, LiveDelivery: delivered}, &notification, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *Service) UnreadCount(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "Failed to get unread count", err)
	}
	return count, nil
}

// List returns a page of the user's notifications, newest first, along with
// the total and unread counts.
func (s *Service) List(userID string, page, limit int) ([]models.Notification, int64, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var notifications []models.Notification
	err := s.db.Where("recipient_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, 0, apperr.Wrap(apperr.Internal, "Failed to get notifications", err)
	}

	var total int64
	if err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, 0, apperr.Wrap(apperr.Internal, "Failed to count notifications", err)
	}

	unread, err := s.UnreadCount(userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return notifications, total, unread, nil
}

// MarkRead flips one notification to read and returns it with the updated
// unread count. Only the recipient may mark their notification.
func (s *Service) MarkRead(notificationID, userID string) (*models.Notification, int64, error) {
	var notification models.Notification
	err := s.db.Where("id = ? AND recipient_id = ?", notificationID, userID).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperr.New(apperr.NotFound, "Notification not found")
		}
		return nil, 0, apperr.Wrap(apperr.Internal, "Failed to fetch notification", err)
	}

	if !notification.IsRead {
		notification.IsRead = true
		if err := s.db.Model(&notification).Update("is_read", true).Error; err != nil {
			return nil, 0, apperr.Wrap(apperr.Internal, "Failed to mark notification as read", err)
		}
	}

	unread, err := s.UnreadCount(userID)
	if err != nil {
		return nil, 0, err
	}
	return &notification, unread, nil
}

// MarkAllRead flips every unread notification for the user.
func (s *Service) MarkAllRead(userID string) error {
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to mark all notifications as read", err)
	}
	return nil
}

// Delete removes one notification owned by the user.
func (s *Service) Delete(notificationID, userID string) error {
	res := s.db.Where("id = ? AND recipient_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return apperr.Wrap(apperr.Internal, "Failed to delete notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Notification not found")
	}
	return nil
}

// CleanupExpired removes notifications older than the 30-day retention
// window. Called periodically from the server's retention loop.
func (s *Service) CleanupExpired() (int64, error) {
	cutoff := time.Now().Add(-notificationTTL)
	res := s.db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, apperr.Wrap(apperr.Internal, "Failed to clean up notifications", res.Error)
	}
	return res.RowsAffected, nil
}
