package models

import (
	"database/sql/driver"
	"errors"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// NotificationType enumerates the events that produce a notification.
type NotificationType string

const (
	NotifyFollow                NotificationType = "follow"
	NotifyProjectInvite         NotificationType = "project_invite"
	NotifyMessage               NotificationType = "message"
	NotifyProjectUpdate         NotificationType = "project_update"
	NotifyCollaborationRequest  NotificationType = "collaboration_request"
	NotifyCollaborationAccepted NotificationType = "collaboration_accepted"
	NotifyCollaborationRejected NotificationType = "collaboration_rejected"
)

// JSONMap stores a free-form payload as a JSON text column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Notification represents a persisted notification for a user.
// Rows expire after 30 days via the retention sweeper.
type Notification struct {
	ID          string           `json:"id" gorm:"primaryKey"`
	RecipientID string           `json:"recipient" gorm:"column:recipient_id;index;not null"`
	SenderID    string           `json:"sender" gorm:"column:sender_id;not null"`
	Type        NotificationType `json:"type" gorm:"not null"`
	Message     string           `json:"message" gorm:"not null"`
	IsRead      bool             `json:"isRead" gorm:"column:is_read;index;default:false"`
	RelatedData JSONMap          `json:"relatedData" gorm:"column:related_data;type:text"`
	gorm.Model
}

// TableName specifies the table name for Notification Model
func (Notification) TableName() string {
	return "notifications"
}
