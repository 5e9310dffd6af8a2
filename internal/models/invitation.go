package models

import (
	"time"

	"gorm.io/gorm"
)

// InvitationKind distinguishes owner-initiated invites from user-initiated
// requests to join a project.
type InvitationKind string

const (
	InvitationInvite  InvitationKind = "invite"
	InvitationRequest InvitationKind = "request"
)

// InvitationStatus tracks the lifecycle of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
	InvitationExpired  InvitationStatus = "expired"
)

// ProjectInvitation represents a pending collaboration between two users on
// a project. Pending rows expire 7 days after creation.
type ProjectInvitation struct {
	ID          string           `json:"id" gorm:"primaryKey"`
	ProjectID   string           `json:"projectId" gorm:"column:project_id;index;not null"`
	SenderID    string           `json:"senderId" gorm:"column:sender_id;not null"`
	RecipientID string           `json:"recipientId" gorm:"column:recipient_id;index;not null"`
	Kind        InvitationKind   `json:"kind" gorm:"default:'invite'"`
	Status      InvitationStatus `json:"status" gorm:"index;default:'pending'"`
	Message     string           `json:"message"`
	ExpiresAt   time.Time        `json:"expiresAt" gorm:"column:expires_at;index"`
	gorm.Model
}

// TableName specifies the table name for ProjectInvitation Model
func (ProjectInvitation) TableName() string {
	return "project_invitations"
}
