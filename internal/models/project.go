package models

import (
	"time"

	"gorm.io/gorm"
)

// Project represents a project owned by a user.
type Project struct {
	ID          string `json:"id" gorm:"primaryKey"`
	OwnerID     string `json:"ownerId" gorm:"column:owner_id;index;not null"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`
	Tags        string `json:"tags"`

	Collaborators []ProjectCollaborator `json:"collaborators" gorm:"foreignKey:ProjectID"`
	gorm.Model
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}

// ProjectCollaborator links an accepted collaborator to a project.
type ProjectCollaborator struct {
	ProjectID string    `json:"-" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"primaryKey;index"`
	AddedAt   time.Time `json:"addedAt"`
}

// TableName specifies the table name for ProjectCollaborator Model
func (ProjectCollaborator) TableName() string {
	return "project_collaborators"
}
