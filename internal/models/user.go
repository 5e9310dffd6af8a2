package models

import (
	"time"

	"gorm.io/gorm"
)

// UserStatus represents the presence status of a user
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusBusy     UserStatus = "busy"
)

// ValidUserStatus reports whether s is one of the allowed status values.
func ValidUserStatus(s UserStatus) bool {
	switch s {
	case StatusActive, StatusInactive, StatusBusy:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	FullName   string     `json:"fullname" gorm:"column:fullname;not null"`
	Email      string     `json:"email" gorm:"unique;not null"`
	Password   string     `json:"-" gorm:"not null"`
	Avatar     string     `json:"avatar"`
	Bio        string     `json:"bio"`
	Status     UserStatus `json:"status" gorm:"default:'inactive'"`
	LastActive time.Time  `json:"lastActive" gorm:"column:last_active"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// PublicUser is the safe projection of a user for API responses and
// realtime payloads (no password, no internal columns).
type PublicUser struct {
	ID         string     `json:"id"`
	FullName   string     `json:"fullname"`
	Avatar     string     `json:"avatar"`
	Status     UserStatus `json:"status"`
	LastActive time.Time  `json:"lastActive"`
}

// Public returns the safe projection of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		Status:     u.Status,
		LastActive: u.LastActive,
	}
}
