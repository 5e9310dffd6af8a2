package models

import (
	"gorm.io/gorm"
)

// Follow represents a follower -> following relationship.
// The composite unique index prevents duplicate follows.
type Follow struct {
	ID          string `json:"id" gorm:"primaryKey"`
	FollowerID  string `json:"follower" gorm:"column:follower_id;not null;uniqueIndex:idx_follow_pair"`
	FollowingID string `json:"following" gorm:"column:following_id;not null;uniqueIndex:idx_follow_pair;index"`
	gorm.Model
}

// TableName specifies the table name for Follow Model
func (Follow) TableName() string {
	return "follows"
}
