// Package models defines domain models for the critical-thinking training platform.
package models

import (
	"time"
)

// User represents a registered learner.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null;size:255" json:"username"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Email       string    `gorm:"size:255" json:"email"`
	Cohort      string    `gorm:"size:100;index" json:"cohort"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// UserProgress tracks a user's running point total within one dialogue mode.
// Totals are only ever changed through atomic increments (see
// repository.ProgressRepository.AddPoints), never read-modify-write.
type UserProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index;uniqueIndex:idx_user_mode" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Mode        string     `gorm:"not null;size:50;uniqueIndex:idx_user_mode" json:"mode"`
	TotalPoints int        `gorm:"not null;default:0" json:"total_points"`
	TurnCount   int        `gorm:"not null;default:0" json:"turn_count"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for UserProgress model.
func (UserProgress) TableName() string {
	return "user_progress"
}
