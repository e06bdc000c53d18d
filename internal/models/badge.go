package models

import (
	"time"
)

// Badge represents an achievement that can be earned by users.
// Badge names are the identifiers the annotation grammar emits
// (lowercase letters and underscores, e.g. "evidence_expert").
type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Title       string    `gorm:"size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageRef    string    `gorm:"size:255" json:"image_ref"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Badge model.
func (Badge) TableName() string {
	return "badges"
}

// BadgeAward records that a user earned a badge. The composite unique index
// on (user_id, badge_id) is the uniqueness guarantee: awarding is an
// insert-on-conflict-do-nothing, so concurrent duplicate attempts collapse
// to a single row.
type BadgeAward struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BadgeID    uint      `gorm:"not null;uniqueIndex:idx_user_badge;index" json:"badge_id"`
	Badge      Badge     `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	ContextTag string    `gorm:"size:100" json:"context_tag"`
	EarnedAt   time.Time `gorm:"not null" json:"earned_at"`
}

// TableName specifies the table name for BadgeAward model.
func (BadgeAward) TableName() string {
	return "badge_awards"
}
