package models

import (
	"time"
)

// ScaleQuestion is one Likert item of the disposition questionnaire.
// Seeded once at startup; immutable afterward.
type ScaleQuestion struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Position   int       `gorm:"not null;uniqueIndex" json:"position"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsReversed bool      `gorm:"not null;default:false" json:"is_reversed"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for ScaleQuestion model.
func (ScaleQuestion) TableName() string {
	return "scale_questions"
}

// LikertResponse is a user's answer to one scale question. Resubmitting a
// question upserts the row, so only the most recent value counts toward
// scoring. Rows are never deleted.
type LikertResponse struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	UserID     uint          `gorm:"not null;uniqueIndex:idx_user_question" json:"user_id"`
	User       User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	QuestionID uint          `gorm:"not null;uniqueIndex:idx_user_question" json:"question_id"`
	Question   ScaleQuestion `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Value      int           `gorm:"not null" json:"value"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// TableName specifies the table name for LikertResponse model.
func (LikertResponse) TableName() string {
	return "likert_responses"
}

// Likert scale bounds. Answers outside the range are clamped, not rejected.
const (
	LikertMin = 1
	LikertMax = 6
)
