package repository

import (
	"gorm.io/gorm/clause"

	"github.com/crithinklab/crithink/internal/models"
)

// ResponseRepository handles Likert-response database operations.
type ResponseRepository struct {
	db *DB
}

// NewResponseRepository creates a new response repository.
func NewResponseRepository(db *DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Upsert stores a response, replacing any previous answer to the same
// question. Only the most recent value counts toward scoring.
func (r *ResponseRepository) Upsert(response *models.LikertResponse) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(response).Error
}

// GetByUser retrieves the latest response per question for a user.
func (r *ResponseRepository) GetByUser(userID uint) ([]models.LikertResponse, error) {
	var responses []models.LikertResponse
	err := r.db.
		Where("user_id = ?", userID).
		Order("question_id ASC").
		Find(&responses).Error
	return responses, err
}
