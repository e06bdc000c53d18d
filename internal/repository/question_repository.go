package repository

import (
	"gorm.io/gorm/clause"

	"github.com/crithinklab/crithink/internal/models"
)

// QuestionRepository handles scale-question database operations.
type QuestionRepository struct {
	db *DB
}

// NewQuestionRepository creates a new question repository.
func NewQuestionRepository(db *DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// GetAll retrieves the full question set in display order.
func (r *QuestionRepository) GetAll() ([]models.ScaleQuestion, error) {
	var questions []models.ScaleQuestion
	err := r.db.Order("position ASC").Find(&questions).Error
	return questions, err
}

// GetByID retrieves a question by its ID.
func (r *QuestionRepository) GetByID(id uint) (*models.ScaleQuestion, error) {
	var question models.ScaleQuestion
	err := r.db.First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// Seed inserts scale questions that do not exist yet, matching on position.
// The question set is reference data and never changes after seeding.
func (r *QuestionRepository) Seed(questions []models.ScaleQuestion) error {
	for i := range questions {
		err := r.db.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "position"}},
				DoNothing: true,
			}).
			Create(&questions[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}
