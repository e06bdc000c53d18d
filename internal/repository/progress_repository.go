package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crithinklab/crithink/internal/models"
)

// ProgressRepository handles per-user per-mode point totals.
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// AddPoints adds points to a user's running total for a mode and bumps the
// turn counter. The increment happens in SQL, not read-modify-write, so
// concurrent turns cannot lose updates.
func (r *ProgressRepository) AddPoints(userID uint, mode string, points int) (*models.UserProgress, error) {
	// Ensure the row exists; conflict-tolerant against (user_id, mode).
	err := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "mode"}},
			DoNothing: true,
		}).
		Create(&models.UserProgress{UserID: userID, Mode: mode}).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&models.UserProgress{}).
		Where("user_id = ? AND mode = ?", userID, mode).
		UpdateColumns(map[string]interface{}{
			"total_points": gorm.Expr("total_points + ?", points),
			"turn_count":   gorm.Expr("turn_count + 1"),
			"updated_at":   time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}

	return r.Get(userID, mode)
}

// Get retrieves a user's progress for a mode.
func (r *ProgressRepository) Get(userID uint, mode string) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := r.db.
		Where("user_id = ? AND mode = ?", userID, mode).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetByUser retrieves a user's progress rows across all modes.
func (r *ProgressRepository) GetByUser(userID uint) ([]models.UserProgress, error) {
	var progress []models.UserProgress
	err := r.db.
		Where("user_id = ?", userID).
		Order("mode ASC").
		Find(&progress).Error
	return progress, err
}

// MarkCompleted stamps a user's progress row for a mode as completed. The
// first completion wins; later turns do not move the timestamp.
func (r *ProgressRepository) MarkCompleted(userID uint, mode string) error {
	return r.db.Model(&models.UserProgress{}).
		Where("user_id = ? AND mode = ? AND completed_at IS NULL", userID, mode).
		UpdateColumn("completed_at", time.Now()).Error
}

// TotalsByUser returns every user's total points summed across modes,
// ordered highest first.
func (r *ProgressRepository) TotalsByUser() ([]ProgressTotal, error) {
	var totals []ProgressTotal
	err := r.db.Model(&models.UserProgress{}).
		Select("user_id, SUM(total_points) AS total_points").
		Group("user_id").
		Order("total_points DESC").
		Scan(&totals).Error
	return totals, err
}

// ProgressTotal is a user's point total summed across modes.
type ProgressTotal struct {
	UserID      uint `json:"user_id"`
	TotalPoints int  `json:"total_points"`
}
