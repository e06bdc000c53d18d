package repository

import (
	"time"

	"gorm.io/gorm/clause"

	"github.com/crithinklab/crithink/internal/models"
)

// BadgeRepository handles badge and badge-award database operations.
type BadgeRepository struct {
	db *DB
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Create creates a new badge in the database.
func (r *BadgeRepository) Create(badge *models.Badge) error {
	return r.db.Create(badge).Error
}

// GetByID retrieves a badge by its ID.
func (r *BadgeRepository) GetByID(id uint) (*models.Badge, error) {
	var badge models.Badge
	err := r.db.First(&badge, id).Error
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

// GetByName retrieves a badge by its name.
func (r *BadgeRepository) GetByName(name string) (*models.Badge, error) {
	var badge models.Badge
	err := r.db.Where("name = ?", name).First(&badge).Error
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

// GetAll retrieves all badges from the database.
func (r *BadgeRepository) GetAll() ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.Order("created_at ASC").Find(&badges).Error
	return badges, err
}

// Seed inserts catalog badges that do not exist yet, matching on name.
func (r *BadgeRepository) Seed(badges []models.Badge) error {
	for i := range badges {
		err := r.db.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).
			Create(&badges[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// InsertAward inserts a badge award for a user. The insert is conflict-
// tolerant against the unique (user_id, badge_id) index, so it is safe under
// concurrent duplicate requests. Returns true when a new row was inserted,
// false when the user already held the badge.
func (r *BadgeRepository) InsertAward(userID, badgeID uint, contextTag string) (bool, error) {
	award := &models.BadgeAward{
		UserID:     userID,
		BadgeID:    badgeID,
		ContextTag: contextTag,
		EarnedAt:   time.Now(),
	}
	result := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(award)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// HasUserEarnedBadge checks if a user has earned a specific badge.
func (r *BadgeRepository) HasUserEarnedBadge(userID, badgeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.BadgeAward{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserBadges retrieves all badges earned by a user with badge details preloaded.
func (r *BadgeRepository) GetUserBadges(userID uint) ([]models.BadgeAward, error) {
	var awards []models.BadgeAward
	err := r.db.
		Where("user_id = ?", userID).
		Preload("Badge").
		Order("earned_at DESC").
		Find(&awards).Error
	return awards, err
}

// GetUserBadgeCount returns the total number of badges a user has earned.
func (r *BadgeRepository) GetUserBadgeCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.BadgeAward{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// GetBadgeHoldersCount returns the number of users who have earned a specific badge.
func (r *BadgeRepository) GetBadgeHoldersCount(badgeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.BadgeAward{}).
		Where("badge_id = ?", badgeID).
		Count(&count).Error
	return count, err
}

// GetRecentlyAwarded retrieves badge awards created within a time period.
func (r *BadgeRepository) GetRecentlyAwarded(since time.Time) ([]models.BadgeAward, error) {
	var awards []models.BadgeAward
	err := r.db.
		Where("earned_at >= ?", since).
		Preload("Badge").
		Preload("User").
		Order("earned_at DESC").
		Find(&awards).Error
	return awards, err
}
