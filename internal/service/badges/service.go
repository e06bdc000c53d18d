// Package badges implements the badge ledger: at most one award of each
// badge per user, enforced by the store's unique constraint.
package badges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	prommetrics "github.com/crithinklab/crithink/internal/metrics"
	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/internal/repository"
	"github.com/crithinklab/crithink/pkg/logger"
)

// Outcome classifies the result of a badge award attempt.
type Outcome string

// Award outcomes.
const (
	OutcomeNewlyAwarded Outcome = "newly_awarded"
	OutcomeAlreadyOwned Outcome = "already_owned"
	OutcomeUnknownBadge Outcome = "unknown_badge"
)

// AwardResult is the outcome of TryAward, with the badge when one matched.
type AwardResult struct {
	Outcome Outcome
	Badge   *models.Badge
}

// BadgeRepository interface for badge operations.
type BadgeRepository interface {
	GetByName(name string) (*models.Badge, error)
	GetByID(id uint) (*models.Badge, error)
	GetAll() ([]models.Badge, error)
	InsertAward(userID, badgeID uint, contextTag string) (bool, error)
	GetUserBadges(userID uint) ([]models.BadgeAward, error)
	GetUserBadgeCount(userID uint) (int64, error)
	GetBadgeHoldersCount(badgeID uint) (int64, error)
	GetRecentlyAwarded(since time.Time) ([]models.BadgeAward, error)
	Seed(badges []models.Badge) error
}

// Service is the badge ledger.
type Service struct {
	badgeRepo BadgeRepository
	log       *logger.Logger
}

// NewService creates a new badge ledger.
func NewService(badgeRepo *repository.BadgeRepository, log *logger.Logger) *Service {
	return &Service{badgeRepo: badgeRepo, log: log}
}

// NewServiceWithInterfaces creates a new badge ledger with interface dependencies (useful for testing).
func NewServiceWithInterfaces(badgeRepo BadgeRepository, log *logger.Logger) *Service {
	return &Service{badgeRepo: badgeRepo, log: log}
}

// TryAward awards the named badge to the user unless they already hold it.
// An unrecognized badge name is not an error: the persona occasionally
// invents names, which are logged and ignored. Duplicate attempts, including
// concurrent ones, resolve to OutcomeAlreadyOwned through the store's
// conflict-tolerant insert.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) TryAward(ctx context.Context, userID uint, badgeName, contextTag string) (*AwardResult, error) {
	badge, err := s.badgeRepo.GetByName(badgeName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().
				Uint("user_id", userID).
				Str("badge", badgeName).
				Str("context", contextTag).
				Msg("Ignoring unknown badge name")
			return &AwardResult{Outcome: OutcomeUnknownBadge}, nil
		}
		return nil, fmt.Errorf("failed to look up badge: %w", err)
	}

	inserted, err := s.badgeRepo.InsertAward(userID, badge.ID, contextTag)
	if err != nil {
		return nil, fmt.Errorf("failed to award badge: %w", err)
	}
	if !inserted {
		return &AwardResult{Outcome: OutcomeAlreadyOwned, Badge: badge}, nil
	}

	prommetrics.BadgesAwardedTotal.WithLabelValues(badge.Name, contextTag).Inc()
	s.log.Info().
		Uint("user_id", userID).
		Str("badge", badge.Name).
		Str("context", contextTag).
		Msg("Badge awarded")

	return &AwardResult{Outcome: OutcomeNewlyAwarded, Badge: badge}, nil
}

// GetUserBadges returns the badges a user has earned, newest first.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetUserBadges(ctx context.Context, userID uint) ([]models.BadgeAward, error) {
	return s.badgeRepo.GetUserBadges(userID)
}

// GetUserBadgeCount returns how many distinct badges a user holds.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetUserBadgeCount(ctx context.Context, userID uint) (int64, error) {
	return s.badgeRepo.GetUserBadgeCount(userID)
}

// GetBadgeCatalog returns the full badge catalog.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetBadgeCatalog(ctx context.Context) ([]models.Badge, error) {
	return s.badgeRepo.GetAll()
}

// GetBadgeByID returns one badge with its holder count.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetBadgeByID(ctx context.Context, badgeID uint) (*models.Badge, int64, error) {
	badge, err := s.badgeRepo.GetByID(badgeID)
	if err != nil {
		return nil, 0, err
	}
	holders, err := s.badgeRepo.GetBadgeHoldersCount(badgeID)
	if err != nil {
		return nil, 0, err
	}
	return badge, holders, nil
}

// RecentAwards returns badge awards since the given time.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) RecentAwards(ctx context.Context, since time.Time) ([]models.BadgeAward, error) {
	return s.badgeRepo.GetRecentlyAwarded(since)
}

// SeedCatalog inserts any configured badges missing from the catalog.
func (s *Service) SeedCatalog(badges []models.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	if err := s.badgeRepo.Seed(badges); err != nil {
		return fmt.Errorf("failed to seed badge catalog: %w", err)
	}
	s.log.Info().Int("badges", len(badges)).Msg("Badge catalog seeded")
	return nil
}
