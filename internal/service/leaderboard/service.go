// Package leaderboard provides point rankings and per-user statistics.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/crithinklab/crithink/internal/cache"
	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/internal/repository"
	"github.com/crithinklab/crithink/pkg/logger"
)

// ProgressRepository interface for progress operations.
type ProgressRepository interface {
	TotalsByUser() ([]repository.ProgressTotal, error)
	GetByUser(userID uint) ([]models.UserProgress, error)
}

// BadgeRepository interface for badge operations.
type BadgeRepository interface {
	GetUserBadgeCount(userID uint) (int64, error)
	GetUserBadges(userID uint) ([]models.BadgeAward, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// Cache interface for the Redis leaderboard cache.
type Cache interface {
	Rebuild(ctx context.Context, members []cache.Member) error
	Top(ctx context.Context, limit int) ([]cache.Member, error)
	Rank(ctx context.Context, userID uint) (int, error)
	Size(ctx context.Context) (int64, error)
}

// Entry represents a single entry in the leaderboard.
type Entry struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Cohort      string `json:"cohort"`
	TotalPoints int    `json:"total_points"`
	BadgeCount  int    `json:"badge_count"`
	Rank        int    `json:"rank"`
}

// Service handles leaderboard generation and user statistics.
type Service struct {
	progressRepo ProgressRepository
	badgeRepo    BadgeRepository
	userRepo     UserRepository
	cache        Cache
	log          *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(
	progressRepo *repository.ProgressRepository,
	badgeRepo *repository.BadgeRepository,
	userRepo *repository.UserRepository,
	lbCache *cache.LeaderboardCache,
	log *logger.Logger,
) *Service {
	return &Service{
		progressRepo: progressRepo,
		badgeRepo:    badgeRepo,
		userRepo:     userRepo,
		cache:        lbCache,
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	progressRepo ProgressRepository,
	badgeRepo BadgeRepository,
	userRepo UserRepository,
	lbCache Cache,
	log *logger.Logger,
) *Service {
	return &Service{
		progressRepo: progressRepo,
		badgeRepo:    badgeRepo,
		userRepo:     userRepo,
		cache:        lbCache,
		log:          log,
	}
}

// GetLeaderboard returns the top users by total points. Reads come from the
// Redis sorted set; an empty cache falls through to the database and
// repopulates it.
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	members, err := s.topMembers(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(members))
	for i, m := range members {
		entry := Entry{
			UserID:      m.UserID,
			TotalPoints: m.Points,
			Rank:        i + 1,
		}

		user, err := s.userRepo.GetByID(m.UserID)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", m.UserID).Msg("Failed to load leaderboard user")
		} else {
			entry.Username = user.Username
			entry.DisplayName = user.DisplayName
			entry.Cohort = user.Cohort
		}

		badgeCount, err := s.badgeRepo.GetUserBadgeCount(m.UserID)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", m.UserID).Msg("Failed to get badge count")
		}
		entry.BadgeCount = int(badgeCount)

		entries = append(entries, entry)
	}
	return entries, nil
}

// topMembers reads the cache, rebuilding it from the database when empty.
func (s *Service) topMembers(ctx context.Context, limit int) ([]cache.Member, error) {
	if s.cache != nil {
		members, err := s.cache.Top(ctx, limit)
		if err != nil {
			s.log.Warn().Err(err).Msg("Leaderboard cache read failed, falling back to database")
		} else if len(members) > 0 {
			return members, nil
		}
	}

	totals, err := s.progressRepo.TotalsByUser()
	if err != nil {
		return nil, fmt.Errorf("failed to get point totals: %w", err)
	}

	members := make([]cache.Member, 0, len(totals))
	for _, t := range totals {
		members = append(members, cache.Member{UserID: t.UserID, Points: t.TotalPoints})
	}

	if s.cache != nil && len(members) > 0 {
		if err := s.cache.Rebuild(ctx, members); err != nil {
			s.log.Warn().Err(err).Msg("Failed to repopulate leaderboard cache")
		}
	}

	if limit > 0 && len(members) > limit {
		members = members[:limit]
	}
	return members, nil
}

// Refresh rebuilds the cached leaderboard from the database. Called by the
// daily maintenance job.
func (s *Service) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	totals, err := s.progressRepo.TotalsByUser()
	if err != nil {
		return fmt.Errorf("failed to get point totals: %w", err)
	}
	members := make([]cache.Member, 0, len(totals))
	for _, t := range totals {
		members = append(members, cache.Member{UserID: t.UserID, Points: t.TotalPoints})
	}
	if err := s.cache.Rebuild(ctx, members); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard cache: %w", err)
	}
	s.log.Info().Int("members", len(members)).Msg("Leaderboard cache rebuilt")
	return nil
}
