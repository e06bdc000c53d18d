package leaderboard

import (
	"context"
	"fmt"

	"github.com/crithinklab/crithink/internal/models"
)

// UserStats represents comprehensive statistics for a user.
type UserStats struct {
	UserID      uint                  `json:"user_id"`
	Username    string                `json:"username"`
	DisplayName string                `json:"display_name"`
	Cohort      string                `json:"cohort"`
	TotalPoints int                   `json:"total_points"`
	Modes       []models.UserProgress `json:"modes"`
	Badges      []models.BadgeAward   `json:"badges"`
	GlobalRank  int                   `json:"global_rank"`
}

// GetUserStats returns comprehensive statistics for a user.
func (s *Service) GetUserStats(ctx context.Context, userID uint) (*UserStats, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	progress, err := s.progressRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}

	badgeAwards, err := s.badgeRepo.GetUserBadges(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}

	stats := &UserStats{
		UserID:      userID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Cohort:      user.Cohort,
		Modes:       progress,
		Badges:      badgeAwards,
	}
	for _, p := range progress {
		stats.TotalPoints += p.TotalPoints
	}

	stats.GlobalRank = s.globalRank(ctx, userID)
	return stats, nil
}

// globalRank resolves the user's rank, preferring the cache and falling back
// to a database scan when the cache is cold or unavailable.
func (s *Service) globalRank(ctx context.Context, userID uint) int {
	if s.cache != nil {
		rank, err := s.cache.Rank(ctx, userID)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", userID).Msg("Leaderboard cache rank failed")
		} else if rank > 0 {
			return rank
		}
	}

	totals, err := s.progressRepo.TotalsByUser()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to compute rank from database")
		return 0
	}
	for i, t := range totals {
		if t.UserID == userID {
			return i + 1
		}
	}
	return 0
}
