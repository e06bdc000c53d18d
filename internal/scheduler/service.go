// Package scheduler runs the daily maintenance job: leaderboard cache
// refresh and the badge award digest.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crithinklab/crithink/internal/config"
	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/pkg/logger"
)

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	Refresh(ctx context.Context) error
}

// BadgeService interface for badge operations.
type BadgeService interface {
	RecentAwards(ctx context.Context, since time.Time) ([]models.BadgeAward, error)
}

// Notifier interface for digest announcements.
type Notifier interface {
	AnnounceDigest(ctx context.Context, awards []models.BadgeAward) error
}

// Service schedules the daily maintenance job.
type Service struct {
	cfg         *config.SchedulerConfig
	leaderboard LeaderboardService
	badges      BadgeService
	notifier    Notifier
	log         *logger.Logger
	cron        *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(
	cfg *config.SchedulerConfig,
	leaderboard LeaderboardService,
	badges BadgeService,
	notifier Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		cfg:         cfg,
		leaderboard: leaderboard,
		badges:      badges,
		notifier:    notifier,
		log:         log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.cfg.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.cfg.Timezone, err)
	}

	spec := s.cfg.Time
	if spec == "" {
		spec = "0 6 * * *"
	}

	s.cron = cron.New(cron.WithLocation(location))
	if _, err := s.cron.AddFunc(spec, s.RunDaily); err != nil {
		return fmt.Errorf("failed to schedule daily job: %w", err)
	}
	s.cron.Start()

	s.log.Info().Str("spec", spec).Str("timezone", s.cfg.Timezone).Msg("Scheduler started")
	return nil
}

// Stop stops the cron scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunDaily executes the maintenance job once.
func (s *Service) RunDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.leaderboard.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("Daily leaderboard refresh failed")
	}

	awards, err := s.badges.RecentAwards(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to collect recent badge awards")
		return
	}
	if len(awards) == 0 {
		s.log.Debug().Msg("No badge awards in the last day, skipping digest")
		return
	}
	if err := s.notifier.AnnounceDigest(ctx, awards); err != nil {
		s.log.Warn().Err(err).Msg("Failed to send badge digest")
	}
}
