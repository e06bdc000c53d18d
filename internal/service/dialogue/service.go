// Package dialogue orchestrates one turn of an AI-persona dialogue: prompt
// composition, the generative-text call, annotation extraction, point and
// badge bookkeeping, and completion evaluation.
package dialogue

import (
	"context"
	"fmt"

	"github.com/crithinklab/crithink/internal/config"
	"github.com/crithinklab/crithink/internal/llm"
	prommetrics "github.com/crithinklab/crithink/internal/metrics"
	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/internal/repository"
	"github.com/crithinklab/crithink/internal/service/annotation"
	"github.com/crithinklab/crithink/internal/service/badges"
	"github.com/crithinklab/crithink/pkg/logger"
)

// ErrUnknownMode is returned when the requested dialogue mode is not configured.
var ErrUnknownMode = fmt.Errorf("unknown dialogue mode")

// BadgeLedger interface for badge operations.
type BadgeLedger interface {
	TryAward(ctx context.Context, userID uint, badgeName, contextTag string) (*badges.AwardResult, error)
	GetUserBadgeCount(ctx context.Context, userID uint) (int64, error)
}

// ProgressRepository interface for progress operations.
type ProgressRepository interface {
	AddPoints(userID uint, mode string, points int) (*models.UserProgress, error)
	MarkCompleted(userID uint, mode string) error
}

// Notifier announces newly awarded badges. Best effort: failures are logged,
// never surfaced to the user.
type Notifier interface {
	AnnounceBadge(ctx context.Context, userID uint, badge *models.Badge) error
}

// TurnRequest is one inbound dialogue turn. The client resends the full
// history and its running session point total each turn; the server keeps no
// session state.
type TurnRequest struct {
	UserID        uint
	Mode          string
	History       []models.DialogueTurn
	Message       string
	SessionPoints int
}

// TurnResult is everything the handler returns to the client for one turn.
type TurnResult struct {
	Reply         string                  `json:"reply"`
	Points        int                     `json:"points"`
	Awards        []annotation.PointAward `json:"awards,omitempty"`
	Badge         *models.Badge           `json:"badge,omitempty"`
	Table         *annotation.Table       `json:"table,omitempty"`
	SessionPoints int                     `json:"session_points"`
	TotalPoints   int                     `json:"total_points"`
	TurnCount     int                     `json:"turn_count"`
	Complete      bool                    `json:"complete"`
}

// Service handles dialogue turns.
type Service struct {
	provider     llm.Provider
	ledger       BadgeLedger
	progressRepo ProgressRepository
	notifier     Notifier
	cfg          *config.Config
	log          *logger.Logger
}

// NewService creates a new dialogue service.
func NewService(
	provider llm.Provider,
	ledger *badges.Service,
	progressRepo *repository.ProgressRepository,
	notifier Notifier,
	cfg *config.Config,
	log *logger.Logger,
) *Service {
	return &Service{
		provider:     provider,
		ledger:       ledger,
		progressRepo: progressRepo,
		notifier:     notifier,
		cfg:          cfg,
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new dialogue service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	provider llm.Provider,
	ledger BadgeLedger,
	progressRepo ProgressRepository,
	notifier Notifier,
	cfg *config.Config,
	log *logger.Logger,
) *Service {
	return &Service{
		provider:     provider,
		ledger:       ledger,
		progressRepo: progressRepo,
		notifier:     notifier,
		cfg:          cfg,
		log:          log,
	}
}

// Take processes one dialogue turn end to end.
func (s *Service) Take(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	mode, ok := s.cfg.Mode(req.Mode)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, req.Mode)
	}

	raw, err := s.complete(ctx, req, mode)
	if err != nil {
		prommetrics.DialogueTurnsTotal.WithLabelValues(req.Mode, "error").Inc()
		return nil, err
	}

	grammar := annotation.ForName(mode.Grammar)
	ext := grammar.Extract(raw)

	prommetrics.DialogueTurnsTotal.WithLabelValues(req.Mode, "ok").Inc()
	prommetrics.TurnPointsAwarded.WithLabelValues(req.Mode).Observe(float64(ext.Points))
	for _, award := range ext.Awards {
		prommetrics.PointsAwardedTotal.WithLabelValues(req.Mode, award.Category).Add(float64(award.Amount))
	}

	result := &TurnResult{
		Reply:         ext.Display,
		Points:        ext.Points,
		Awards:        ext.Awards,
		Table:         ext.Table,
		SessionPoints: req.SessionPoints + ext.Points,
		TurnCount:     countUserTurns(req.History) + 1,
	}

	if ext.Badge != "" {
		award, err := s.ledger.TryAward(ctx, req.UserID, ext.Badge, req.Mode)
		if err != nil {
			// The turn already cost an upstream call; keep the reply and
			// log the bookkeeping failure.
			s.log.Error().Err(err).Uint("user_id", req.UserID).Str("badge", ext.Badge).Msg("Failed to award badge")
		} else if award.Outcome == badges.OutcomeNewlyAwarded {
			result.Badge = award.Badge
			s.announce(ctx, req.UserID, award.Badge)
		}
	}

	progress, err := s.progressRepo.AddPoints(req.UserID, req.Mode, ext.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	result.TotalPoints = progress.TotalPoints

	badgeCount := 0
	if mode.Completion.TargetBadges > 0 {
		count, err := s.ledger.GetUserBadgeCount(ctx, req.UserID)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", req.UserID).Msg("Failed to get badge count")
		}
		badgeCount = int(count)
	}

	result.Complete = EvaluateCompletion(mode.Completion, CompletionInput{
		TurnCount:     result.TurnCount,
		SessionPoints: result.SessionPoints,
		TotalPoints:   result.TotalPoints,
		BadgeCount:    badgeCount,
	})
	if result.Complete {
		if err := s.progressRepo.MarkCompleted(req.UserID, req.Mode); err != nil {
			s.log.Error().Err(err).Uint("user_id", req.UserID).Str("mode", req.Mode).Msg("Failed to mark completion")
		}
		prommetrics.SessionsCompletedTotal.WithLabelValues(req.Mode).Inc()
	}

	s.log.Info().
		Uint("user_id", req.UserID).
		Str("mode", req.Mode).
		Int("points", ext.Points).
		Str("badge", ext.Badge).
		Bool("complete", result.Complete).
		Msg("Dialogue turn processed")

	return result, nil
}

// complete calls the provider, retrying once on a retryable upstream failure.
func (s *Service) complete(ctx context.Context, req TurnRequest, mode config.ModeConfig) (string, error) {
	llmReq := llm.Request{
		System:   BuildSystemPrompt(req.Mode, mode),
		History:  toMessages(req.History),
		UserText: req.Message,
	}

	attempts := 1 + s.cfg.AI.MaxRetries
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			prommetrics.CompletionRetriesTotal.Inc()
			s.log.Warn().Err(lastErr).Int("attempt", i+1).Msg("Retrying generative-text request")
		}
		raw, err := s.provider.Complete(ctx, llmReq)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !llm.IsRetryable(err) {
			break
		}
	}
	return "", fmt.Errorf("dialogue turn failed: %w", lastErr)
}

// announce best-effort notifies about a newly awarded badge.
func (s *Service) announce(ctx context.Context, userID uint, badge *models.Badge) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.AnnounceBadge(ctx, userID, badge); err != nil {
		s.log.Warn().Err(err).Str("badge", badge.Name).Msg("Failed to announce badge")
	}
}

// countUserTurns counts the user's turns in the resent history.
func countUserTurns(history []models.DialogueTurn) int {
	n := 0
	for _, turn := range history {
		if turn.Speaker == models.SpeakerUser {
			n++
		}
	}
	return n
}

// toMessages converts history turns into provider messages.
func toMessages(history []models.DialogueTurn) []llm.Message {
	msgs := make([]llm.Message, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Speaker == models.SpeakerPersona {
			role = "persona"
		}
		msgs = append(msgs, llm.Message{Role: role, Text: turn.Text})
	}
	return msgs
}
