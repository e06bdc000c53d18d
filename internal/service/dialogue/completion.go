package dialogue

import (
	"github.com/crithinklab/crithink/internal/config"
)

// CompletionInput is the accumulated state the completion rule looks at.
type CompletionInput struct {
	// TurnCount is the number of user turns in the session, including the
	// one being processed.
	TurnCount int
	// SessionPoints is the cumulative points earned in this session,
	// including the current turn.
	SessionPoints int
	// TotalPoints is the user's all-time point total for the mode.
	TotalPoints int
	// BadgeCount is the number of distinct badges the user holds.
	BadgeCount int
}

// EvaluateCompletion decides whether a dialogue session is complete under
// the mode's thresholds. Target-based modes complete when either cumulative
// target is reached; session-based modes require both the turn and point
// minimums.
func EvaluateCompletion(cfg config.CompletionConfig, in CompletionInput) bool {
	if cfg.TargetPoints > 0 || cfg.TargetBadges > 0 {
		if cfg.TargetPoints > 0 && in.TotalPoints >= cfg.TargetPoints {
			return true
		}
		if cfg.TargetBadges > 0 && in.BadgeCount >= cfg.TargetBadges {
			return true
		}
		return false
	}
	return in.TurnCount >= cfg.MinTurns && in.SessionPoints >= cfg.MinPoints
}
