package dialogue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crithinklab/crithink/internal/config"
	"github.com/crithinklab/crithink/internal/llm"
	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/internal/service/badges"
	"github.com/crithinklab/crithink/pkg/logger"
)

// Mock provider returning canned completions.
type mockProvider struct {
	replies []string
	errs    []error
	calls   int
}

func (m *mockProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	return m.replies[len(m.replies)-1], nil
}

// Mock ledger.
type mockLedger struct {
	owned      map[string]bool
	known      map[string]uint
	badgeCount int64
}

func newMockLedger(known ...string) *mockLedger {
	m := &mockLedger{owned: make(map[string]bool), known: make(map[string]uint)}
	for i, name := range known {
		m.known[name] = uint(i + 1)
	}
	return m
}

func (m *mockLedger) TryAward(ctx context.Context, userID uint, badgeName, contextTag string) (*badges.AwardResult, error) {
	id, ok := m.known[badgeName]
	if !ok {
		return &badges.AwardResult{Outcome: badges.OutcomeUnknownBadge}, nil
	}
	badge := &models.Badge{ID: id, Name: badgeName}
	if m.owned[badgeName] {
		return &badges.AwardResult{Outcome: badges.OutcomeAlreadyOwned, Badge: badge}, nil
	}
	m.owned[badgeName] = true
	m.badgeCount++
	return &badges.AwardResult{Outcome: badges.OutcomeNewlyAwarded, Badge: badge}, nil
}

func (m *mockLedger) GetUserBadgeCount(ctx context.Context, userID uint) (int64, error) {
	return m.badgeCount, nil
}

// Mock progress repository with in-memory totals.
type mockProgress struct {
	totals    map[string]int
	turns     map[string]int
	completed map[string]bool
}

func newMockProgress() *mockProgress {
	return &mockProgress{
		totals:    make(map[string]int),
		turns:     make(map[string]int),
		completed: make(map[string]bool),
	}
}

func (m *mockProgress) AddPoints(userID uint, mode string, points int) (*models.UserProgress, error) {
	m.totals[mode] += points
	m.turns[mode]++
	return &models.UserProgress{UserID: userID, Mode: mode, TotalPoints: m.totals[mode], TurnCount: m.turns[mode]}, nil
}

func (m *mockProgress) MarkCompleted(userID uint, mode string) error {
	m.completed[mode] = true
	return nil
}

type mockNotifier struct {
	announced []string
}

func (m *mockNotifier) AnnounceBadge(ctx context.Context, userID uint, badge *models.Badge) error {
	m.announced = append(m.announced, badge.Name)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return cfg
}

func newTestService(provider llm.Provider, ledger BadgeLedger, progress ProgressRepository, notifier Notifier) *Service {
	return NewServiceWithInterfaces(
		provider, ledger, progress, notifier,
		testConfig(),
		logger.New("debug", "console", "stdout"),
	)
}

func TestTake_BraceModeExtractsAndAwards(t *testing.T) {
	provider := &mockProvider{replies: []string{
		`{award_points: 5, type: "new_argument"} Great point! [badge: reason_giver]`,
	}}
	ledger := newMockLedger("reason_giver")
	progress := newMockProgress()
	notifier := &mockNotifier{}
	svc := newTestService(provider, ledger, progress, notifier)

	result, err := svc.Take(context.Background(), TurnRequest{
		UserID:  1,
		Mode:    models.ModeSocratic,
		Message: "I think the premise is flawed.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Great point!", result.Reply)
	assert.Equal(t, 5, result.Points)
	require.NotNil(t, result.Badge)
	assert.Equal(t, "reason_giver", result.Badge.Name)
	assert.Equal(t, 5, result.SessionPoints)
	assert.Equal(t, 5, result.TotalPoints)
	assert.Equal(t, 1, result.TurnCount)
	assert.False(t, result.Complete)
	assert.Equal(t, []string{"reason_giver"}, notifier.announced)
}

func TestTake_AlreadyOwnedBadgeNotReturned(t *testing.T) {
	provider := &mockProvider{replies: []string{"hm [badge: reason_giver]", "again [badge: reason_giver]"}}
	ledger := newMockLedger("reason_giver")
	progress := newMockProgress()
	notifier := &mockNotifier{}
	svc := newTestService(provider, ledger, progress, notifier)

	first, err := svc.Take(context.Background(), TurnRequest{UserID: 1, Mode: models.ModeSocratic, Message: "a"})
	require.NoError(t, err)
	require.NotNil(t, first.Badge)

	second, err := svc.Take(context.Background(), TurnRequest{UserID: 1, Mode: models.ModeSocratic, Message: "b"})
	require.NoError(t, err)
	assert.Nil(t, second.Badge)
	// Only the first award is announced.
	assert.Equal(t, []string{"reason_giver"}, notifier.announced)
}

func TestTake_UnknownBadgeNameIgnored(t *testing.T) {
	provider := &mockProvider{replies: []string{"fine [badge: made_up_badge]"}}
	svc := newTestService(provider, newMockLedger(), newMockProgress(), &mockNotifier{})

	result, err := svc.Take(context.Background(), TurnRequest{UserID: 1, Mode: models.ModeSocratic, Message: "a"})
	require.NoError(t, err)
	assert.Nil(t, result.Badge)
	assert.Equal(t, "fine", result.Reply)
}

func TestTake_CategoryModeCompletion(t *testing.T) {
	// 8th user turn with enough session points crosses the debate threshold.
	provider := &mockProvider{replies: []string{"Pushback. [REASONING +3: ok] [TOTAL: +3]"}}
	progress := newMockProgress()
	svc := newTestService(provider, newMockLedger(), progress, &mockNotifier{})

	history := make([]models.DialogueTurn, 0, 14)
	for i := 0; i < 7; i++ {
		history = append(history,
			models.DialogueTurn{Speaker: models.SpeakerUser, Text: "point"},
			models.DialogueTurn{Speaker: models.SpeakerPersona, Text: "counter"},
		)
	}

	result, err := svc.Take(context.Background(), TurnRequest{
		UserID:        1,
		Mode:          models.ModeDebate,
		History:       history,
		Message:       "closing argument",
		SessionPoints: 27,
	})
	require.NoError(t, err)

	assert.Equal(t, 8, result.TurnCount)
	assert.Equal(t, 30, result.SessionPoints)
	assert.True(t, result.Complete)
	assert.True(t, progress.completed[models.ModeDebate])
}

func TestTake_ChallengeModeBadgeTarget(t *testing.T) {
	provider := &mockProvider{replies: []string{"spotted it [badge: fallacy_hunter]"}}
	ledger := newMockLedger("fallacy_hunter")
	ledger.badgeCount = 4 // one more badge hits the target of 5
	svc := newTestService(provider, ledger, newMockProgress(), &mockNotifier{})

	result, err := svc.Take(context.Background(), TurnRequest{UserID: 1, Mode: models.ModeChallenge, Message: "a"})
	require.NoError(t, err)
	assert.True(t, result.Complete)
}

func TestTake_RetriesOnceOnRetryableFailure(t *testing.T) {
	provider := &mockProvider{
		errs:    []error{&llm.UpstreamError{Err: errors.New("deadline"), Retryable: true}},
		replies: []string{"", "recovered"},
	}
	svc := newTestService(provider, newMockLedger(), newMockProgress(), &mockNotifier{})

	result, err := svc.Take(context.Background(), TurnRequest{UserID: 1, Mode: models.ModeSocratic, Message: "a"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Reply)
	assert.Equal(t, 2, provider.calls)
}

func TestTake_NonRetryableFailureSurfaces(t *testing.T) {
	provider := &mockProvider{
		errs: []error{&llm.UpstreamError{Err: errors.New("invalid key"), Retryable: false}},
	}
	svc := newTestService(provider, newMockLedger(), newMockProgress(), &mockNotifier{})

	_, err := svc.Take(context.Background(), TurnRequest{UserID: 1, Mode: models.ModeSocratic, Message: "a"})
	require.Error(t, err)
	assert.Equal(t, 1, provider.calls)
}

func TestTake_UnknownMode(t *testing.T) {
	svc := newTestService(&mockProvider{replies: []string{"x"}}, newMockLedger(), newMockProgress(), &mockNotifier{})

	_, err := svc.Take(context.Background(), TurnRequest{UserID: 1, Mode: "banter", Message: "a"})
	require.ErrorIs(t, err, ErrUnknownMode)
}
