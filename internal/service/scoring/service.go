package scoring

import (
	"context"
	"fmt"

	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/internal/repository"
	"github.com/crithinklab/crithink/pkg/logger"
)

// QuestionRepository interface for question operations.
type QuestionRepository interface {
	GetAll() ([]models.ScaleQuestion, error)
}

// ResponseRepository interface for response operations.
type ResponseRepository interface {
	Upsert(response *models.LikertResponse) error
	GetByUser(userID uint) ([]models.LikertResponse, error)
}

// Service handles questionnaire submission and scoring.
type Service struct {
	questionRepo QuestionRepository
	responseRepo ResponseRepository
	log          *logger.Logger
}

// NewService creates a new scoring service.
func NewService(
	questionRepo *repository.QuestionRepository,
	responseRepo *repository.ResponseRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		questionRepo: questionRepo,
		responseRepo: responseRepo,
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new scoring service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	questionRepo QuestionRepository,
	responseRepo ResponseRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		questionRepo: questionRepo,
		responseRepo: responseRepo,
		log:          log,
	}
}

// Questions returns the full question set in display order.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) Questions(ctx context.Context) ([]models.ScaleQuestion, error) {
	return s.questionRepo.GetAll()
}

// Submit stores a batch of responses for a user and computes the aggregate
// score. Values are clamped into the Likert range before storing. Returns
// *IncompleteError when the stored set does not yet cover every question.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) Submit(ctx context.Context, userID uint, answers map[uint]int) (*Result, error) {
	for questionID, value := range answers {
		resp := &models.LikertResponse{
			UserID:     userID,
			QuestionID: questionID,
			Value:      Clamp(value),
		}
		if err := s.responseRepo.Upsert(resp); err != nil {
			return nil, fmt.Errorf("failed to store response: %w", err)
		}
	}
	return s.ScoreUser(ctx, userID)
}

// ScoreUser computes the aggregate score from a user's stored responses.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) ScoreUser(ctx context.Context, userID uint) (*Result, error) {
	questions, err := s.questionRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	responses, err := s.responseRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}

	result, err := Score(questions, responses)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("user_id", userID).
		Int("score", result.Score).
		Int("questions", len(questions)).
		Msg("Computed disposition score")

	return result, nil
}
