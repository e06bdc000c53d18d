// Package questionnaire provides the REST API handlers for the disposition questionnaire.
package questionnaire

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crithinklab/crithink/internal/metrics"
	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/internal/service/scoring"
	"github.com/crithinklab/crithink/pkg/logger"
)

// ScoringService interface for questionnaire operations.
type ScoringService interface {
	Questions(ctx context.Context) ([]models.ScaleQuestion, error)
	Submit(ctx context.Context, userID uint, answers map[uint]int) (*scoring.Result, error)
	ScoreUser(ctx context.Context, userID uint) (*scoring.Result, error)
}

// Handler handles questionnaire API requests.
type Handler struct {
	service ScoringService
	log     *logger.Logger
}

// NewHandler creates a new questionnaire handler.
func NewHandler(service *scoring.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new questionnaire handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service ScoringService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// GetQuestions returns the question set in display order.
// GET /api/v1/questionnaire/questions.
func (h *Handler) GetQuestions(c *gin.Context) {
	questions, err := h.service.Questions(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load questionnaire")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load questionnaire")
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions, "count": len(questions)})
}

type answerPayload struct {
	QuestionID uint `json:"question_id" binding:"required"`
	Value      int  `json:"value" binding:"required"`
}

type submitRequest struct {
	UserID  uint            `json:"user_id" binding:"required"`
	Answers []answerPayload `json:"answers" binding:"required"`
}

// SubmitResponses stores a batch of answers and returns the aggregate score.
// Partial batches are accepted and stored; the score is only returned once
// every question has an answer on record.
// POST /api/v1/questionnaire/responses.
func (h *Handler) SubmitResponses(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	answers := make(map[uint]int, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.QuestionID] = a.Value
	}

	result, err := h.service.Submit(c.Request.Context(), req.UserID, answers)
	if err != nil {
		var incomplete *scoring.IncompleteError
		if errors.As(err, &incomplete) {
			metrics.QuestionnairesScoredTotal.WithLabelValues("incomplete").Inc()
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "questionnaire incomplete",
				"missing": incomplete.Missing(),
			})
			return
		}
		h.log.Error().Err(err).Uint("user_id", req.UserID).Msg("Failed to score questionnaire")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to score questionnaire")
		return
	}

	metrics.QuestionnairesScoredTotal.WithLabelValues("scored").Inc()
	h.log.Info().Uint("user_id", req.UserID).Int("score", result.Score).Msg("Questionnaire scored")
	c.JSON(http.StatusOK, result)
}

// GetScore recomputes the aggregate score from a user's stored responses.
// GET /api/v1/questionnaire/users/:user_id/score.
func (h *Handler) GetScore(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	result, err := h.service.ScoreUser(c.Request.Context(), userID)
	if err != nil {
		var incomplete *scoring.IncompleteError
		if errors.As(err, &incomplete) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "questionnaire incomplete",
				"missing": incomplete.Missing(),
			})
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to score questionnaire")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to score questionnaire")
		return
	}

	c.JSON(http.StatusOK, result)
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
