// Package dialogue provides the REST API handler for dialogue turns.
package dialogue

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crithinklab/crithink/internal/llm"
	"github.com/crithinklab/crithink/internal/models"
	dialoguesvc "github.com/crithinklab/crithink/internal/service/dialogue"
	"github.com/crithinklab/crithink/pkg/logger"
)

// DialogueService interface for dialogue operations.
type DialogueService interface {
	Take(ctx context.Context, req dialoguesvc.TurnRequest) (*dialoguesvc.TurnResult, error)
}

// Handler handles dialogue API requests.
type Handler struct {
	service DialogueService
	log     *logger.Logger
}

// NewHandler creates a new dialogue handler.
func NewHandler(service *dialoguesvc.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new dialogue handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service DialogueService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// turnRequest is the JSON body of a dialogue turn. The authenticated user id
// arrives from the upstream auth layer; history and the session point total
// are resent by the client every turn.
type turnRequest struct {
	UserID        uint                  `json:"user_id" binding:"required"`
	Message       string                `json:"message" binding:"required"`
	History       []models.DialogueTurn `json:"history"`
	SessionPoints int                   `json:"session_points"`
}

// TakeTurn processes one dialogue turn.
// POST /api/v1/dialogue/:mode/turns.
func (h *Handler) TakeTurn(c *gin.Context) {
	mode := c.Param("mode")
	if !models.KnownMode(mode) {
		h.errorResponse(c, http.StatusNotFound, "unknown dialogue mode")
		return
	}

	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Take(c.Request.Context(), dialoguesvc.TurnRequest{
		UserID:        req.UserID,
		Mode:          mode,
		History:       req.History,
		Message:       req.Message,
		SessionPoints: req.SessionPoints,
	})
	if err != nil {
		if errors.Is(err, dialoguesvc.ErrUnknownMode) {
			h.errorResponse(c, http.StatusNotFound, "unknown dialogue mode")
			return
		}
		var upstream *llm.UpstreamError
		if errors.As(err, &upstream) {
			h.log.Error().Err(err).Str("mode", mode).Msg("Generative-text backend unavailable")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     "The AI persona is temporarily unavailable",
				"retryable": true,
			})
			return
		}
		h.log.Error().Err(err).Str("mode", mode).Uint("user_id", req.UserID).Msg("Failed to process dialogue turn")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to process dialogue turn")
		return
	}

	h.log.Info().
		Str("mode", mode).
		Uint("user_id", req.UserID).
		Int("points", result.Points).
		Bool("complete", result.Complete).
		Msg("Dialogue turn served")

	c.JSON(http.StatusOK, result)
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
