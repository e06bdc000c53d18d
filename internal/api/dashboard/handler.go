// Package dashboard provides the REST API handlers for leaderboard and badge views.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/internal/service/badges"
	"github.com/crithinklab/crithink/internal/service/leaderboard"
	"github.com/crithinklab/crithink/pkg/logger"
)

const defaultLeaderboardLimit = 20

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	GetUserStats(ctx context.Context, userID uint) (*leaderboard.UserStats, error)
}

// BadgeService interface for badge operations.
type BadgeService interface {
	GetUserBadges(ctx context.Context, userID uint) ([]models.BadgeAward, error)
	GetBadgeCatalog(ctx context.Context) ([]models.Badge, error)
	GetBadgeByID(ctx context.Context, badgeID uint) (*models.Badge, int64, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	leaderboardService LeaderboardService
	badgeService       BadgeService
	log                *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(
	leaderboardService *leaderboard.Service,
	badgeService *badges.Service,
	log *logger.Logger,
) *Handler {
	return &Handler{
		leaderboardService: leaderboardService,
		badgeService:       badgeService,
		log:                log,
	}
}

// NewHandlerWithInterfaces creates a new dashboard handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	leaderboardService LeaderboardService,
	badgeService BadgeService,
	log *logger.Logger,
) *Handler {
	return &Handler{
		leaderboardService: leaderboardService,
		badgeService:       badgeService,
		log:                log,
	}
}

// GetLeaderboard returns the top users by total points.
// GET /api/v1/dashboard/leaderboard?limit=20.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.errorResponse(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	entries, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "count": len(entries)})
}

// GetUserStats returns one user's point totals, per-mode progress and rank.
// GET /api/v1/dashboard/users/:user_id/stats.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	stats, err := h.leaderboardService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to load user stats")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load user stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetUserBadges returns the badges a user has earned.
// GET /api/v1/dashboard/users/:user_id/badges.
func (h *Handler) GetUserBadges(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	awards, err := h.badgeService.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to load user badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load user badges")
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": awards, "count": len(awards)})
}

// GetBadgeCatalog returns every badge the platform can award.
// GET /api/v1/dashboard/badges.
func (h *Handler) GetBadgeCatalog(c *gin.Context) {
	catalog, err := h.badgeService.GetBadgeCatalog(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load badge catalog")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load badge catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": catalog, "count": len(catalog)})
}

// GetBadge returns one badge plus how many users hold it.
// GET /api/v1/dashboard/badges/:badge_id.
func (h *Handler) GetBadge(c *gin.Context) {
	badgeID, ok := parseID(c, "badge_id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "invalid badge id")
		return
	}

	badge, holders, err := h.badgeService.GetBadgeByID(c.Request.Context(), badgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "badge not found")
			return
		}
		h.log.Error().Err(err).Uint("badge_id", badgeID).Msg("Failed to load badge")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load badge")
		return
	}

	c.JSON(http.StatusOK, gin.H{"badge": badge, "holders": holders})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
