// Package api assembles the HTTP router from the individual handlers.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crithinklab/crithink/internal/api/dashboard"
	"github.com/crithinklab/crithink/internal/api/dialogue"
	"github.com/crithinklab/crithink/internal/api/middleware"
	"github.com/crithinklab/crithink/internal/config"
	"github.com/crithinklab/crithink/internal/repository"
	"github.com/crithinklab/crithink/pkg/logger"

	questionnaireapi "github.com/crithinklab/crithink/internal/api/questionnaire"
)

// Container holds the handlers and infrastructure the router exposes.
type Container struct {
	Dialogue      *dialogue.Handler
	Questionnaire *questionnaireapi.Handler
	Dashboard     *dashboard.Handler
	DB            *repository.DB
	Config        *config.Config
	Log           *logger.Logger
}

// NewRouter builds the gin engine with middleware, API routes, the health
// endpoint and the Prometheus exporter.
func NewRouter(c *Container) *gin.Engine {
	if c.Config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(c.Log))
	r.Use(middleware.Recovery(c.Log))

	r.GET("/healthz", func(ctx *gin.Context) {
		if err := c.DB.Health(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if c.Config.Metrics.Prometheus.Enabled {
		r.GET(c.Config.Metrics.Prometheus.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/dialogue/:mode/turns", c.Dialogue.TakeTurn)

		v1.GET("/questionnaire/questions", c.Questionnaire.GetQuestions)
		v1.POST("/questionnaire/responses", c.Questionnaire.SubmitResponses)
		v1.GET("/questionnaire/users/:user_id/score", c.Questionnaire.GetScore)

		v1.GET("/dashboard/leaderboard", c.Dashboard.GetLeaderboard)
		v1.GET("/dashboard/users/:user_id/stats", c.Dashboard.GetUserStats)
		v1.GET("/dashboard/users/:user_id/badges", c.Dashboard.GetUserBadges)
		v1.GET("/dashboard/badges", c.Dashboard.GetBadgeCatalog)
		v1.GET("/dashboard/badges/:badge_id", c.Dashboard.GetBadge)
	}

	return r
}
