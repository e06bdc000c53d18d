// Command server runs the critical-thinking training platform API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crithinklab/crithink/internal/api"
	dashboardapi "github.com/crithinklab/crithink/internal/api/dashboard"
	dialogueapi "github.com/crithinklab/crithink/internal/api/dialogue"
	questionnaireapi "github.com/crithinklab/crithink/internal/api/questionnaire"
	"github.com/crithinklab/crithink/internal/cache"
	"github.com/crithinklab/crithink/internal/config"
	"github.com/crithinklab/crithink/internal/llm"
	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/internal/notify"
	"github.com/crithinklab/crithink/internal/repository"
	"github.com/crithinklab/crithink/internal/scheduler"
	"github.com/crithinklab/crithink/internal/service/badges"
	"github.com/crithinklab/crithink/internal/service/dialogue"
	"github.com/crithinklab/crithink/internal/service/leaderboard"
	"github.com/crithinklab/crithink/internal/service/scoring"
	"github.com/crithinklab/crithink/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info().Str("environment", cfg.Server.Environment).Msg("Starting crithink server")

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisClient, err := cache.NewRedisClient(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	lbCache := cache.NewLeaderboardCache(redisClient)

	ctx := context.Background()
	provider, err := llm.NewGeminiProvider(ctx, &cfg.AI, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize generative-text backend")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	// Services
	notifier := notify.NewClient(&cfg.Notifications, log)
	badgeService := badges.NewService(badgeRepo, log)
	scoringService := scoring.NewService(questionRepo, responseRepo, log)
	dialogueService := dialogue.NewService(provider, badgeService, progressRepo, notifier, cfg, log)
	leaderboardService := leaderboard.NewService(progressRepo, badgeRepo, userRepo, lbCache, log)

	seedReferenceData(cfg, questionRepo, badgeService, log)

	// Daily maintenance job
	schedulerService := scheduler.NewService(&cfg.Scheduler, leaderboardService, badgeService, notifier, log)
	if err := schedulerService.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer schedulerService.Stop()

	router := api.NewRouter(&api.Container{
		Dialogue:      dialogueapi.NewHandler(dialogueService, log),
		Questionnaire: questionnaireapi.NewHandler(scoringService, log),
		Dashboard:     dashboardapi.NewHandler(leaderboardService, badgeService, log),
		DB:            db,
		Config:        cfg,
		Log:           log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// seedReferenceData loads the configured question set and badge catalog.
// Both seeds are idempotent, so restarting the server is safe.
func seedReferenceData(
	cfg *config.Config,
	questionRepo *repository.QuestionRepository,
	badgeService *badges.Service,
	log *logger.Logger,
) {
	if len(cfg.Questionnaire.Questions) > 0 {
		questions := make([]models.ScaleQuestion, 0, len(cfg.Questionnaire.Questions))
		for _, q := range cfg.Questionnaire.Questions {
			questions = append(questions, models.ScaleQuestion{
				Position:   q.Position,
				Text:       q.Text,
				IsReversed: q.Reversed,
			})
		}
		if err := questionRepo.Seed(questions); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed questionnaire")
		}
		log.Info().Int("questions", len(questions)).Msg("Questionnaire seeded")
	}

	if len(cfg.Badges) > 0 {
		catalog := make([]models.Badge, 0, len(cfg.Badges))
		for _, b := range cfg.Badges {
			catalog = append(catalog, models.Badge{
				Name:        b.Name,
				Title:       b.Title,
				Description: b.Description,
				ImageRef:    b.ImageRef,
			})
		}
		if err := badgeService.SeedCatalog(catalog); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed badge catalog")
		}
	}
}
