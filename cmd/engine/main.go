package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shortsforge/automation-engine/internal/ai"
	"github.com/shortsforge/automation-engine/internal/api"
	"github.com/shortsforge/automation-engine/internal/automation"
	"github.com/shortsforge/automation-engine/internal/config"
	"github.com/shortsforge/automation-engine/internal/events"
	"github.com/shortsforge/automation-engine/internal/logging"
	"github.com/shortsforge/automation-engine/internal/media"
	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/shortsforge/automation-engine/internal/monitoring"
	"github.com/shortsforge/automation-engine/internal/notifications"
	"github.com/shortsforge/automation-engine/internal/scheduler"
	"github.com/shortsforge/automation-engine/internal/stats"
	"github.com/shortsforge/automation-engine/internal/storage"
	"github.com/shortsforge/automation-engine/internal/youtube"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile := logging.Setup(cfg.Debug, cfg.LogFile)
	defer logFile.Close()

	logrus.Info("Starting Shorts automation engine")

	ctx := context.Background()

	storageClient, err := storage.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	if closer, ok := storageClient.(io.Closer); ok {
		defer closer.Close()
	}

	notificationService := notifications.NewService(cfg)
	monitoringService := monitoring.NewService(cfg, storageClient, notificationService)

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logrus.Errorf("Video events disabled: %v", err)
		} else {
			publisher = kafka
		}
	}
	defer publisher.Close()

	synthesizer, err := media.NewSynthesizer(media.NewFFmpegEncoder(""))
	if err != nil {
		logrus.Fatalf("Failed to initialize renderer: %v", err)
	}

	youtubeClient := youtube.NewClient(cfg.YouTubeAPIBaseURL, cfg.YouTubeUploadBaseURL)
	aiService := ai.NewService(ai.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.ContentModel, cfg.ImageModel))

	deps := automation.Deps{
		Store:    storage.NewStateStore(storageClient),
		AI:       aiService,
		YouTube:  youtubeClient,
		Renderer: synthesizer,
		Stats:    stats.NewAggregator(youtubeClient),
		Recorder: monitoringService,
		Events:   publisher,
	}
	if cfg.ArchiveRenders {
		deps.Archive = storageClient
	}

	hook := automation.New(deps, automation.Options{
		Interval:       cfg.AutomationInterval,
		FailureBackoff: cfg.FailureBackoff,
	})

	if cfg.DefaultTopic != "" && hook.Snapshot().VideoTopic == models.DefaultTopic {
		hook.SetVideoTopic(cfg.DefaultTopic)
	}

	tokens := youtube.NewTokenStore(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.TokenFile)

	startCtx, cancelStart := context.WithTimeout(ctx, 2*time.Minute)
	if err := startEngine(startCtx, hook, tokens); err != nil {
		logrus.Errorf("Engine started disconnected: %v", err)
		alert := &models.Alert{
			ID:        uuid.NewString(),
			Type:      "warning",
			Title:     "YouTube reconnect failed",
			Message:   err.Error(),
			CreatedAt: time.Now(),
		}
		if notificationService.Enabled() {
			if err := notificationService.SendAlert(alert); err != nil {
				logrus.Errorf("Failed to send alert: %v", err)
			}
		}
	}
	cancelStart()

	schedulerService := scheduler.NewService()
	if err := registerJobs(cfg, schedulerService, hook, tokens); err != nil {
		logrus.Fatalf("Failed to configure scheduler: %v", err)
	}
	schedulerService.Start()
	defer schedulerService.Stop()

	handler := api.NewHandler(hook, monitoringService)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	if err := hook.Close(shutdownCtx); err != nil {
		logrus.Errorf("Engine forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

// startEngine connects with the OAuth token file when one is configured, and
// otherwise resumes the persisted session.
func startEngine(ctx context.Context, hook *automation.Hook, tokens *youtube.TokenStore) error {
	token, err := tokens.AccessToken(ctx)
	switch {
	case errors.Is(err, youtube.ErrNoStoredToken):
		return hook.Start(ctx)
	case err != nil:
		logrus.Warnf("Stored OAuth token unusable: %v", err)
		return hook.Start(ctx)
	}

	state := hook.Snapshot()
	if state.YouTube.Connected && state.YouTube.AccessToken == token {
		return hook.Start(ctx)
	}
	return hook.ConnectSuccess(ctx, token)
}

func registerJobs(cfg *config.Config, svc *scheduler.Service, hook *automation.Hook, tokens *youtube.TokenStore) error {
	err := svc.AddJob(scheduler.Job{
		Name:     "stats-reconciliation",
		Schedule: cfg.StatsSchedule,
		Run: func() error {
			if !hook.Snapshot().YouTube.Connected {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			return hook.RefreshStats(ctx)
		},
	})
	if err != nil {
		return err
	}

	if !cfg.OAuthConfigured() {
		return nil
	}

	return svc.AddJob(scheduler.Job{
		Name:     "token-refresh",
		Schedule: cfg.TokenRefreshSchedule,
		Run: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			token, err := tokens.AccessToken(ctx)
			if err != nil {
				return err
			}
			if hook.SetAccessToken(token) {
				logrus.Info("Engine switched to refreshed access token")
			}
			return nil
		},
	})
}
