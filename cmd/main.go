package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/traldis/court-queue/config"
	"github.com/traldis/court-queue/db"
	"github.com/traldis/court-queue/handlers"
	"github.com/traldis/court-queue/middleware"
	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/queue"
	"github.com/traldis/court-queue/realtime"
	"github.com/traldis/court-queue/repositories"
	"github.com/traldis/court-queue/repositories/memory"
	api "github.com/traldis/court-queue/routes"
	"github.com/traldis/court-queue/services"
	"github.com/traldis/court-queue/storage"
)

const schedulerInterval = 5 * time.Minute // How often past events are swept

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Bool("demo_mode", cfg.DemoMode))

	var (
		eventRepo   repositories.EventRepository
		playerRepo  repositories.PlayerRepository
		teamRepo    repositories.TeamRepository
		matchRepo   repositories.MatchRepository
		contactRepo repositories.ContactRepository
		photoRepo   repositories.PhotoRepository
		feed        db.ChangeFeed
	)

	if cfg.DemoMode && cfg.DatabaseURL == "" {
		store := memory.NewStore()
		defer store.Close()
		store.SeedEvent(models.Event{
			ID:        uuid.NewString(),
			Title:     "Demo Run",
			Date:      time.Now().Format("2006-01-02"),
			Status:    models.EventStatusActive,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		})
		eventRepo = store.Events
		playerRepo = store.Players
		teamRepo = store.Teams
		matchRepo = store.Matches
		feed = store
		logger.Info("running on the in-memory store, data will not survive a restart")
	} else {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			}
		}()
		logger.Info("database connection established")

		listener, err := db.NewListener(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to start change listener", slog.Any("error", err))
			os.Exit(1)
		}
		defer listener.Close()
		feed = listener

		eventRepo = repositories.NewPostgresEventRepository(dbConn)
		playerRepo = repositories.NewPostgresPlayerRepository(dbConn)
		teamRepo = repositories.NewPostgresTeamRepository(dbConn)
		matchRepo = repositories.NewPostgresMatchRepository(dbConn)
		contactRepo = repositories.NewPostgresContactRepository(dbConn)
		photoRepo = repositories.NewPostgresPhotoRepository(dbConn)
	}
	logger.Info("repositories initialized")

	var uploader storage.FileUploader
	r2cfg := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2cfg.Complete() {
		uploader, err = storage.NewCloudflareR2Uploader(r2cfg)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("object storage not configured, photo uploads disabled")
	}

	var emailService *services.EmailService
	emailCfg := services.EmailConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
		To:   cfg.ContactInbox,
	}
	if emailCfg.Enabled() {
		emailService = services.NewEmailService(emailCfg)
		logger.Info("SMTP notifications enabled")
	}

	hub := realtime.NewHub(logger)
	go hub.Run()

	engine := queue.NewEngine(nil, nil)
	queueService := services.NewQueueService(engine, eventRepo, playerRepo, teamRepo, matchRepo, feed, hub, logger)
	authService := services.NewAuthService(cfg.AdminPasswordHash, cfg.SessionSecret, nil)
	eventService := services.NewEventService(eventRepo, queueService, cfg.PublicBaseURL, nil, logger)
	mediaService := services.NewMediaService(photoRepo, eventRepo, uploader, logger)
	contactService := services.NewContactService(contactRepo, emailService, cfg.ContactInbox, logger)
	logger.Info("services initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go queueService.Run(ctx)

	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("event finish scheduler started", slog.Duration("interval", schedulerInterval))

		if err := eventService.AutoFinishPastEvents(ctx); err != nil {
			logger.Error("scheduler: initial sweep failed", slog.Any("error", err))
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := eventService.AutoFinishPastEvents(ctx); err != nil {
					logger.Error("scheduler: sweep failed", slog.Any("error", err))
				}
			}
		}
	}()

	eventHandler := handlers.NewEventHandler(eventService)
	queueHandler := handlers.NewQueueHandler(queueService)
	adminHandler := handlers.NewAdminHandler(queueService)
	authHandler := handlers.NewAuthHandler(authService)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	contactHandler := handlers.NewContactHandler(contactService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, queueService, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.CORSAllowedOrigins,
		middleware.AdminOnly(authService, logger),
		eventHandler,
		queueHandler,
		adminHandler,
		authHandler,
		mediaHandler,
		contactHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
