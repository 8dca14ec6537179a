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

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/config"
	"github.com/Dosada05/chess-tournament/db"
	"github.com/Dosada05/chess-tournament/handlers"
	"github.com/Dosada05/chess-tournament/repositories"
	api "github.com/Dosada05/chess-tournament/routes"
	"github.com/Dosada05/chess-tournament/services"
	"github.com/Dosada05/chess-tournament/storage"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

// @title       Chess Tournament API
// @version     1.0
// @description Four-player round-robin chess tournaments.
// @BasePath    /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("store", cfg.StoreDriver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := db.OpenDocumentStore(ctx, cfg.StoreDriver, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to open record store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("R2 is not configured, completed tournaments will not be archived")
	}

	wsHub := brackets.NewHub(logger.With(slog.String("component", "hub")))
	go wsHub.Run(ctx)

	tournamentRepo := repositories.NewTournamentRepository(store)
	roundRepo := repositories.NewRoundRepository(store)
	playerRepo := repositories.NewPlayerRepository(store)

	playerService := services.NewPlayerService(playerRepo, logger)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		roundRepo,
		brackets.NewRoundRobinGenerator(),
		playerService,
		uploader,
		wsHub,
		logger,
	)
	authService := services.NewAuthService(cfg.OrganizerUsername, cfg.OrganizerPasswordHash, logger)
	if !authService.Enabled() {
		logger.Warn("ORGANIZER_PASSWORD_HASH is not set, organizer login is disabled")
	}

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecret: []byte(cfg.JWTSecretKey), AllowedOrigins: cfg.CORSAllowedOrigins},
		handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		handlers.NewTournamentHandler(tournamentService),
		handlers.NewPlayerHandler(playerService),
		handlers.NewWebSocketHandler(wsHub, tournamentService),
	)

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

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
