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

	"github.com/zgamesdev/zgames-backend/config"
	"github.com/zgamesdev/zgames-backend/db"
	"github.com/zgamesdev/zgames-backend/handlers"
	"github.com/zgamesdev/zgames-backend/realtime"
	"github.com/zgamesdev/zgames-backend/repositories"
	"github.com/zgamesdev/zgames-backend/routes"
	"github.com/zgamesdev/zgames-backend/services"
	"github.com/zgamesdev/zgames-backend/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

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

	// Кэш лидерборда опционален: без Redis сборка идёт на каждый запрос.
	var leaderboardCache services.LeaderboardCache
	if cfg.RedisAddr != "" {
		redisClient, err := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisClient.Close()
		leaderboardCache = services.NewRedisLeaderboardCache(redisClient, cfg.LeaderboardTTL)
		logger.Info("redis leaderboard cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	// Хранилище логотипов опционально.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	}

	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	animalRepo := repositories.NewPostgresAnimalRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(userRepo)
	catalogService := services.NewCatalogService(animalRepo, gameRepo)
	tournamentService := services.NewTournamentService(
		dbConn, tournamentRepo, teamRepo, playerRepo, animalRepo, scoreRepo, leaderboardCache, logger,
	)
	teamService := services.NewTeamService(
		dbConn, teamRepo, playerRepo, scoreRepo, tournamentRepo, uploader, leaderboardCache, logger,
	)
	playerService := services.NewPlayerService(
		dbConn, playerRepo, teamRepo, animalRepo, scoreRepo, leaderboardCache, logger,
	)
	scoringService := services.NewScoringService(
		dbConn, tournamentRepo, gameRepo, scoreRepo, wsHub, leaderboardCache, logger,
	)
	leaderboardService := services.NewLeaderboardService(
		tournamentRepo, teamRepo, playerRepo, gameRepo, scoreRepo, uploader, leaderboardCache, logger,
	)
	logger.Info("services initialized")

	router := routes.SetupRoutes(routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.TokenTTL),
		Catalog:     handlers.NewCatalogHandler(catalogService),
		Tournament:  handlers.NewTournamentHandler(tournamentService),
		Team:        handlers.NewTeamHandler(teamService),
		Player:      handlers.NewPlayerHandler(playerService),
		Scoring:     handlers.NewScoringHandler(scoringService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, logger),
	}, cfg.JWTSecretKey)
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
	logger.Info("application exited")
}
