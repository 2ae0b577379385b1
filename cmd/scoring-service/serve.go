package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/scoring-service/internal/cache"
	"github.com/SAP-F-2025/scoring-service/internal/config"
	"github.com/SAP-F-2025/scoring-service/internal/handlers"
	"github.com/SAP-F-2025/scoring-service/internal/repositories/memory"
	"github.com/SAP-F-2025/scoring-service/internal/repositories/postgres"
	redisrepo "github.com/SAP-F-2025/scoring-service/internal/repositories/redis"
	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
	"github.com/SAP-F-2025/scoring-service/internal/validator"
	"github.com/SAP-F-2025/scoring-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scoring service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(commandContext(cmd))
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := utils.NewLogger(cfg.Environment, os.Stdout)
	slogger := utils.ToSlogLogger(logger)

	presets, err := config.LoadPresets(cfg.AreaPresetsFile)
	if err != nil {
		return fmt.Errorf("load area presets: %w", err)
	}

	deps := services.Dependencies{
		Presets:   presets,
		Validator: validator.New(presets.Names()...),
		Logger:    slogger,
	}

	var redisClient *redis.Client
	switch cfg.SessionStore {
	case "redis":
		client, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
		deps.Sessions = redisrepo.NewSessionRedis(client, cfg.SessionTTL)
		deps.Cache = cache.NewRedisCache(client, logger)
		logger.Info("Using Redis session store", "ttl", cfg.SessionTTL.String())
	default:
		deps.Sessions = memory.NewSessionMemory()
		deps.Cache = cache.NewMemoryCache()
		logger.Info("Using in-memory session store")
	}

	if cfg.ScoreArchive == "postgres" {
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return err
		}
		if err := postgres.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate score runs: %w", err)
		}
		deps.Runs = postgres.NewScoreRunPostgreSQL(db)
		logger.Info("Score run archive enabled")
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	if publisher != nil {
		defer publisher.Close()
		deps.Publisher = publisher
	}

	svc := services.NewScoringService(deps, services.ScoringServiceConfig{
		PointsPerCorrect: &cfg.DefaultPointsPerCorrect,
		PassingScore:     &cfg.PassingScore,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.NewHandlerManager(svc, logger), logger, handlers.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		TrustedProxies: cfg.TrustedProxies,
		RateLimitRedis: redisClient,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-quit:
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
