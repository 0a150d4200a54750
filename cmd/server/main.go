package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/stitts-dev/fanta-optimizer/internal/api"
	"github.com/stitts-dev/fanta-optimizer/internal/models"
	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
	"github.com/stitts-dev/fanta-optimizer/internal/services"
	"github.com/stitts-dev/fanta-optimizer/pkg/config"
	"github.com/stitts-dev/fanta-optimizer/pkg/database"
	"github.com/stitts-dev/fanta-optimizer/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	optOptions, err := cfg.OptimizerOptions()
	if err != nil {
		log.Fatalf("Invalid optimizer options: %v", err)
	}
	rosterOptimizer := optimizer.New(optOptions, log)

	// Build history is optional
	var db *database.DB
	var history *services.HistoryService
	var retention *services.RetentionService
	if cfg.DatabaseURL != "" {
		db, err = database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.AutoMigrate(&models.BuildRecord{}); err != nil {
			log.Fatalf("Failed to migrate build history: %v", err)
		}
		history = services.NewHistoryService(db, log)
		retention = services.NewRetentionService(history, cfg.HistoryRetention, cfg.RetentionSchedule, log)
		if err := retention.Start(); err != nil {
			log.Errorf("Failed to start history retention: %v", err)
		}
		defer retention.Stop()
	} else {
		log.Warn("DATABASE_URL not set, build history disabled")
	}

	// Result cache is optional
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ExternalAPITimeout)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warnf("Redis unreachable, cache will recover through its circuit breaker: %v", err)
		}
		cancel()
		defer redisClient.Close()
	} else {
		log.Warn("REDIS_URL not set, result cache disabled")
	}
	cache := services.NewCacheService(redisClient, cfg.CacheTTL, cfg.CircuitBreakerThreshold, cfg.ExternalAPITimeout, log)

	router := api.NewRouter(api.Dependencies{
		Config:    cfg,
		DB:        db,
		Cache:     cache,
		History:   history,
		Optimizer: rosterOptimizer,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
