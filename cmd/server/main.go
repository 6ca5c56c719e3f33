// Package main provides the API server entry point for the staking dashboard service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stake-dashboard/internal/api"
	"github.com/stake-dashboard/internal/cache"
	"github.com/stake-dashboard/internal/config"
	"github.com/stake-dashboard/internal/explorer"
	"github.com/stake-dashboard/internal/logging"
	"github.com/stake-dashboard/internal/market"
	"github.com/stake-dashboard/internal/rewards"
	"github.com/stake-dashboard/internal/tracker"
	"github.com/stake-dashboard/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Explorer client
	explorerClient := explorer.NewClient(explorer.Config{
		BaseURL:           cfg.Explorer.BaseURL,
		Timeout:           cfg.Explorer.Timeout,
		RequestsPerSecond: cfg.Explorer.RequestsPerSecond,
		Burst:             cfg.Explorer.Burst,
	}, logger)

	// Reward service with per-endpoint memoizers
	rewardsCache := cache.NewMemoizer[[]rewards.AddressRewards](cfg.Cache.MaxEntries, cfg.Cache.RewardsTTL)
	earnedCache := cache.NewMemoizer[[]rewards.AddressEarned](cfg.Cache.MaxEntries, cfg.Cache.EarnedTTL)
	rewardService := rewards.NewService(explorerClient, rewardsCache, earnedCache, rewards.Config{
		PageLimit:      cfg.Explorer.PageLimit,
		WindowMaxPages: cfg.Explorer.WindowMaxPages,
		SinceMaxPages:  cfg.Explorer.SinceMaxPages,
	})

	// Tracker store: Redis when configured, in-memory otherwise
	var trackerStore tracker.Store
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()
		trackerStore = tracker.NewRedisStore(redisClient)
		logger.WithField("addr", cfg.Redis.Addr).Info("Tracker state persisted in Redis")
	} else {
		trackerStore = tracker.NewMemoryStore()
		logger.Info("Tracker state held in memory")
	}

	loc, err := time.LoadLocation(cfg.Tracker.Timezone)
	if err != nil {
		logger.WithError(err).WithField("timezone", cfg.Tracker.Timezone).Warn("Invalid timezone, using local")
		loc = time.Local
	}
	trackerService := tracker.NewService(trackerStore, rewardService, loc)

	// Optional background refresh loop for the tracker
	var refreshWorker *worker.RefreshWorker
	if cfg.Tracker.RefreshInterval > 0 {
		refreshWorker = worker.NewRefreshWorker(trackerService, cfg.Tracker.RefreshInterval, logger)
		refreshWorker.Start()
		defer refreshWorker.Stop()
	}

	// Market pass-through with its own memoizer
	marketClient := market.NewClient(market.Config{
		PriceBaseURL: cfg.Market.PriceBaseURL,
		QuoteBaseURL: cfg.Market.QuoteBaseURL,
		Timeout:      cfg.Market.Timeout,
	}, logger)
	marketCache := cache.NewMemoizer[json.RawMessage](cfg.Cache.MaxEntries, cfg.Market.CacheTTL)
	marketService := market.NewService(marketClient, marketCache)

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	server := api.NewServer(serverConfig, rewardService, trackerService, marketService, logger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
