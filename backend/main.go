package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"progresshub/backend/cache"
	"progresshub/backend/config"
	"progresshub/backend/routes"
	"progresshub/backend/services"
	"progresshub/backend/storage"
	"progresshub/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Error("database init failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Error("upload dir init failed", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}
	cleaner := storage.NewCleaner(files, logger)

	var portfolioCache cache.PortfolioCache = cache.NopPortfolioCache{}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisPortfolioCache(ctx, cfg.RedisURL, cfg.PortfolioTTL)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, portfolio cache disabled", "error", err)
		} else {
			defer redisCache.Close()
			portfolioCache = redisCache
		}
	}

	svc := services.New(db, logger, services.SystemClock, cleaner, portfolioCache)

	app := routes.NewApp(cfg, logger)
	routes.SetupRoutes(app, routes.Deps{
		Cfg:      cfg,
		Log:      logger,
		Services: svc,
		Files:    files,
		Cleaner:  cleaner,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Warn("shutdown", "error", err)
		}
	}()

	logger.Info("listening", "port", cfg.ServerPort, "db", cfg.DBDriver)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Error("server stopped", "error", err)
	}
	cleaner.Wait()
}
