package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"personalizer/internal/config"
	"personalizer/internal/engine"
	"personalizer/internal/langadvisor"
	"personalizer/internal/oracle"
	"personalizer/internal/prefmemory"
	"personalizer/internal/repository"
	"personalizer/internal/server"
	"personalizer/internal/voicemodel"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Initialize repositories
	voiceRepo := repository.NewVoiceProfileRepository(db, logger)
	prefRepo := repository.NewPreferenceRepository(db, logger)
	postRepo := repository.NewPostRepository(db, logger)

	// Initialize oracle client
	orc, err := oracle.NewClient(oracle.Config{
		BaseURL:    cfg.Oracle.BaseURL,
		APIKey:     cfg.Oracle.APIKey,
		ModelName:  cfg.Oracle.ModelName,
		MaxRetries: cfg.Oracle.MaxRetries,
		RetryDelay: time.Duration(cfg.Oracle.RetryDelay) * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize oracle client", zap.Error(err))
	}

	// Initialize engine components
	voice := voicemodel.NewVoiceModel(voiceRepo, orc, cfg.Engine, logger)
	memory := prefmemory.NewMemory(prefRepo, cfg.Engine, logger)
	advisor := langadvisor.NewAdvisor(postRepo, cfg.Engine, logger)
	eng := engine.NewEngine(voice, memory, advisor, prefRepo, postRepo, logger)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize and run the server
	srv := server.NewServer(eng, logger)
	go srv.Run(cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}
