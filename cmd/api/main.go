package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Batman16012001/Locally-Connector-New/internal/aws"
	"github.com/Batman16012001/Locally-Connector-New/internal/cache"
	"github.com/Batman16012001/Locally-Connector-New/internal/config"
	"github.com/Batman16012001/Locally-Connector-New/internal/controller"
	"github.com/Batman16012001/Locally-Connector-New/internal/database"
	"github.com/Batman16012001/Locally-Connector-New/internal/ingest"
	"github.com/Batman16012001/Locally-Connector-New/internal/orchestrator"
	"github.com/Batman16012001/Locally-Connector-New/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	configPath := "config.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	if err := db.Health(); err != nil {
		log.Fatal().Err(err).Msg("MongoDB is not reachable")
	}
	log.Info().Str("db", cfg.MongoDB.DB).Msg("Connected to MongoDB")

	var redisCache cache.Cache
	if cfg.Redis.Address != "" {
		redisCache, err = cache.NewRedisCache(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
	} else {
		log.Warn().Msg("Redis not configured; rate limiting disabled")
	}

	var fileService aws.FileService
	if cfg.S3.Enabled {
		fileService, err = aws.NewFileService(cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.Region)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 file service")
		}
		if err := fileService.TestConnection(); err != nil {
			log.Fatal().Err(err).Msg("S3 bucket is not reachable")
		}
	}

	executor := orchestrator.NewExecutor(cfg.Ingest.Workers, cfg.Ingest.QueueDepth)

	jc := controller.NewJobController(db, redisCache, fileService)
	pipeline := ingest.NewPipeline(db, jc, cfg.Ingest.ChunkSize)
	ic := controller.NewIngestController(jc, pipeline, executor, fileService, cfg.Ingest)
	sc := controller.NewServer(db, redisCache)

	srv := server.New(cfg, sc, jc, ic, redisCache)

	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Drain queued ingestion runs before closing the stores they write to.
	executor.Shutdown()

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
	if err := db.Close(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to close MongoDB client")
	}
}
