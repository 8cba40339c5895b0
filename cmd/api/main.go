package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creatorly/styletrain/internal/api"
	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/logger"
	"github.com/creatorly/styletrain/internal/media"
	"github.com/creatorly/styletrain/internal/pipeline"
	"github.com/creatorly/styletrain/internal/queue"
	"github.com/creatorly/styletrain/internal/repository"
	"github.com/creatorly/styletrain/internal/service"
	"github.com/creatorly/styletrain/internal/storage"
)

func main() {
	appLogger := logger.New(logger.DefaultConfig())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Provider credentials are re-checked per run; a missing key here means
	// every job will fail its validating stage, so say so up front.
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Warn("Configuration incomplete, training jobs will fail until fixed")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	jobRepo := repository.NewJobRepository(db)
	credRepo := repository.NewCredentialRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	styleRepo := repository.NewStyleRepository(db)
	voiceRepo := repository.NewVoiceRepository(db)

	ctx := context.Background()

	// The vector index only serves similarity lookups; run without it
	// rather than refusing to start.
	var vectors pipeline.VectorIndex
	vectorRepo, err := repository.NewVectorRepository(&repository.VectorConnectionConfig{
		Host:            cfg.Qdrant.Host,
		Port:            cfg.Qdrant.Port,
		Collection:      cfg.Qdrant.Collection,
		APIKey:          cfg.Qdrant.APIKey,
		UseTLS:          cfg.Qdrant.UseTLS,
		VectorDimension: cfg.Embedding.Dimensions,
	})
	if err != nil {
		appLogger.WithError(err).Warn("Vector index unavailable, similarity search disabled")
	} else {
		defer vectorRepo.Close()
		if err := vectorRepo.EnsureCollection(ctx); err != nil {
			appLogger.WithError(err).Warn("Failed to ensure vector collection, similarity search disabled")
		} else {
			vectors = vectorRepo
		}
	}

	objectStorage, err := storage.New(&cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	extractor := media.NewExtractor("", "")
	if err := extractor.CheckDependencies(); err != nil {
		appLogger.WithError(err).Warn("Media tooling missing, asset extraction will fail")
	}

	pipe := pipeline.New(pipeline.Deps{
		Config:      cfg,
		Jobs:        jobRepo,
		Credentials: credRepo,
		Profiles:    profileRepo,
		Styles:      styleRepo,
		Voices:      voiceRepo,
		Vectors:     vectors,
		Tokens:      service.NewTokenService(&cfg.OAuth),
		Videos:      service.NewVideoService(&cfg.VideoAPI),
		Extractor:   extractor,
		Inference:   service.NewInferenceService(&cfg.Inference, &cfg.Embedding),
		Voice:       service.NewVoiceService(&cfg.Voice),
		Store:       storage.NewAudioArchive(objectStorage),
	})

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	trainQueue := queue.New(pipe, cfg.Training.Workers, cfg.Training.QueueSize)
	trainQueue.Start(workerCtx)

	router := api.SetupRouter(&cfg.Server, jobRepo, styleRepo, trainQueue)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":    cfg.Server.Port,
			"mode":    cfg.Server.Mode,
			"workers": cfg.Training.Workers,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	// Let in-flight training runs finish before exiting.
	trainQueue.Shutdown()
	cancelWorkers()

	appLogger.Info("Server exited")
}
