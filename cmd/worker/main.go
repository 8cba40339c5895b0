package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/domain"
	"github.com/creatorly/styletrain/internal/logger"
	"github.com/creatorly/styletrain/internal/media"
	"github.com/creatorly/styletrain/internal/pipeline"
	"github.com/creatorly/styletrain/internal/repository"
	"github.com/creatorly/styletrain/internal/service"
	"github.com/creatorly/styletrain/internal/storage"
)

// One-shot training runner: creates a job row for the given user and runs
// the pipeline in the foreground. Useful for operations and debugging
// without going through the API queue.
func main() {
	appLogger := logger.New(logger.DefaultConfig())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	userID := flag.String("user", "", "User ID to train for")
	urls := flag.String("urls", "", "Comma-separated video URLs (at least 3)")
	retrain := flag.Bool("retrain", false, "Mark the run as a retraining")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *userID == "" || *urls == "" {
		appLogger.Fatal("Both -user and -urls are required")
	}
	videoURLs := strings.Split(*urls, ",")

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

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
		appLogger.WithError(err).Warn("Vector index unavailable, skipping similarity indexing")
	} else {
		defer vectorRepo.Close()
		if err := vectorRepo.EnsureCollection(ctx); err != nil {
			appLogger.WithError(err).Warn("Failed to ensure vector collection, skipping similarity indexing")
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
		appLogger.WithError(err).Fatal("Media tooling missing")
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

	job := &domain.TrainingJob{
		ID:           uuid.NewString(),
		UserID:       *userID,
		VideoURLs:    videoURLs,
		IsRetraining: *retrain,
		Status:       domain.JobStatusQueued,
	}
	if err := jobRepo.Create(ctx, job); err != nil {
		appLogger.WithError(err).Fatal("Failed to create training job")
	}

	appLogger.WithFields(logger.Fields{
		"job_id":  job.ID,
		"user_id": job.UserID,
		"videos":  len(videoURLs),
	}).Info("Starting training run")

	if err := pipe.Run(ctx, job); err != nil {
		appLogger.WithError(err).Fatal("Training run failed")
	}
	appLogger.WithField("job_id", job.ID).Info("Training run completed")
}
