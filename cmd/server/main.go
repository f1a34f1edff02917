package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/effectiveclass/classlens/internal/ai"
	"github.com/effectiveclass/classlens/internal/api"
	"github.com/effectiveclass/classlens/internal/config"
	"github.com/effectiveclass/classlens/internal/database"
	"github.com/effectiveclass/classlens/internal/media"
	"github.com/effectiveclass/classlens/internal/processing"
	"github.com/effectiveclass/classlens/internal/storage"
	"github.com/effectiveclass/classlens/internal/transcribe"
	"github.com/effectiveclass/classlens/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	localStorage, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}

	db, err := database.NewDB(database.Config{
		Type:       cfg.DBType,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		Name:       cfg.DBName,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	videoRepo := database.NewVideoRepository(db)
	feedbackRepo := database.NewFeedbackRepository(db)
	taskRepo := database.NewTaskRepository(db)

	audioExtractor, err := media.NewFFmpegAudioExtractor(cfg.UploadDir)
	if err != nil {
		logrus.Fatalf("Audio extraction unavailable: %v", err)
	}
	frameSource, err := media.NewFFmpegFrameSource()
	if err != nil {
		logrus.Fatalf("Frame extraction unavailable: %v", err)
	}

	analyzer := vision.NewAnalyzer(frameSource, vision.NewLandmarkClient(cfg.LandmarkBaseURL))

	whisper := transcribe.NewWhisperClient(transcribe.WhisperConfig{
		BaseURL:             cfg.WhisperBaseURL,
		APIKey:              cfg.WhisperAPIKey,
		Model:               cfg.WhisperModel,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	})

	generator := ai.NewGenerator(
		ai.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL),
		ai.GeneratorConfig{
			APIKey:         cfg.OpenRouterAPIKey,
			PrimaryModel:   cfg.PrimaryModel,
			SecondaryModel: cfg.SecondaryModel,
			Primary:        ai.RetryPolicy{MaxAttempts: cfg.PrimaryMaxAttempts, BaseDelay: cfg.PrimaryRetryDelay},
			Secondary:      ai.RetryPolicy{MaxAttempts: cfg.SecondaryMaxAttempts, BaseDelay: cfg.SecondaryRetryDelay},
		},
	)

	pipeline := processing.NewPipeline(
		videoRepo, feedbackRepo, taskRepo,
		audioExtractor, whisper, analyzer, generator,
	)

	app := &api.App{
		Storage:       localStorage,
		VideoRepo:     videoRepo,
		FeedbackRepo:  feedbackRepo,
		TaskRepo:      taskRepo,
		Pipeline:      pipeline,
		MaxUploadSize: cfg.MaxUploadSize,
	}

	router := api.NewRouter(app)

	logrus.Infof("Server starting on %s", cfg.Address)
	logrus.Infof("Upload directory: %s", cfg.UploadDir)
	logrus.Infof("Database type: %s", cfg.DBType)
	if cfg.OpenRouterAPIKey == "" {
		logrus.Warn("OPENROUTER_API_KEY not set, feedback will fall back to templates")
	}

	if err := http.ListenAndServe(cfg.Address, router); err != nil {
		logrus.Fatal(err)
	}
}
