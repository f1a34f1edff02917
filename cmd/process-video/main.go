package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/effectiveclass/classlens/internal/ai"
	"github.com/effectiveclass/classlens/internal/config"
	"github.com/effectiveclass/classlens/internal/database"
	"github.com/effectiveclass/classlens/internal/media"
	"github.com/effectiveclass/classlens/internal/models"
	"github.com/effectiveclass/classlens/internal/processing"
	"github.com/effectiveclass/classlens/internal/storage"
	"github.com/effectiveclass/classlens/internal/transcribe"
	"github.com/effectiveclass/classlens/internal/vision"
)

// process-video runs the full pipeline on a local video file and prints the
// generated feedback, without going through the HTTP server.
func main() {
	videoPath := flag.String("video", "", "path to the video file")
	subject := flag.String("subject", string(models.SubjectOther), "lesson subject")
	theme := flag.String("theme", "", "lesson theme")
	language := flag.String("language", string(models.LanguageRussian), "feedback language (en, ru, tj)")
	flag.Parse()

	if *videoPath == "" {
		fmt.Fprintln(os.Stderr, "usage: process-video -video <path> [-subject s] [-theme t] [-language l]")
		os.Exit(1)
	}
	if !models.Subject(*subject).Valid() {
		logrus.Fatalf("Unknown subject %q", *subject)
	}
	if !models.Language(*language).Valid() {
		logrus.Fatalf("Unsupported language %q", *language)
	}

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

	file, err := os.Open(*videoPath)
	if err != nil {
		logrus.Fatalf("Failed to open video: %v", err)
	}
	info, err := file.Stat()
	if err != nil {
		logrus.Fatalf("Failed to stat video: %v", err)
	}
	filename, err := localStorage.SaveFile(file, storage.FileInfo{
		Filename: filepath.Base(*videoPath),
		Size:     info.Size(),
	})
	file.Close()
	if err != nil {
		logrus.Fatalf("Failed to store video: %v", err)
	}

	video := &models.VideoAnalysis{
		VideoFilename: filename,
		VideoPath:     localStorage.FilePath(filename),
		Subject:       models.Subject(*subject),
		Theme:         *theme,
		Language:      models.Language(*language),
	}
	if err := videoRepo.Insert(video); err != nil {
		logrus.Fatalf("Failed to register video: %v", err)
	}

	audioExtractor, err := media.NewFFmpegAudioExtractor(cfg.UploadDir)
	if err != nil {
		logrus.Fatalf("Audio extraction unavailable: %v", err)
	}
	frameSource, err := media.NewFFmpegFrameSource()
	if err != nil {
		logrus.Fatalf("Frame extraction unavailable: %v", err)
	}

	pipeline := processing.NewPipeline(
		videoRepo, feedbackRepo, taskRepo,
		audioExtractor,
		transcribe.NewWhisperClient(transcribe.WhisperConfig{
			BaseURL:             cfg.WhisperBaseURL,
			APIKey:              cfg.WhisperAPIKey,
			Model:               cfg.WhisperModel,
			ConfidenceThreshold: cfg.ConfidenceThreshold,
		}),
		vision.NewAnalyzer(frameSource, vision.NewLandmarkClient(cfg.LandmarkBaseURL)),
		ai.NewGenerator(
			ai.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL),
			ai.GeneratorConfig{
				APIKey:         cfg.OpenRouterAPIKey,
				PrimaryModel:   cfg.PrimaryModel,
				SecondaryModel: cfg.SecondaryModel,
				Primary:        ai.RetryPolicy{MaxAttempts: cfg.PrimaryMaxAttempts, BaseDelay: cfg.PrimaryRetryDelay},
				Secondary:      ai.RetryPolicy{MaxAttempts: cfg.SecondaryMaxAttempts, BaseDelay: cfg.SecondaryRetryDelay},
			},
		),
	)

	if err := pipeline.Run(context.Background(), video.ID, models.Language(*language)); err != nil {
		logrus.Fatalf("Processing failed: %v", err)
	}

	feedback, err := feedbackRepo.GetByVideoID(video.ID)
	if err != nil {
		logrus.Fatalf("Failed to load feedback: %v", err)
	}

	out, err := json.MarshalIndent(feedback, "", "  ")
	if err != nil {
		logrus.Fatalf("Failed to encode feedback: %v", err)
	}
	fmt.Println(string(out))
}
