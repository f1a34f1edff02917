package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server and CLI need to run. Values come from
// the environment, optionally seeded from a .env file.
type Config struct {
	Address       string `env:"ADDRESS" envDefault:":8080"`
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"524288000"` // 500 MB

	DBType     string `env:"DB_TYPE" envDefault:"sqlite"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"classlens"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"classlens"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"classlens.db"`

	OpenRouterAPIKey     string        `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL    string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	PrimaryModel         string        `env:"PRIMARY_MODEL" envDefault:"meta-llama/llama-4-scout:free"`
	SecondaryModel       string        `env:"SECONDARY_MODEL" envDefault:"mistralai/mistral-7b-instruct:free"`
	PrimaryMaxAttempts   int           `env:"PRIMARY_MAX_ATTEMPTS" envDefault:"3"`
	PrimaryRetryDelay    time.Duration `env:"PRIMARY_RETRY_DELAY" envDefault:"2s"`
	SecondaryMaxAttempts int           `env:"SECONDARY_MAX_ATTEMPTS" envDefault:"2"`
	SecondaryRetryDelay  time.Duration `env:"SECONDARY_RETRY_DELAY" envDefault:"3s"`

	WhisperBaseURL      string  `env:"WHISPER_BASE_URL" envDefault:"http://localhost:9000"`
	WhisperAPIKey       string  `env:"WHISPER_API_KEY"`
	WhisperModel        string  `env:"WHISPER_MODEL" envDefault:"whisper-1"`
	ConfidenceThreshold float64 `env:"CONFIDENCE_THRESHOLD" envDefault:"0.7"`

	LandmarkBaseURL string `env:"LANDMARK_BASE_URL" envDefault:"http://localhost:9100"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env when present, then parses the environment. Missing .env is
// not an error so containerized deployments can rely on real env vars.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	return cfg, nil
}
