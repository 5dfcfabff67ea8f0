package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	TicketsTable    string
	ImageBucket     string
	TopicARN        string
	CleanupQueueURL string

	// MaxImageBytes bounds the decoded image size accepted on create.
	// Clients are expected to compress before upload; we never transcode.
	MaxImageBytes int64

	// PresignTTL bounds how long issued upload/download URLs stay valid.
	PresignTTL time.Duration

	// RetryAttempts / RetryBaseDelay drive the coordinator's backoff
	// around the authoritative metadata write.
	RetryAttempts  int
	RetryBaseDelay time.Duration

	LogLevel string
}

// Load reads configuration from environment variables, applying defaults where possible.
// A .env file is honored when present (local runs); missing is fine.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		TicketsTable:    getEnv("TICKETS_TABLE", "MaintenanceTickets"),
		ImageBucket:     getEnv("IMAGE_BUCKET", ""),
		TopicARN:        getEnv("COMPLETION_TOPIC_ARN", ""),
		CleanupQueueURL: getEnv("CLEANUP_QUEUE_URL", ""),
		MaxImageBytes:   getEnvAsInt64("MAX_IMAGE_BYTES", 4<<20),
		PresignTTL:      getEnvAsDuration("PRESIGN_TTL", time.Hour),
		RetryAttempts:   getEnvAsInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelay:  getEnvAsDuration("RETRY_BASE_DELAY", 100*time.Millisecond),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
