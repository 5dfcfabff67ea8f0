package unit

import (
	"os"
	"testing"
	"time"

	"github.com/imrishuroy/go-maintenance-tickets/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"TICKETS_TABLE", "IMAGE_BUCKET", "COMPLETION_TOPIC_ARN", "CLEANUP_QUEUE_URL",
		"MAX_IMAGE_BYTES", "PRESIGN_TTL", "RETRY_ATTEMPTS", "RETRY_BASE_DELAY", "LOG_LEVEL",
	} {
		os.Unsetenv(key)
	}

	cfg := config.Load()

	if cfg.TicketsTable != "MaintenanceTickets" {
		t.Fatalf("unexpected table default %q", cfg.TicketsTable)
	}
	if cfg.MaxImageBytes != 4<<20 {
		t.Fatalf("unexpected image size default %d", cfg.MaxImageBytes)
	}
	if cfg.PresignTTL != time.Hour {
		t.Fatalf("unexpected presign ttl default %s", cfg.PresignTTL)
	}
	if cfg.RetryAttempts != 3 {
		t.Fatalf("unexpected retry attempts default %d", cfg.RetryAttempts)
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("TICKETS_TABLE", "TestTickets")
	os.Setenv("MAX_IMAGE_BYTES", "1024")
	os.Setenv("PRESIGN_TTL", "15m")
	defer func() {
		os.Unsetenv("TICKETS_TABLE")
		os.Unsetenv("MAX_IMAGE_BYTES")
		os.Unsetenv("PRESIGN_TTL")
	}()

	cfg := config.Load()

	if cfg.TicketsTable != "TestTickets" {
		t.Fatalf("override ignored, got %q", cfg.TicketsTable)
	}
	if cfg.MaxImageBytes != 1024 {
		t.Fatalf("override ignored, got %d", cfg.MaxImageBytes)
	}
	if cfg.PresignTTL != 15*time.Minute {
		t.Fatalf("override ignored, got %s", cfg.PresignTTL)
	}
}
