package config

import (
	"errors"
	"testing"
	"time"

	errorz "github.com/jack5341/attendance-server/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.RotationInterval != 90*time.Second {
		t.Errorf("RotationInterval = %v, want 90s", cfg.RotationInterval)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", cfg.TokenTTL)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.StoreDriver != StoreDriverGorm {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreDriverGorm)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ROTATION_INTERVAL", "5s")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("QR_BASE_URL", "https://attend.example.edu/checkin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.StoreDriver != StoreDriverMemory {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.RotationInterval != 5*time.Second {
		t.Errorf("RotationInterval = %v, want 5s", cfg.RotationInterval)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", cfg.ShutdownTimeout)
	}
	if cfg.QRBaseURL != "https://attend.example.edu/checkin" {
		t.Errorf("QRBaseURL = %q", cfg.QRBaseURL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown store driver", "STORE_DRIVER", "redis"},
		{"zero rotation interval", "ROTATION_INTERVAL", "0s"},
		{"negative token ttl", "TOKEN_TTL", "-1h"},
		{"zero rate limit", "RATE_LIMIT", "0"},
		{"zero rotation timeout", "ROTATION_TIMEOUT", "0s"},
		{"negative rotation timeout", "ROTATION_TIMEOUT", "-5s"},
		{"zero shutdown timeout", "SHUTDOWN_TIMEOUT_SECONDS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if !errors.Is(err, errorz.ErrInvalidConfig) {
				t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
