package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolDefaults(t *testing.T) {
	cfg := PostgresPoolConfig{}.withDefaults()
	if cfg.MaxOpenConns <= 0 || cfg.MaxIdleConns <= 0 {
		t.Fatalf("expected positive pool sizes, got %+v", cfg)
	}
	if cfg.PingTimeout < time.Second {
		t.Fatalf("expected a sane ping timeout, got %v", cfg.PingTimeout)
	}
}
