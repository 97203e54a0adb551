package config

import (
	"testing"
	"time"
)

func TestParseEnvDefaultsAndOverrides(t *testing.T) {
	type target struct {
		Port    int           `env:"FULFILLMENT_TEST_PORT" envDefault:"8081"`
		DBPath  string        `env:"FULFILLMENT_TEST_DB_PATH"`
		Timeout time.Duration `env:"FULFILLMENT_TEST_TIMEOUT" envDefault:"2s"`
	}

	var cfg target
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 8081 {
		t.Fatalf("expected default port 8081, got %d", cfg.Port)
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("expected default timeout 2s, got %v", cfg.Timeout)
	}

	t.Setenv("FULFILLMENT_TEST_PORT", "9000")
	t.Setenv("FULFILLMENT_TEST_DB_PATH", "data/test.db")
	var overridden target
	if err := ParseEnv(&overridden); err != nil {
		t.Fatalf("parse env with overrides: %v", err)
	}
	if overridden.Port != 9000 {
		t.Fatalf("expected overridden port 9000, got %d", overridden.Port)
	}
	if overridden.DBPath != "data/test.db" {
		t.Fatalf("expected db path override, got %q", overridden.DBPath)
	}
}

func TestParseEnvRejectsMalformedValues(t *testing.T) {
	type target struct {
		Port int `env:"FULFILLMENT_TEST_BAD_PORT"`
	}
	t.Setenv("FULFILLMENT_TEST_BAD_PORT", "not-a-number")
	var cfg target
	if err := ParseEnv(&cfg); err == nil {
		t.Fatalf("expected error for malformed int value")
	}
}
