package shipping

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("shipping", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8082 {
		t.Fatalf("expected default port 8082, got %d", cfg.Port)
	}
	if cfg.Addr != "" {
		t.Fatalf("expected empty addr, got %q", cfg.Addr)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("shipping", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9002", "-addr", "127.0.0.1:9998"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9002 {
		t.Fatalf("expected port 9002, got %d", cfg.Port)
	}
	if cfg.Addr != "127.0.0.1:9998" {
		t.Fatalf("expected addr override, got %q", cfg.Addr)
	}
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("FULFILLMENT_SHIPPING_PORT", "9006")
	fs := flag.NewFlagSet("shipping", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9006 {
		t.Fatalf("expected env port 9006, got %d", cfg.Port)
	}
}
