package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWithAddrAndServeShutdown(t *testing.T) {
	t.Setenv("FULFILLMENT_PAYMENT_DB_PATH", filepath.Join(t.TempDir(), "payments.db"))
	t.Setenv("FULFILLMENT_BROKER_URL", "")

	server, err := NewWithAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new payment server: %v", err)
	}
	if server.Addr() == "" {
		t.Fatalf("expected a bound listener address")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error on shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not shut down in time")
	}
}

func TestLoadServerEnvDefaultsDBPath(t *testing.T) {
	t.Setenv("FULFILLMENT_PAYMENT_DB_PATH", "")
	cfg, err := loadServerEnv()
	if err != nil {
		t.Fatalf("load server env: %v", err)
	}
	if cfg.DBPath != filepath.Join("data", "payments.db") {
		t.Fatalf("unexpected default db path: %q", cfg.DBPath)
	}
	if cfg.Policies.RateLimitCapacity == 0 {
		t.Fatalf("expected policy defaults to be populated")
	}
}
