package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prohmpiriya/tier-events/pkg/retry"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", cfg.Host)
	}
	if cfg.Port != 6379 {
		t.Errorf("Expected port 6379, got %d", cfg.Port)
	}
	if cfg.Retry == nil || cfg.Retry.MaxRetries != 3 {
		t.Errorf("Expected default retry with 3 retries, got %+v", cfg.Retry)
	}
}

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{Host: "redis.example.com", Port: 6380}

	expected := "redis.example.com:6380"
	if cfg.Addr() != expected {
		t.Errorf("Expected addr '%s', got '%s'", expected, cfg.Addr())
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &Config{
		Host:        "127.0.0.1",
		Port:        1,
		DialTimeout: 200 * time.Millisecond,
		Retry:       &retry.Config{MaxRetries: 0, InitialInterval: 10 * time.Millisecond},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewClient(ctx, cfg); err == nil {
		t.Error("Expected error for unreachable redis, got nil")
	}
}

func TestClient_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test - set INTEGRATION_TEST=true to run")
	}

	cfg := DefaultConfig()
	if host := os.Getenv("TEST_REDIS_HOST"); host != "" {
		cfg.Host = host
	}
	cfg.DB = 1

	ctx := context.Background()
	client, err := NewClient(ctx, cfg)
	if err != nil {
		t.Skipf("Skipping integration test - Redis not available: %v", err)
	}
	defer client.Close()

	if err := client.Set(ctx, "tier-events:test", "v", time.Minute).Err(); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := client.Get(ctx, "tier-events:test").Result()
	if err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	client.Del(ctx, "tier-events:test")
	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}

func TestConnectError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"wrong password", errors.New("WRONGPASS invalid username-password pair or user is disabled."), true},
		{"auth required", errors.New("NOAUTH Authentication required."), true},
		{"refused", errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"), false},
		{"loading", errors.New("LOADING Redis is loading the dataset in memory"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := connectError(tt.err)
			var perm *retry.PermanentError
			if errors.As(got, &perm) != tt.permanent {
				t.Errorf("connectError(%q) permanent = %v, want %v", tt.err, !tt.permanent, tt.permanent)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("connectError(%q) lost the original error", tt.err)
			}
		})
	}
}
