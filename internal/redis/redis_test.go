package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"fare-estimator/internal/config"
	"fare-estimator/internal/logger"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/go-redis/redis/v8"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis, context.Context) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	return &Client{client: rdb, log: log}, mr, context.Background()
}

func TestConnectSuccess(t *testing.T) {
	mr := miniredis.RunT(t)
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	cfg := &config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: mr.Port(), DB: 0}

	client, err := Connect(cfg, log)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestConnectFailure(t *testing.T) {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	cfg := &config.RedisConfig{Host: "127.0.0.1", Port: "0", DB: 0}
	if _, err := Connect(cfg, log); err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestCloseNil(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Fatalf("expected nil error on nil client close, got %v", err)
	}
	if err := client.Health(context.Background()); err == nil {
		t.Fatalf("expected health error on nil client")
	}
}

func TestGenerateKey(t *testing.T) {
	tests := []struct {
		prefix string
		parts  []string
		want   string
	}{
		{"ratelimit", []string{"estimate", "10.0.0.1"}, "ratelimit:estimate:10.0.0.1"},
		{"ratelimit", []string{"catalog", "::1"}, "ratelimit:catalog:__1"},
		{"ratelimit", nil, "ratelimit"},
	}
	for _, tt := range tests {
		if got := GenerateKey(tt.prefix, tt.parts...); got != tt.want {
			t.Fatalf("GenerateKey(%q, %v) = %q, want %q", tt.prefix, tt.parts, got, tt.want)
		}
	}
}

func TestGetIntAndTTL(t *testing.T) {
	client, mr, ctx := newTestClient(t)

	client.client.Set(ctx, "counter", 5, 2*time.Second)

	val, err := client.GetInt(ctx, "counter")
	if err != nil {
		t.Fatalf("get int failed: %v", err)
	}
	if val != 5 {
		t.Fatalf("unexpected int value: %d", val)
	}

	ttl, err := client.TTL(ctx, "counter")
	if err != nil {
		t.Fatalf("ttl failed: %v", err)
	}
	if ttl <= 0 {
		t.Fatalf("expected positive ttl, got %v", ttl)
	}

	mr.FastForward(3 * time.Second)
	_, err = client.GetInt(ctx, "counter")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for expired key, got %v", err)
	}
}

func TestGetInt_NotANumber(t *testing.T) {
	client, mr, ctx := newTestClient(t)
	_ = mr.Set("counter", "abc")

	_, err := client.GetInt(ctx, "counter")
	if err == nil || errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestIncrAndExpire(t *testing.T) {
	client, mr, ctx := newTestClient(t)
	val, err := client.Incr(ctx, "hits")
	if err != nil || val != 1 {
		t.Fatalf("expected incr to 1, got %d err=%v", val, err)
	}
	val, err = client.Incr(ctx, "hits")
	if err != nil || val != 2 {
		t.Fatalf("expected incr to 2, got %d err=%v", val, err)
	}
	if err := client.Expire(ctx, "hits", time.Second); err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, err := client.GetInt(ctx, "hits"); err == nil {
		t.Fatalf("expected key expired")
	}
}

func TestHealth_ServerDown(t *testing.T) {
	client, mr, ctx := newTestClient(t)
	mr.Close()
	if err := client.Health(ctx); err == nil {
		t.Fatalf("expected health error when server is down")
	}
}
