package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/storefront-checkout/pkg/config"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestSetNXOnlyStoresOnce(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	ok, err := client.SetNX(ctx, "k", "first", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to win, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "second", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected second SetNX to lose")
	}

	got, err := client.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "first" {
		t.Fatalf("expected first value, got %q", got)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := client.Get(ctx, "k"); !IsNil(err) {
		t.Fatalf("expected key to expire, got %v", err)
	}
}

func TestSetXXOnlyOverwritesExistingKeys(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	ok, err := client.SetXX(ctx, "k", "orphan", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected SetXX on a missing key to be skipped, ok=%v err=%v", ok, err)
	}
	if mr.Exists("k") {
		t.Fatalf("SetXX must not create the key")
	}

	if _, err := client.SetNX(ctx, "k", "pending", time.Minute); err != nil {
		t.Fatalf("setnx failed: %v", err)
	}
	ok, err = client.SetXX(ctx, "k", "done", time.Hour)
	if err != nil || !ok {
		t.Fatalf("expected SetXX to overwrite, ok=%v err=%v", ok, err)
	}
	if got, _ := mr.Get("k"); got != "done" {
		t.Fatalf("expected overwritten value, got %q", got)
	}
	if ttl := mr.TTL("k"); ttl != time.Hour {
		t.Fatalf("expected ttl 1h got %v", ttl)
	}
}

func TestDelRemovesKeys(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	if _, err := client.SetNX(ctx, "a", "1", 0); err != nil {
		t.Fatalf("setnx failed: %v", err)
	}
	if err := client.Del(ctx, "a", "missing"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "a"); !IsNil(err) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestPingReflectsServerState(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	mr.Close()
	if err := client.Ping(ctx); err == nil {
		t.Fatalf("expected ping to fail after server shutdown")
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error from zero client")
	}
	if _, err := client.Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected error from zero client")
	}
	if _, err := client.SetXX(context.Background(), "k", "v", time.Minute); err == nil {
		t.Fatalf("expected error from zero client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on zero client should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("pay", "abc"); got != "sf:idempotency:pay:abc" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.IdempotencyKey("pay", " "); got != "sf:idempotency:pay" {
		t.Fatalf("blank parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 {
		t.Fatalf("unexpected options db=%d pool=%d", opts.DB, opts.PoolSize)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.DB != 3 {
		t.Fatalf("unexpected options addr=%s db=%d", opts.Addr, opts.DB)
	}
}
