package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) *RedisChallengeStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})
	return NewRedisChallengeStore(cache)
}

func TestRedisChallengeRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	ch := Challenge{CodeHash: []byte("hash"), Meta: Metadata{Name: "Asha", UserType: "laborer"}}
	if err := store.Put(ctx, "+919876543210", ch, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "+919876543210")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.CodeHash) != "hash" || got.Meta.Name != "Asha" {
		t.Fatalf("unexpected challenge %+v", got)
	}

	got.Attempts = 2
	if err := store.Update(ctx, "+919876543210", got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = store.Get(ctx, "+919876543210")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", got.Attempts)
	}

	if err := store.Delete(ctx, "+919876543210"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "+919876543210"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
}

func TestRedisChallengeExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})
	store := NewRedisChallengeStore(cache)
	ctx := context.Background()

	if err := store.Put(ctx, "+911111111111", Challenge{CodeHash: []byte("h")}, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "+911111111111"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired after TTL, got %v", err)
	}
}
