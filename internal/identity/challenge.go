package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const challengePrefix = "otp:v1:"

// Challenge is a pending OTP issued to a phone number. The code itself is
// never stored, only its bcrypt hash.
type Challenge struct {
	CodeHash []byte   `json:"code_hash"`
	Meta     Metadata `json:"meta"`
	Attempts int      `json:"attempts"`
}

// ChallengeStore holds pending OTP challenges keyed by phone number with a TTL.
type ChallengeStore interface {
	Put(ctx context.Context, phone string, ch Challenge, ttl time.Duration) error
	// Get returns ErrCodeExpired when no challenge is pending.
	Get(ctx context.Context, phone string) (Challenge, error)
	// Update rewrites a pending challenge preserving its remaining TTL.
	Update(ctx context.Context, phone string, ch Challenge) error
	Delete(ctx context.Context, phone string) error
}

// RedisChallengeStore persists challenges in Redis.
type RedisChallengeStore struct {
	cache *redis.Client
}

// NewRedisChallengeStore builds a Redis-backed challenge store.
func NewRedisChallengeStore(cache *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{cache: cache}
}

// Put stores the challenge under the phone key with the given TTL.
func (s *RedisChallengeStore) Put(ctx context.Context, phone string, ch Challenge, ttl time.Duration) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}
	return s.cache.Set(ctx, challengePrefix+phone, payload, ttl).Err()
}

// Get fetches the pending challenge for the phone.
func (s *RedisChallengeStore) Get(ctx context.Context, phone string) (Challenge, error) {
	raw, err := s.cache.Get(ctx, challengePrefix+phone).Bytes()
	if err == redis.Nil {
		return Challenge{}, ErrCodeExpired
	}
	if err != nil {
		return Challenge{}, err
	}
	var ch Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return Challenge{}, fmt.Errorf("decode challenge: %w", err)
	}
	return ch, nil
}

// Update rewrites the challenge without touching its expiry.
func (s *RedisChallengeStore) Update(ctx context.Context, phone string, ch Challenge) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}
	return s.cache.Set(ctx, challengePrefix+phone, payload, redis.KeepTTL).Err()
}

// Delete removes the pending challenge.
func (s *RedisChallengeStore) Delete(ctx context.Context, phone string) error {
	return s.cache.Del(ctx, challengePrefix+phone).Err()
}

type memoryChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]Challenge
}

// NewMemoryChallengeStore builds an in-memory challenge store for testing.
// TTLs are not enforced.
func NewMemoryChallengeStore() ChallengeStore {
	return &memoryChallengeStore{challenges: make(map[string]Challenge)}
}

func (s *memoryChallengeStore) Put(_ context.Context, phone string, ch Challenge, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[phone] = ch
	return nil
}

func (s *memoryChallengeStore) Get(_ context.Context, phone string) (Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[phone]
	if !ok {
		return Challenge{}, ErrCodeExpired
	}
	return ch, nil
}

func (s *memoryChallengeStore) Update(_ context.Context, phone string, ch Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[phone]; !ok {
		return ErrCodeExpired
	}
	s.challenges[phone] = ch
	return nil
}

func (s *memoryChallengeStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, phone)
	return nil
}
