package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "otp:"
	// expiredGrace keeps an expired entry around briefly so callers can
	// report "expired" instead of "not found".
	expiredGrace = 5 * time.Minute
)

// RedisStore shares codes between server instances. Redis key TTLs do the
// sweeping.
type RedisStore struct {
	client *redis.Client
	now    Clock
}

func NewRedisStore(client *redis.Client, clock Clock) *RedisStore {
	if clock == nil {
		clock = time.Now
	}
	return &RedisStore{client: client, now: clock}
}

func (s *RedisStore) Put(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal otp entry: %w", err)
	}

	ttl := entry.ExpiresAt.Sub(s.now()) + expiredGrace
	if ttl <= 0 {
		ttl = expiredGrace
	}

	if err := s.client.Set(ctx, redisKeyPrefix+entry.Key, data, ttl).Err(); err != nil {
		return fmt.Errorf("store otp %s: %w", entry.Key, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get otp %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode otp %s: %w", key, err)
	}
	return &entry, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete otp %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) SweepExpired(context.Context) (int, error) {
	return 0, nil
}
