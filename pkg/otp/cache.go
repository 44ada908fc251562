package otp

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"bizdesk/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 30 * time.Minute

// Key builds the "<purpose>:<id>" cache key.
func Key(purpose, id string) string {
	return purpose + ":" + id
}

// Cache issues and verifies codes on top of a Store.
type Cache struct {
	store    Store
	ttl      time.Duration
	now      Clock
	generate func() (string, error)
	log      *zap.Logger
}

type Option func(*Cache)

func WithClock(clock Clock) Option {
	return func(c *Cache) { c.now = clock }
}

func WithGenerator(gen func() (string, error)) Option {
	return func(c *Cache) { c.generate = gen }
}

func NewCache(store Store, ttl time.Duration, log *zap.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		generate: utils.GenerateOTP,
		log:      log.With(zap.String("component", "otp")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue generates a fresh code for key, replacing any previous one.
func (c *Cache) Issue(ctx context.Context, key string, ownerID uuid.UUID, role string) (*Entry, error) {
	// opportunistic cleanup before each write
	if n, err := c.store.SweepExpired(ctx); err != nil {
		c.log.Warn("OTP sweep failed", zap.Error(err))
	} else if n > 0 {
		c.log.Debug("OTP entries swept", zap.Int("removed", n))
	}

	code, err := c.generate()
	if err != nil {
		return nil, err
	}

	entry := Entry{
		Key:       key,
		Code:      code,
		OwnerID:   ownerID,
		Role:      role,
		ExpiresAt: c.now().Add(c.ttl),
	}
	if err := c.store.Put(ctx, entry); err != nil {
		return nil, fmt.Errorf("put otp: %w", err)
	}

	c.log.Info("OTP issued", zap.String("key", key), zap.Time("expires_at", entry.ExpiresAt))
	return &entry, nil
}

// Verify checks code against the live entry for key. A mismatch keeps the
// entry so the user can retry until expiry. A match does not consume the
// entry: call Consume once the dependent action succeeded.
func (c *Cache) Verify(ctx context.Context, key, code string) (*Entry, error) {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if c.now().After(entry.ExpiresAt) {
		if err := c.store.Delete(ctx, key); err != nil {
			c.log.Warn("Failed to delete expired OTP", zap.Error(err), zap.String("key", key))
		}
		return nil, ErrExpired
	}

	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		c.log.Warn("OTP mismatch", zap.String("key", key))
		return nil, ErrMismatch
	}

	return entry, nil
}

func (c *Cache) Consume(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

func (c *Cache) Sweep(ctx context.Context) (int, error) {
	return c.store.SweepExpired(ctx)
}

// TTL is the lifetime given to newly issued codes.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
