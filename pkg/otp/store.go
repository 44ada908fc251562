// Package otp holds short-lived one-time passcodes behind a swappable store.
//
// The in-memory store only works for a single server instance and loses every
// code on restart. Deployments with more than one instance must use the redis
// or postgres backend.
package otp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("otp not found")
	ErrExpired  = errors.New("otp expired")
	ErrMismatch = errors.New("otp mismatch")
)

// Entry is one live code. At most one entry exists per key.
type Entry struct {
	Key       string    `json:"key"`
	Code      string    `json:"code"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store is the persistence contract behind Cache.
type Store interface {
	// Put stores or overwrites the entry under entry.Key.
	Put(ctx context.Context, entry Entry) error
	// Get returns ErrNotFound when no entry exists. Expired entries may
	// still be returned; the caller checks ExpiresAt.
	Get(ctx context.Context, key string) (*Entry, error)
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
	// SweepExpired removes entries whose expiry has passed and reports how many.
	SweepExpired(ctx context.Context) (int, error)
}

// Clock returns the current time.
type Clock func() time.Time
