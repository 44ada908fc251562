package database

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsTransient reports whether err is a connection-level failure that is safe
// to retry for a read.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception
		return len(pgErr.Code) == 5 && pgErr.Code[:2] == "08"
	}
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}

// RetryRead runs op up to maxTries times with exponential backoff while it
// fails with a transient error. Other errors are returned immediately.
func RetryRead[T any](ctx context.Context, maxTries uint, op func() (T, error)) (T, error) {
	if maxTries == 0 {
		maxTries = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(maxTries),
	)
}
