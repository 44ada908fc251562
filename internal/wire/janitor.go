package wire

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultJanitorInterval applies when the configured interval is zero.
const DefaultJanitorInterval = time.Hour

type sessionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

type codeSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// RunJanitor deletes expired sessions and codes on every tick until ctx is
// done. Reads already reject expired rows, so a missed run is harmless.
func RunJanitor(ctx context.Context, sessions sessionSweeper, codes codeSweeper, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	log = log.With(zap.String("component", "janitor"))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Janitor stopped")
			return
		case <-ticker.C:
			sweepOnce(ctx, sessions, codes, log)
		}
	}
}

func sweepOnce(ctx context.Context, sessions sessionSweeper, codes codeSweeper, log *zap.Logger) {
	if n, err := sessions.SweepExpired(ctx); err != nil {
		log.Warn("Session sweep failed", zap.Error(err))
	} else if n > 0 {
		log.Info("Expired sessions removed", zap.Int64("count", n))
	}

	if n, err := codes.Sweep(ctx); err != nil {
		log.Warn("OTP sweep failed", zap.Error(err))
	} else if n > 0 {
		log.Info("Expired codes removed", zap.Int("count", n))
	}
}
