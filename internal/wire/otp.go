package wire

import (
	"fmt"

	"bizdesk/internal/data/repository"
	"bizdesk/pkg/otp"
	"bizdesk/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// NewOTPStore picks the code backend named in config. The redis client is
// only required for the redis backend.
func NewOTPStore(config utils.OTPConfig, repo *repository.Repository, rdb *redis.Client) (otp.Store, error) {
	switch config.Backend {
	case "", "memory":
		return otp.NewMemoryStore(nil), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("otp backend redis: no redis client")
		}
		return otp.NewRedisStore(rdb, nil), nil
	case "postgres":
		return repo.OTP, nil
	default:
		return nil, fmt.Errorf("unknown otp backend %q", config.Backend)
	}
}
