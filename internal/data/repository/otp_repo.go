package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bizdesk/internal/data/entity"
	"bizdesk/pkg/database"
	"bizdesk/pkg/otp"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// OTPRepository is the durable OTP backend. It satisfies otp.Store so codes
// survive restarts and are shared between instances.
type OTPRepository interface {
	otp.Store
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
	now otp.Clock
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
		now: time.Now,
	}
}

func (r *otpRepository) Put(ctx context.Context, entry otp.Entry) error {
	query := `
		INSERT INTO otp_codes (key, code, owner_id, role, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE
		SET code = EXCLUDED.code, owner_id = EXCLUDED.owner_id, role = EXCLUDED.role,
		    expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at
	`

	_, err := r.db.Exec(ctx, query,
		entry.Key,
		entry.Code,
		entry.OwnerID,
		entry.Role,
		entry.ExpiresAt,
		r.now(),
	)
	if err != nil {
		r.log.Error("Failed to store OTP",
			zap.Error(err),
			zap.String("key", entry.Key),
		)
		return fmt.Errorf("store OTP %s: %w", entry.Key, err)
	}

	return nil
}

func (r *otpRepository) Get(ctx context.Context, key string) (*otp.Entry, error) {
	query := `
		SELECT key, code, owner_id, role, expires_at, created_at
		FROM otp_codes
		WHERE key = $1
	`

	var row entity.OTPCode
	err := r.db.QueryRow(ctx, query, key).Scan(
		&row.Key,
		&row.Code,
		&row.OwnerID,
		&row.Role,
		&row.ExpiresAt,
		&row.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, otp.ErrNotFound
	}
	if err != nil {
		r.log.Error("Failed to find OTP",
			zap.Error(err),
			zap.String("key", key),
		)
		return nil, fmt.Errorf("find OTP %s: %w", key, err)
	}

	return &otp.Entry{
		Key:       row.Key,
		Code:      row.Code,
		OwnerID:   row.OwnerID,
		Role:      string(row.Role),
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (r *otpRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM otp_codes WHERE key = $1`, key); err != nil {
		r.log.Error("Failed to delete OTP",
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("delete OTP %s: %w", key, err)
	}
	return nil
}

func (r *otpRepository) SweepExpired(ctx context.Context) (int, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM otp_codes WHERE expires_at < $1`, r.now())
	if err != nil {
		r.log.Error("Failed to sweep expired OTPs", zap.Error(err))
		return 0, fmt.Errorf("sweep OTPs: %w", err)
	}
	return int(result.RowsAffected()), nil
}
