package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bizdesk/internal/data/entity"
	"bizdesk/pkg/database"
	"bizdesk/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	// FindWithUser returns the session joined with its owner regardless of
	// expiry. The caller decides what an expired row means.
	FindWithUser(ctx context.Context, token string) (*entity.SessionWithUser, error)
	Delete(ctx context.Context, token string) (bool, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteByUserIDExcept(ctx context.Context, userID uuid.UUID, keepToken string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSessionRepository(db database.PgxIface, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "session")),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token, kind, user_agent, ip_address,
		                      expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.Token,
		session.Kind,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create session",
			zap.Error(err),
			zap.String("user_id", session.UserID.String()),
		)
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sessionRepository) FindWithUser(ctx context.Context, token string) (*entity.SessionWithUser, error) {
	query := `
		SELECT s.id, s.user_id, s.token, s.kind, s.user_agent, s.ip_address,
		       s.expires_at, s.created_at,
		       u.id, u.name, u.email, u.phone, u.password_hash, u.is_email_verified,
		       u.is_phone_verified, u.role, u.company_id, u.created_at, u.updated_at,
		       c.name
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN companies c ON c.id = u.company_id
		WHERE s.token = $1
	`

	var found entity.SessionWithUser
	s, u := &found.Session, &found.User
	err := r.db.QueryRow(ctx, query, token).Scan(
		&s.ID,
		&s.UserID,
		&s.Token,
		&s.Kind,
		&s.UserAgent,
		&s.IPAddress,
		&s.ExpiresAt,
		&s.CreatedAt,
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.EmailVerified,
		&u.PhoneVerified,
		&u.Role,
		&u.CompanyID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&found.CompanyName,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find session",
			zap.Error(err),
			zap.String("token", utils.TokenPrefix(token)),
		)
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &found, nil
}

// Delete reports whether a row was removed. Deleting an unknown token is not an error.
func (r *sessionRepository) Delete(ctx context.Context, token string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		r.log.Error("Failed to delete session",
			zap.Error(err),
			zap.String("token", utils.TokenPrefix(token)),
		)
		return false, fmt.Errorf("failed to delete session: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		r.log.Error("Failed to delete user sessions",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *sessionRepository) DeleteByUserIDExcept(ctx context.Context, userID uuid.UUID, keepToken string) (int64, error) {
	result, err := r.db.Exec(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND token <> $2`,
		userID, keepToken,
	)
	if err != nil {
		r.log.Error("Failed to delete other user sessions",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		r.log.Error("Failed to clean expired sessions",
			zap.Error(err),
		)
		return 0, fmt.Errorf("failed to clean sessions: %w", err)
	}

	return result.RowsAffected(), nil
}
