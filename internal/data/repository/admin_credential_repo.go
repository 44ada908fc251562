package repository

import (
	"context"
	"errors"
	"fmt"

	"bizdesk/internal/data/entity"
	"bizdesk/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AdminCredentialRepository interface {
	// FindByUser returns every admin credential the user holds, one per role.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.AdminCredential, error)
	FindByUserAndRole(ctx context.Context, userID uuid.UUID, role entity.UserRole) (*entity.AdminCredential, error)
	Upsert(ctx context.Context, cred *entity.AdminCredential) error
}

type adminCredentialRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAdminCredentialRepository(db database.PgxIface, log *zap.Logger) AdminCredentialRepository {
	return &adminCredentialRepository{
		db:  db,
		log: log.With(zap.String("repository", "admin_credential")),
	}
}

func (r *adminCredentialRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.AdminCredential, error) {
	query := `
		SELECT user_id, role, password_hash, updated_at
		FROM admin_credentials
		WHERE user_id = $1
		ORDER BY role
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list admin credentials",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list admin credentials of %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var creds []*entity.AdminCredential
	for rows.Next() {
		var c entity.AdminCredential
		if err := rows.Scan(&c.UserID, &c.Role, &c.PasswordHash, &c.UpdatedAt); err != nil {
			r.log.Error("Failed to scan admin credential row", zap.Error(err))
			return nil, fmt.Errorf("scan admin credential row: %w", err)
		}
		creds = append(creds, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin credential rows: %w", err)
	}

	return creds, nil
}

func (r *adminCredentialRepository) FindByUserAndRole(ctx context.Context, userID uuid.UUID, role entity.UserRole) (*entity.AdminCredential, error) {
	query := `
		SELECT user_id, role, password_hash, updated_at
		FROM admin_credentials
		WHERE user_id = $1 AND role = $2
	`

	var c entity.AdminCredential
	err := r.db.QueryRow(ctx, query, userID, role).Scan(&c.UserID, &c.Role, &c.PasswordHash, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find admin credential",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("role", string(role)),
		)
		return nil, fmt.Errorf("find admin credential of %s: %w", userID.String(), err)
	}

	return &c, nil
}

func (r *adminCredentialRepository) Upsert(ctx context.Context, cred *entity.AdminCredential) error {
	query := `
		INSERT INTO admin_credentials (user_id, role, password_hash, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, role) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query, cred.UserID, cred.Role, cred.PasswordHash, cred.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to upsert admin credential",
			zap.Error(err),
			zap.String("user_id", cred.UserID.String()),
			zap.String("role", string(cred.Role)),
		)
		return fmt.Errorf("upsert admin credential of %s: %w", cred.UserID.String(), err)
	}

	return nil
}
