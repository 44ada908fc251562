package repository

import (
	"context"
	"errors"
	"fmt"

	"bizdesk/internal/data/entity"
	"bizdesk/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByPhone(ctx context.Context, phone string) (*entity.User, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *entity.User) error
	ChangeRole(ctx context.Context, change *entity.RoleChange, companyID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `id, name, email, phone, password_hash, is_email_verified,
		       is_phone_verified, role, company_id, created_at, updated_at`

func scanUser(row scanner, user *entity.User) error {
	return row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.EmailVerified,
		&user.PhoneVerified,
		&user.Role,
		&user.CompanyID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

// Create inserts a new user record into the database
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := insertUser(ctx, ur.db, user); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			ur.log.Error("Failed to create user",
				zap.Error(err),
				zap.String("email", user.Email),
			)
		}
		return err
	}
	return nil
}

// execer is satisfied by both the pool and a pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertUser(ctx context.Context, db execer, user *entity.User) error {
	query := `
		INSERT INTO users (id, name, email, phone, password_hash, is_email_verified,
		                   is_phone_verified, role, company_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.EmailVerified,
		user.PhoneVerified,
		user.Role,
		user.CompanyID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

func (ur *userRepository) findOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	var user entity.User
	err := scanUser(ur.db.QueryRow(ctx, query, arg), &user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := ur.findOne(ctx, "id = $1", id)
	if err != nil {
		ur.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}
	return user, nil
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := ur.findOne(ctx, "email = lower($1)", email)
	if err != nil {
		ur.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}
	return user, nil
}

func (ur *userRepository) FindByPhone(ctx context.Context, phone string) (*entity.User, error) {
	user, err := ur.findOne(ctx, "phone = $1", phone)
	if err != nil {
		ur.log.Error("Failed to find user by phone",
			zap.Error(err),
			zap.String("phone", phone),
		)
		return nil, fmt.Errorf("find user by phone: %w", err)
	}
	return user, nil
}

// FindAll retrieves paginated list of users
func (ur *userRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := ur.db.Query(ctx, query, limit, offset)
	if err != nil {
		ur.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all users limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var user entity.User
		if err := scanUser(rows, &user); err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (ur *userRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM users`

	var count int64
	err := ur.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		ur.log.Error("Database error counting users",
			zap.Error(err),
		)
		return 0, fmt.Errorf("count all users: %w", err)
	}

	return count, nil
}

// Update writes profile, credential and verification fields. Role and
// company go through ChangeRole so every role mutation is audited.
func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, phone = $4, password_hash = $5,
		    is_email_verified = $6, is_phone_verified = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.EmailVerified,
		user.PhoneVerified,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user %s: %w", user.ID.String(), ErrDuplicate)
		}
		ur.log.Error("Failed to update user",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update user %s: %w", user.ID.String(), ErrNotFound)
	}

	return nil
}

// ChangeRole sets users.role (and company_id when companyID is non-nil),
// drops admin credentials for any other role and appends the audit row in
// one transaction.
func (ur *userRepository) ChangeRole(ctx context.Context, change *entity.RoleChange, companyID *uuid.UUID) (err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		ur.log.Error("Failed to begin role change", zap.Error(err))
		return fmt.Errorf("begin role change: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = applyRoleChange(ctx, tx, change, companyID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			ur.log.Error("Failed to change user role",
				zap.Error(err),
				zap.String("user_id", change.UserID.String()),
			)
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		ur.log.Error("Failed to commit role change", zap.Error(err))
		return fmt.Errorf("commit role change: %w", err)
	}

	ur.log.Info("User role changed",
		zap.String("user_id", change.UserID.String()),
		zap.String("old_role", string(change.OldRole)),
		zap.String("new_role", string(change.NewRole)),
		zap.String("reason", change.Reason),
	)
	return nil
}

// applyRoleChange runs the role change statements on tx. An admin credential
// only exists for the role the user currently holds.
func applyRoleChange(ctx context.Context, tx pgx.Tx, change *entity.RoleChange, companyID *uuid.UUID) error {
	result, err := tx.Exec(ctx, `
		UPDATE users
		SET role = $2, company_id = COALESCE($3, company_id), updated_at = NOW()
		WHERE id = $1
	`, change.UserID, change.NewRole, companyID)
	if err != nil {
		return fmt.Errorf("update role of %s: %w", change.UserID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("update role of %s: %w", change.UserID.String(), ErrNotFound)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM admin_credentials WHERE user_id = $1 AND role <> $2
	`, change.UserID, change.NewRole)
	if err != nil {
		return fmt.Errorf("drop stale admin credentials of %s: %w", change.UserID.String(), err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO role_changes (id, user_id, old_role, new_role, reason, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, change.ID, change.UserID, change.OldRole, change.NewRole, change.Reason, change.ChangedBy, change.CreatedAt)
	if err != nil {
		return fmt.Errorf("record role change of %s: %w", change.UserID.String(), err)
	}

	return nil
}

// Delete removes the user row. Sessions, credentials, invitations sent and
// complaints go with it through ON DELETE CASCADE.
func (ur *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := ur.db.Exec(ctx, query, id)
	if err != nil {
		ur.log.Error("Failed to delete user",
			zap.Error(err),
			zap.String("id", id.String()),
		)
		return fmt.Errorf("delete user %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete user %s: %w", id.String(), ErrNotFound)
	}

	ur.log.Info("User deleted", zap.String("id", id.String()))
	return nil
}
