package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bizdesk/internal/data/entity"
	"bizdesk/pkg/database"
	"bizdesk/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *entity.Invitation) error
	FindByToken(ctx context.Context, token string) (*entity.Invitation, error)
	// FindPendingByEmail returns the newest pending invitation for email that
	// has not expired at now.
	FindPendingByEmail(ctx context.Context, email string, now time.Time) (*entity.Invitation, error)
	// Accept flips a pending invitation to accepted and applies the account
	// writes in one transaction. It returns ErrNotFound when the invitation
	// is no longer pending and ErrDuplicate when the new account collides.
	Accept(ctx context.Context, acc *entity.InvitationAcceptance) error
}

type invitationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewInvitationRepository(db database.PgxIface, log *zap.Logger) InvitationRepository {
	return &invitationRepository{
		db:  db,
		log: log.With(zap.String("repository", "invitation")),
	}
}

const invitationColumns = `id, token, email, role, company_id, invited_by, status,
		       expires_at, accepted_at, created_at`

func scanInvitation(row scanner, inv *entity.Invitation) error {
	return row.Scan(
		&inv.ID,
		&inv.Token,
		&inv.Email,
		&inv.Role,
		&inv.CompanyID,
		&inv.InvitedBy,
		&inv.Status,
		&inv.ExpiresAt,
		&inv.AcceptedAt,
		&inv.CreatedAt,
	)
}

func (r *invitationRepository) Create(ctx context.Context, inv *entity.Invitation) error {
	query := `
		INSERT INTO invitations (id, token, email, role, company_id, invited_by,
		                         status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		inv.ID,
		inv.Token,
		inv.Email,
		inv.Role,
		inv.CompanyID,
		inv.InvitedBy,
		inv.Status,
		inv.ExpiresAt,
		inv.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create invitation",
			zap.Error(err),
			zap.String("email", inv.Email),
		)
		return fmt.Errorf("create invitation for %s: %w", inv.Email, err)
	}

	return nil
}

func (r *invitationRepository) FindByToken(ctx context.Context, token string) (*entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`

	var inv entity.Invitation
	err := scanInvitation(r.db.QueryRow(ctx, query, token), &inv)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find invitation",
			zap.Error(err),
			zap.String("token", utils.TokenPrefix(token)),
		)
		return nil, fmt.Errorf("find invitation: %w", err)
	}

	return &inv, nil
}

func (r *invitationRepository) FindPendingByEmail(ctx context.Context, email string, now time.Time) (*entity.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE email = lower($1) AND status = 'pending' AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var inv entity.Invitation
	err := scanInvitation(r.db.QueryRow(ctx, query, email, now), &inv)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find pending invitation",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find pending invitation for %s: %w", email, err)
	}

	return &inv, nil
}

func (r *invitationRepository) Accept(ctx context.Context, acc *entity.InvitationAcceptance) (err error) {
	id := acc.InvitationID.String()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin invitation accept", zap.Error(err))
		return fmt.Errorf("begin accept invitation %s: %w", id, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if acc.NewUser != nil {
		if err = insertUser(ctx, tx, acc.NewUser); err != nil {
			return err
		}
	}

	result, err := tx.Exec(ctx, `
		UPDATE invitations
		SET status = 'accepted', accepted_at = $2
		WHERE id = $1 AND status = 'pending'
	`, acc.InvitationID, acc.AcceptedAt)
	if err != nil {
		r.log.Error("Failed to accept invitation",
			zap.Error(err),
			zap.String("invitation_id", id),
		)
		return fmt.Errorf("accept invitation %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		err = fmt.Errorf("accept invitation %s: %w", id, ErrNotFound)
		return err
	}

	if acc.Change != nil {
		if err = applyRoleChange(ctx, tx, acc.Change, acc.CompanyID); err != nil {
			r.log.Error("Failed to apply invitation role",
				zap.Error(err),
				zap.String("invitation_id", id),
			)
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit invitation accept", zap.Error(err))
		return fmt.Errorf("commit accept invitation %s: %w", id, err)
	}

	return nil
}
