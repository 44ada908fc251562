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

type ComplaintRepository interface {
	Create(ctx context.Context, c *entity.Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Complaint, error)
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Complaint, error)
	// FindByCompany lists complaints of one company; a nil companyID lists all.
	FindByCompany(ctx context.Context, companyID *uuid.UUID, limit, offset int) ([]*entity.Complaint, error)
	UpdateStatus(ctx context.Context, c *entity.Complaint) error
}

type complaintRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewComplaintRepository(db database.PgxIface, log *zap.Logger) ComplaintRepository {
	return &complaintRepository{
		db:  db,
		log: log.With(zap.String("repository", "complaint")),
	}
}

const complaintColumns = `id, user_id, company_id, title, description, status,
		       assigned_to, created_at, updated_at`

func scanComplaint(row scanner, c *entity.Complaint) error {
	return row.Scan(
		&c.ID,
		&c.UserID,
		&c.CompanyID,
		&c.Title,
		&c.Description,
		&c.Status,
		&c.AssignedTo,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (r *complaintRepository) Create(ctx context.Context, c *entity.Complaint) error {
	query := `
		INSERT INTO complaints (id, user_id, company_id, title, description, status,
		                        assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.CompanyID,
		c.Title,
		c.Description,
		c.Status,
		c.AssignedTo,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create complaint",
			zap.Error(err),
			zap.String("user_id", c.UserID.String()),
		)
		return fmt.Errorf("create complaint: %w", err)
	}

	return nil
}

func (r *complaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`

	var c entity.Complaint
	err := scanComplaint(r.db.QueryRow(ctx, query, id), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find complaint",
			zap.Error(err),
			zap.String("complaint_id", id.String()),
		)
		return nil, fmt.Errorf("find complaint %s: %w", id.String(), err)
	}

	return &c, nil
}

func (r *complaintRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Complaint, error) {
	query := `
		SELECT ` + complaintColumns + `
		FROM complaints
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *complaintRepository) FindByCompany(ctx context.Context, companyID *uuid.UUID, limit, offset int) ([]*entity.Complaint, error) {
	query := `
		SELECT ` + complaintColumns + `
		FROM complaints
		WHERE ($1::uuid IS NULL OR company_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, companyID, limit, offset)
}

func (r *complaintRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Complaint, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list complaints", zap.Error(err))
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	var complaints []*entity.Complaint
	for rows.Next() {
		var c entity.Complaint
		if err := scanComplaint(rows, &c); err != nil {
			r.log.Error("Failed to scan complaint row", zap.Error(err))
			return nil, fmt.Errorf("scan complaint row: %w", err)
		}
		complaints = append(complaints, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate complaint rows: %w", err)
	}

	return complaints, nil
}

func (r *complaintRepository) UpdateStatus(ctx context.Context, c *entity.Complaint) error {
	query := `
		UPDATE complaints
		SET status = $2, assigned_to = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, c.ID, c.Status, c.AssignedTo, c.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update complaint",
			zap.Error(err),
			zap.String("complaint_id", c.ID.String()),
		)
		return fmt.Errorf("update complaint %s: %w", c.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update complaint %s: %w", c.ID.String(), ErrNotFound)
	}

	return nil
}
