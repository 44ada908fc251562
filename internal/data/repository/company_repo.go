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

type CompanyRepository interface {
	// Create inserts the company and links the owner to it.
	Create(ctx context.Context, company *entity.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
}

type companyRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCompanyRepository(db database.PgxIface, log *zap.Logger) CompanyRepository {
	return &companyRepository{
		db:  db,
		log: log.With(zap.String("repository", "company")),
	}
}

func (r *companyRepository) Create(ctx context.Context, company *entity.Company) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin company create", zap.Error(err))
		return fmt.Errorf("begin company create: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO companies (id, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, company.ID, company.Name, company.OwnerID, company.CreatedAt, company.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			err = fmt.Errorf("create company %s: %w", company.Name, ErrDuplicate)
			return err
		}
		r.log.Error("Failed to create company",
			zap.Error(err),
			zap.String("name", company.Name),
		)
		return fmt.Errorf("create company %s: %w", company.Name, err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET company_id = $2, updated_at = $3 WHERE id = $1`,
		company.OwnerID, company.ID, company.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to link company owner",
			zap.Error(err),
			zap.String("owner_id", company.OwnerID.String()),
		)
		return fmt.Errorf("link owner of company %s: %w", company.Name, err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit company create", zap.Error(err))
		return fmt.Errorf("commit company create: %w", err)
	}

	return nil
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	var c entity.Company
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find company",
			zap.Error(err),
			zap.String("company_id", id.String()),
		)
		return nil, fmt.Errorf("find company %s: %w", id.String(), err)
	}

	return &c, nil
}
