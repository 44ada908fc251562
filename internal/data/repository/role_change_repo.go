package repository

import (
	"context"
	"fmt"

	"bizdesk/internal/data/entity"
	"bizdesk/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleChangeRepository reads the role audit trail. Rows are written by
// UserRepository.ChangeRole inside the same transaction as the role update.
type RoleChangeRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.RoleChange, error)
}

type roleChangeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRoleChangeRepository(db database.PgxIface, log *zap.Logger) RoleChangeRepository {
	return &roleChangeRepository{
		db:  db,
		log: log.With(zap.String("repository", "role_change")),
	}
}

func (r *roleChangeRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.RoleChange, error) {
	query := `
		SELECT id, user_id, old_role, new_role, reason, changed_by, created_at
		FROM role_changes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		r.log.Error("Failed to list role changes",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list role changes of %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var changes []*entity.RoleChange
	for rows.Next() {
		var c entity.RoleChange
		if err := rows.Scan(&c.ID, &c.UserID, &c.OldRole, &c.NewRole, &c.Reason, &c.ChangedBy, &c.CreatedAt); err != nil {
			r.log.Error("Failed to scan role change row", zap.Error(err))
			return nil, fmt.Errorf("scan role change row: %w", err)
		}
		changes = append(changes, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role change rows: %w", err)
	}

	return changes, nil
}
