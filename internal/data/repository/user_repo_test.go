package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"bizdesk/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserRepo(t *testing.T) (pgxmock.PgxPoolIface, UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock, zap.NewNop())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	mock, repo := newUserRepo(t)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	user, err := repo.FindByEmail(context.Background(), "nobody@example.com")

	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	mock, repo := newUserRepo(t)
	now := time.Now()
	user := &entity.User{
		Base:  entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:  "Ana",
		Email: "ana@example.com",
		Role:  entity.RoleUser,
	}

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), user)

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ChangeRole_Commits(t *testing.T) {
	mock, repo := newUserRepo(t)
	by := uuid.New()
	change := &entity.RoleChange{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:     uuid.New(),
		OldRole:    entity.RoleUser,
		NewRole:    entity.RoleTechnician,
		Reason:     "invitation",
		ChangedBy:  &by,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").
		WithArgs(change.UserID, change.NewRole, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM admin_credentials").
		WithArgs(change.UserID, change.NewRole).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO role_changes").
		WithArgs(change.ID, change.UserID, change.OldRole, change.NewRole, change.Reason, pgxmock.AnyArg(), change.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.ChangeRole(context.Background(), change, nil)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ChangeRole_DemotionDropsAdminCredentials(t *testing.T) {
	mock, repo := newUserRepo(t)
	change := &entity.RoleChange{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:     uuid.New(),
		OldRole:    entity.RoleRentalAdmin,
		NewRole:    entity.RoleUser,
		Reason:     "assigned by superadmin",
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM admin_credentials WHERE user_id = \\$1 AND role <> \\$2").
		WithArgs(change.UserID, entity.RoleUser).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO role_changes").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ChangeRole(context.Background(), change, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ChangeRole_RollsBackOnCredentialCleanupError(t *testing.T) {
	mock, repo := newUserRepo(t)
	change := &entity.RoleChange{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:     uuid.New(),
		OldRole:    entity.RoleEventAdmin,
		NewRole:    entity.RoleTechnician,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM admin_credentials").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.ChangeRole(context.Background(), change, nil)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ChangeRole_RollsBackOnMissingUser(t *testing.T) {
	mock, repo := newUserRepo(t)
	change := &entity.RoleChange{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:     uuid.New(),
		OldRole:    entity.RoleUser,
		NewRole:    entity.RoleSuperAdmin,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.ChangeRole(context.Background(), change, nil)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	mock, repo := newUserRepo(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM users").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM users").
		WithArgs(id).
		WillReturnError(errors.New("boom"))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.Error(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
