package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"bizdesk/internal/data/entity"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sessionWithUserColumns = []string{
	"id", "user_id", "token", "kind", "user_agent", "ip_address", "expires_at", "created_at",
	"id", "name", "email", "phone", "password_hash", "is_email_verified",
	"is_phone_verified", "role", "company_id", "created_at", "updated_at",
	"name",
}

func newSessionRepo(t *testing.T) (pgxmock.PgxPoolIface, SessionRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewSessionRepository(mock, zap.NewNop())
}

func TestSessionRepository_FindWithUser(t *testing.T) {
	mock, repo := newSessionRepo(t)

	sessionID, userID := uuid.New(), uuid.New()
	now := time.Now()
	company := "Acme Rentals"

	mock.ExpectQuery("FROM sessions s").
		WithArgs("tok").
		WillReturnRows(pgxmock.NewRows(sessionWithUserColumns).AddRow(
			sessionID, userID, "tok", entity.SessionKindAdmin, nil, nil, now.Add(time.Hour), now,
			userID, "Ana", "ana@example.com", nil, "$2a$hash", true,
			false, entity.RoleUser, nil, now, now,
			&company,
		))

	found, err := repo.FindWithUser(context.Background(), "tok")

	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, userID, found.Session.UserID)
	assert.Equal(t, entity.SessionKindAdmin, found.Session.Kind)
	assert.Equal(t, "ana@example.com", found.User.Email)
	assert.Equal(t, entity.RoleUser, found.User.Role)
	require.NotNil(t, found.CompanyName)
	assert.Equal(t, company, *found.CompanyName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Create_StoresKind(t *testing.T) {
	mock, repo := newSessionRepo(t)
	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		UserID:     uuid.New(),
		Token:      "tok",
		Kind:       entity.SessionKindAdmin,
		ExpiresAt:  now.Add(time.Hour),
	}

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(session.ID, session.UserID, "tok", entity.SessionKindAdmin, pgxmock.AnyArg(), pgxmock.AnyArg(), session.ExpiresAt, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_FindWithUser_NotFound(t *testing.T) {
	mock, repo := newSessionRepo(t)

	mock.ExpectQuery("FROM sessions s").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(sessionWithUserColumns))

	found, err := repo.FindWithUser(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_FindWithUser_DBError(t *testing.T) {
	mock, repo := newSessionRepo(t)

	mock.ExpectQuery("FROM sessions s").
		WithArgs("tok").
		WillReturnError(errors.New("connection reset"))

	found, err := repo.FindWithUser(context.Background(), "tok")

	assert.Error(t, err)
	assert.Nil(t, found)
}

func TestSessionRepository_Delete_Idempotent(t *testing.T) {
	mock, repo := newSessionRepo(t)

	mock.ExpectExec("DELETE FROM sessions WHERE token").
		WithArgs("tok").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM sessions WHERE token").
		WithArgs("tok").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	removed, err := repo.Delete(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	mock, repo := newSessionRepo(t)
	now := time.Now()

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := repo.DeleteExpired(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
