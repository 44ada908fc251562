package repository

import (
	"context"
	"errors"

	"bizdesk/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by writes that matched no row. Reads return (nil, nil).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

type Repository struct {
	User            UserRepository
	Session         SessionRepository
	OTP             OTPRepository
	AdminCredential AdminCredentialRepository
	RoleChange      RoleChangeRepository
	Company         CompanyRepository
	Invitation      InvitationRepository
	Complaint       ComplaintRepository

	db database.PgxIface
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:            NewUserRepository(db, log),
		Session:         NewSessionRepository(db, log),
		OTP:             NewOTPRepository(db, log),
		AdminCredential: NewAdminCredentialRepository(db, log),
		RoleChange:      NewRoleChangeRepository(db, log),
		Company:         NewCompanyRepository(db, log),
		Invitation:      NewInvitationRepository(db, log),
		Complaint:       NewComplaintRepository(db, log),
		db:              db,
	}
}

// Ping reports whether the database answers.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
