package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionKind records which login issued a session. Only admin sessions,
// issued after the admin password check, reach admin routes.
type SessionKind string

const (
	SessionKindUser  SessionKind = "user"
	SessionKindAdmin SessionKind = "admin"
)

type Session struct {
	BaseSimple
	UserID    uuid.UUID   `db:"user_id"`
	Token     string      `db:"token"`
	Kind      SessionKind `db:"kind"`
	UserAgent *string     `db:"user_agent"`
	IPAddress *string     `db:"ip_address"`
	ExpiresAt time.Time   `db:"expires_at"`
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionWithUser is a session row joined with its owner and the owner's company.
type SessionWithUser struct {
	Session     Session
	User        User
	CompanyName *string
}
