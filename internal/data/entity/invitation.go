package entity

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
)

type Invitation struct {
	BaseSimple
	Token      string           `db:"token"`
	Email      string           `db:"email"`
	Role       UserRole         `db:"role"`
	CompanyID  *uuid.UUID       `db:"company_id"`
	InvitedBy  uuid.UUID        `db:"invited_by"`
	Status     InvitationStatus `db:"status"`
	ExpiresAt  time.Time        `db:"expires_at"`
	AcceptedAt *time.Time       `db:"accepted_at"`
}

func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// InvitationAcceptance is everything accepting an invitation writes.
// NewUser is set when the invitee had no account; Change is nil when
// neither role nor company moves.
type InvitationAcceptance struct {
	InvitationID uuid.UUID
	AcceptedAt   time.Time
	NewUser      *User
	Change       *RoleChange
	CompanyID    *uuid.UUID
}
