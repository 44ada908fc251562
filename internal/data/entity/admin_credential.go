package entity

import (
	"time"

	"github.com/google/uuid"
)

// AdminCredential is the second, admin-only password of a user. One row per
// (user, role).
type AdminCredential struct {
	UserID       uuid.UUID `db:"user_id"`
	Role         UserRole  `db:"role"`
	PasswordHash string    `db:"password_hash"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// RoleChange records every mutation of users.role.
type RoleChange struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	OldRole   UserRole   `db:"old_role"`
	NewRole   UserRole   `db:"new_role"`
	Reason    string     `db:"reason"`
	ChangedBy *uuid.UUID `db:"changed_by"`
}
