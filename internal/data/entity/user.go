package entity

import "github.com/google/uuid"

// UserRole is stored verbatim in users.role and admin_credentials.role.
type UserRole string

const (
	RoleUser         UserRole = "user"
	RoleTechnician   UserRole = "technician"
	RoleReceptionist UserRole = "receptionist"
	RoleSuperAdmin   UserRole = "superadmin"
	RoleRentalAdmin  UserRole = "rentaladmin"
	RoleEventAdmin   UserRole = "eventadmin"
	RoleEcomAdmin    UserRole = "ecomadmin"
)

type User struct {
	Base
	Name          string     `db:"name"`
	Email         string     `db:"email"`
	Phone         *string    `db:"phone"`
	PasswordHash  string     `db:"password_hash"`
	EmailVerified bool       `db:"is_email_verified"`
	PhoneVerified bool       `db:"is_phone_verified"`
	Role          UserRole   `db:"role"`
	CompanyID     *uuid.UUID `db:"company_id"`
}

// ResolvedUser is what a verified session yields. It deliberately has no
// credential field.
type ResolvedUser struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Phone         *string     `json:"phone,omitempty"`
	EmailVerified bool        `json:"is_email_verified"`
	PhoneVerified bool        `json:"is_phone_verified"`
	Role          UserRole    `json:"role"`
	CompanyID     *uuid.UUID  `json:"company_id,omitempty"`
	CompanyName   *string     `json:"company_name,omitempty"`
	SessionKind   SessionKind `json:"session_kind"`
}
