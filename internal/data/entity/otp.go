package entity

import (
	"time"

	"github.com/google/uuid"
)

type OTPPurpose string

const (
	OTPPurposeEmailVerification  OTPPurpose = "email_verification"
	OTPPurposePhoneVerification  OTPPurpose = "phone_verification"
	OTPPurposePasswordReset      OTPPurpose = "password_reset"
	OTPPurposeAdminPasswordReset OTPPurpose = "admin_password_reset"
)

// OTPCode is the durable row behind the postgres OTP backend.
type OTPCode struct {
	Key       string    `db:"key"`
	Code      string    `db:"code"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Role      UserRole  `db:"role"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
