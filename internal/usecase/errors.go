package usecase

import (
	"errors"
	"fmt"
)

// Session verification outcomes.
var (
	ErrMissingToken     = errors.New("missing session token")
	ErrInvalidSession   = errors.New("invalid session")
	ErrSessionExpired   = errors.New("session expired")
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleForbidden      = errors.New("administrators only")
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrAlreadyVerified    = errors.New("already verified")
	ErrNoPhone            = errors.New("no phone number on account")
	ErrSelfAction         = errors.New("cannot perform this action on your own account")
	ErrAlreadyMember      = errors.New("already a member of a company")
	ErrCompanyNameTaken   = errors.New("company name already taken")
	ErrNoCompany          = errors.New("no company linked to account")
	ErrNameRequired       = errors.New("name is required for a new account")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

var (
	ErrInvitationPending = errors.New("a pending invitation already exists for this email")
	ErrInvitationExpired = errors.New("invitation expired")
	ErrInvitationUsed    = errors.New("invitation already accepted")
)

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
