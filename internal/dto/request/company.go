package request

type CreateCompanyRequest struct {
	Name string `json:"name" validate:"required,min=2,max=150"`
}

type CreateInvitationRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Role      string  `json:"role" validate:"required"`
	CompanyID *string `json:"company_id,omitempty" validate:"omitempty,uuid"`
}

// AcceptInvitationRequest: Name is required only when no account exists yet
// for the invited email.
type AcceptInvitationRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,phone"`
}
