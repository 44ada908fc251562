package request

type UpdateProfileRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=100"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,phone"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type VerifyPhoneRequest struct {
	OTP string `json:"otp" validate:"required,otp"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}
