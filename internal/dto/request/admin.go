package request

// AdminLoginRequest keeps the camelCase wire names existing clients send.
type AdminLoginRequest struct {
	EmailOrPhone  string `json:"emailOrPhone" validate:"required"`
	Password      string `json:"password" validate:"required"`
	AdminPassword string `json:"adminPassword" validate:"required"`
	// ReconcileRole allows the login to rewrite the stored role to the admin
	// role whose credential matched.
	ReconcileRole bool `json:"reconcileRole"`
}

type SetAdminCredentialRequest struct {
	Password      string `json:"password" validate:"required"`
	AdminPassword string `json:"admin_password" validate:"required,min=10,max=72"`
}

type AdminForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AdminResetPasswordRequest struct {
	Email            string `json:"email" validate:"required,email"`
	OTP              string `json:"otp" validate:"required,otp"`
	NewAdminPassword string `json:"new_admin_password" validate:"required,min=10,max=72"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required"`
}
