package adaptor

import (
	"net/http"

	"bizdesk/internal/dto/request"
	"bizdesk/internal/dto/response"
	"bizdesk/internal/usecase"
	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	cookies cookieJar
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, cookies cookieJar, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookies,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "register")
		return
	}

	utils.ResponseCreated(w, "Registration successful. Verify your email to continue.", resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req, sessionMeta(r))
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	h.respondAuth(w, resp, "Login successful")
}

// SendOTP handles POST /api/auth/send-otp
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req request.SendOTPRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.service.SendOTP(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "send OTP")
		return
	}

	utils.ResponseSuccess(w, "Verification code issued", resp)
}

// VerifyEmail handles POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyEmailRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.service.VerifyEmail(r.Context(), &req, sessionMeta(r))
	if err != nil {
		handleServiceError(w, h.log, err, "verify email")
		return
	}

	h.respondAuth(w, resp, "Email verified successfully")
}

// ResetPassword handles POST /api/auth/password/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !bindJSON(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "reset password")
		return
	}

	h.cookies.clearUser(w)
	utils.ResponseSuccess(w, "Password updated. Please log in again.", nil)
}

// Logout handles POST /api/auth/logout (protected)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := utils.GetTokenFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		handleServiceError(w, h.log, err, "logout")
		return
	}

	h.cookies.clearUser(w)
	utils.ResponseSuccess(w, "Logout successful", nil)
}

// Me handles GET /api/auth/me (protected)
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	utils.ResponseSuccess(w, "success", response.ResolvedToResponse(user))
}

func (h *AuthHandler) respondAuth(w http.ResponseWriter, resp *response.AuthResponse, message string) {
	if resp.NeedsVerification {
		utils.ResponseSuccess(w, "Email verification required", resp)
		return
	}

	if resp.Session != nil {
		h.cookies.setUser(w, resp.Session.Token)
	}
	utils.ResponseSuccess(w, message, resp)
}
