package adaptor

import (
	"net/http"

	"bizdesk/internal/dto/request"
	"bizdesk/internal/usecase"
	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	cookies cookieJar
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, cookies cookieJar, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		cookies: cookies,
		log:     log.With(zap.String("handler", "user")),
	}
}

// GetProfile handles GET /api/user/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "success", profile)
}

// UpdateProfile handles PUT /api/user/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateProfileRequest
	if !bindJSON(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update profile")
		return
	}

	utils.ResponseSuccess(w, "Profile updated", profile)
}

// ChangePassword handles PUT /api/user/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	token, _ := utils.GetTokenFromContext(r.Context())

	var req request.ChangePasswordRequest
	if !bindJSON(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, token, &req); err != nil {
		handleServiceError(w, h.log, err, "change password")
		return
	}

	utils.ResponseSuccess(w, "Password changed. Other sessions were signed out.", nil)
}

// SendPhoneOTP handles POST /api/user/phone/send-otp
func (h *UserHandler) SendPhoneOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	resp, err := h.service.SendPhoneOTP(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "send phone OTP")
		return
	}

	utils.ResponseSuccess(w, "Verification code issued", resp)
}

// VerifyPhone handles POST /api/user/phone/verify
func (h *UserHandler) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.VerifyPhoneRequest
	if !bindJSON(w, r, &req) {
		return
	}

	profile, err := h.service.VerifyPhone(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "verify phone")
		return
	}

	utils.ResponseSuccess(w, "Phone verified", profile)
}

// DeleteAccount handles DELETE /api/user/account
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.DeleteAccountRequest
	if !bindJSON(w, r, &req) {
		return
	}

	if err := h.service.DeleteAccount(r.Context(), userID, &req); err != nil {
		handleServiceError(w, h.log, err, "delete account")
		return
	}

	h.cookies.clearUser(w)
	utils.ResponseSuccess(w, "Account deleted", nil)
}
