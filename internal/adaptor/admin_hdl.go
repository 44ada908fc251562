package adaptor

import (
	"net/http"

	"bizdesk/internal/dto/request"
	"bizdesk/internal/usecase"
	"bizdesk/pkg/middleware"
	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

type AdminHandler struct {
	service usecase.AdminService
	cookies cookieJar
	log     *zap.Logger
}

func NewAdminHandler(service usecase.AdminService, cookies cookieJar, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		cookies: cookies,
		log:     log.With(zap.String("handler", "admin")),
	}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.AdminLoginRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req, sessionMeta(r))
	if err != nil {
		handleServiceError(w, h.log, err, "admin login")
		return
	}

	h.cookies.setAdmin(w, resp.Session.Token)
	utils.ResponseSuccess(w, "Login successful", resp)
}

// Logout handles DELETE /api/admin/login?token=...
// The admin cookie is used when the query parameter is absent.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = middleware.ExtractToken(r, h.cookies.admin)
	}
	if token == "" {
		utils.ResponseBadRequest(w, "No token provided", nil)
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		handleServiceError(w, h.log, err, "admin logout")
		return
	}

	h.cookies.clearAdmin(w)
	utils.ResponseSuccess(w, "Logout successful", map[string]bool{"success": true})
}

// SetCredential handles PUT /api/admin/credentials
func (h *AdminHandler) SetCredential(w http.ResponseWriter, r *http.Request) {
	admin, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.SetAdminCredentialRequest
	if !bindJSON(w, r, &req) {
		return
	}

	if err := h.service.SetCredential(r.Context(), admin, &req); err != nil {
		handleServiceError(w, h.log, err, "set admin credential")
		return
	}

	utils.ResponseSuccess(w, "Admin password saved", nil)
}

// ForgotPassword handles POST /api/admin/password/forgot
func (h *AdminHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.AdminForgotPasswordRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.service.ForgotPassword(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "admin forgot password")
		return
	}

	utils.ResponseSuccess(w, "Reset code issued", resp)
}

// ResetPassword handles POST /api/admin/password/reset
func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.AdminResetPasswordRequest
	if !bindJSON(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "admin reset password")
		return
	}

	h.cookies.clearAdmin(w)
	utils.ResponseSuccess(w, "Admin password updated. Please log in again.", nil)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	req := pageFromQuery(r)

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	users, err := h.service.ListUsers(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "success", users)
}

// ChangeUserRole handles PUT /api/admin/users/{id}/role
func (h *AdminHandler) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	userID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateUserRoleRequest
	if !bindJSON(w, r, &req) {
		return
	}

	user, err := h.service.ChangeUserRole(r.Context(), actor, userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "change user role")
		return
	}

	utils.ResponseSuccess(w, "Role updated", user)
}

// RoleHistory handles GET /api/admin/users/{id}/role-changes
func (h *AdminHandler) RoleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	history, err := h.service.RoleHistory(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "role history")
		return
	}

	utils.ResponseSuccess(w, "success", history)
}

// DeleteUser handles DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	userID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), actor, userID); err != nil {
		handleServiceError(w, h.log, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted", nil)
}
