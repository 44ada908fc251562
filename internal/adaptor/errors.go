package adaptor

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"bizdesk/internal/usecase"
	"bizdesk/pkg/otp"
	"bizdesk/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleServiceError maps usecase errors onto the JSON envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrStoreUnavailable):
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")

	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrMissingToken),
		errors.Is(err, usecase.ErrInvalidSession),
		errors.Is(err, usecase.ErrSessionExpired):
		log.Warn(operation+" failed - unauthenticated", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrRoleForbidden),
		errors.Is(err, usecase.ErrNoCompany):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrNotFound):
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, usecase.ErrPhoneTaken),
		errors.Is(err, usecase.ErrAlreadyVerified),
		errors.Is(err, usecase.ErrAlreadyMember),
		errors.Is(err, usecase.ErrCompanyNameTaken),
		errors.Is(err, usecase.ErrInvitationPending),
		errors.Is(err, usecase.ErrInvitationUsed):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrInvitationExpired):
		utils.ResponseJSON(w, http.StatusGone, false, err.Error(), nil, nil)

	case errors.Is(err, otp.ErrNotFound),
		errors.Is(err, otp.ErrExpired),
		errors.Is(err, otp.ErrMismatch):
		log.Warn(operation+" failed - invalid OTP", zap.Error(err))
		utils.ResponseBadRequest(w, "invalid or expired code", map[string]string{"otp": err.Error()})

	case errors.Is(err, usecase.ErrInvalidRole),
		errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrSelfAction),
		errors.Is(err, usecase.ErrNameRequired),
		errors.Is(err, usecase.ErrNoPhone):
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// bindJSON decodes and validates the body into dst, writing the 400 itself
// when it returns false.
func bindJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}
	return true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

func sessionMeta(r *http.Request) usecase.SessionMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return usecase.SessionMeta{UserAgent: r.UserAgent(), IPAddress: ip}
}
