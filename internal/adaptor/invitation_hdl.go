package adaptor

import (
	"net/http"

	"bizdesk/internal/dto/request"
	"bizdesk/internal/usecase"
	"bizdesk/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InvitationHandler struct {
	service usecase.InvitationService
	cookies cookieJar
	log     *zap.Logger
}

func NewInvitationHandler(service usecase.InvitationService, cookies cookieJar, log *zap.Logger) *InvitationHandler {
	return &InvitationHandler{
		service: service,
		cookies: cookies,
		log:     log.With(zap.String("handler", "invitation")),
	}
}

// Create handles POST /api/invitations (admin roles)
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	inviter, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateInvitationRequest
	if !bindJSON(w, r, &req) {
		return
	}

	invitation, err := h.service.Create(r.Context(), inviter, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create invitation")
		return
	}

	utils.ResponseCreated(w, "Invitation created", invitation)
}

// Get handles GET /api/invitations/{token} (public)
func (h *InvitationHandler) Get(w http.ResponseWriter, r *http.Request) {
	invitation, err := h.service.Get(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		handleServiceError(w, h.log, err, "get invitation")
		return
	}

	utils.ResponseSuccess(w, "success", invitation)
}

// Accept handles POST /api/invitations/{token}/accept (public)
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req request.AcceptInvitationRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Accept(r.Context(), chi.URLParam(r, "token"), &req, sessionMeta(r))
	if err != nil {
		handleServiceError(w, h.log, err, "accept invitation")
		return
	}

	if resp.Session != nil {
		h.cookies.setUser(w, resp.Session.Token)
	}
	utils.ResponseSuccess(w, "Invitation accepted", resp)
}
