package adaptor

import (
	"net/http"

	"bizdesk/internal/dto/request"
	"bizdesk/internal/usecase"
	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

type ComplaintHandler struct {
	service usecase.ComplaintService
	log     *zap.Logger
}

func NewComplaintHandler(service usecase.ComplaintService, log *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		service: service,
		log:     log.With(zap.String("handler", "complaint")),
	}
}

// Create handles POST /api/complaints
func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	author, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateComplaintRequest
	if !bindJSON(w, r, &req) {
		return
	}

	complaint, err := h.service.Create(r.Context(), author, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create complaint")
		return
	}

	utils.ResponseCreated(w, "Complaint submitted", complaint)
}

// ListOwn handles GET /api/complaints
func (h *ComplaintHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	complaints, err := h.service.ListOwn(r.Context(), userID, pageFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list complaints")
		return
	}

	utils.ResponseSuccess(w, "success", complaints)
}

// ListForStaff handles GET /api/technician/complaints
func (h *ComplaintHandler) ListForStaff(w http.ResponseWriter, r *http.Request) {
	staff, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	complaints, err := h.service.ListForStaff(r.Context(), staff, pageFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list staff complaints")
		return
	}

	utils.ResponseSuccess(w, "success", complaints)
}

// UpdateStatus handles PATCH /api/technician/complaints/{id}
func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	staff, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateComplaintStatusRequest
	if !bindJSON(w, r, &req) {
		return
	}

	complaint, err := h.service.UpdateStatus(r.Context(), staff, id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update complaint status")
		return
	}

	utils.ResponseSuccess(w, "Status updated", complaint)
}

func pageFromQuery(r *http.Request) *request.PageQuery {
	query := r.URL.Query()
	return &request.PageQuery{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), request.DefaultPerPage),
	}
}
