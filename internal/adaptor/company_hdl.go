package adaptor

import (
	"net/http"

	"bizdesk/internal/dto/request"
	"bizdesk/internal/usecase"
	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

type CompanyHandler struct {
	service usecase.CompanyService
	log     *zap.Logger
}

func NewCompanyHandler(service usecase.CompanyService, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		log:     log.With(zap.String("handler", "company")),
	}
}

// Create handles POST /api/companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateCompanyRequest
	if !bindJSON(w, r, &req) {
		return
	}

	company, err := h.service.Create(r.Context(), owner, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create company")
		return
	}

	utils.ResponseCreated(w, "Company created", company)
}

// Get handles GET /api/companies/{id}
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	company, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "get company")
		return
	}

	utils.ResponseSuccess(w, "success", company)
}
