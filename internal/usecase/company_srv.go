package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"bizdesk/internal/data/entity"
	"bizdesk/internal/data/repository"
	"bizdesk/internal/dto/request"
	"bizdesk/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CompanyService interface {
	Create(ctx context.Context, owner *entity.ResolvedUser, req *request.CreateCompanyRequest) (*response.CompanyResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*response.CompanyResponse, error)
}

type companyService struct {
	companies repository.CompanyRepository
	log       *zap.Logger
}

func NewCompanyService(companies repository.CompanyRepository, log *zap.Logger) CompanyService {
	return &companyService{
		companies: companies,
		log:       log.With(zap.String("service", "company")),
	}
}

func (s *companyService) Create(ctx context.Context, owner *entity.ResolvedUser, req *request.CreateCompanyRequest) (*response.CompanyResponse, error) {
	if owner.CompanyID != nil {
		return nil, ErrAlreadyMember
	}

	now := time.Now()
	company := &entity.Company{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:    strings.TrimSpace(req.Name),
		OwnerID: owner.ID,
	}

	if err := s.companies.Create(ctx, company); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCompanyNameTaken
		}
		return nil, storeErr(err)
	}

	s.log.Info("Company created",
		zap.String("company_id", company.ID.String()),
		zap.String("owner_id", owner.ID.String()))

	resp := response.CompanyToResponse(company)
	return &resp, nil
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*response.CompanyResponse, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if company == nil {
		return nil, ErrNotFound
	}

	resp := response.CompanyToResponse(company)
	return &resp, nil
}
