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

type ComplaintService interface {
	Create(ctx context.Context, author *entity.ResolvedUser, req *request.CreateComplaintRequest) (*response.ComplaintResponse, error)
	ListOwn(ctx context.Context, userID uuid.UUID, page *request.PageQuery) ([]response.ComplaintResponse, error)
	ListForStaff(ctx context.Context, staff *entity.ResolvedUser, page *request.PageQuery) ([]response.ComplaintResponse, error)
	UpdateStatus(ctx context.Context, staff *entity.ResolvedUser, id uuid.UUID, req *request.UpdateComplaintStatusRequest) (*response.ComplaintResponse, error)
}

type complaintService struct {
	complaints repository.ComplaintRepository
	log        *zap.Logger
}

func NewComplaintService(complaints repository.ComplaintRepository, log *zap.Logger) ComplaintService {
	return &complaintService{
		complaints: complaints,
		log:        log.With(zap.String("service", "complaint")),
	}
}

func (s *complaintService) Create(ctx context.Context, author *entity.ResolvedUser, req *request.CreateComplaintRequest) (*response.ComplaintResponse, error) {
	now := time.Now()
	c := &entity.Complaint{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:      author.ID,
		CompanyID:   author.CompanyID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Status:      entity.ComplaintOpen,
	}

	if err := s.complaints.Create(ctx, c); err != nil {
		return nil, storeErr(err)
	}

	s.log.Info("Complaint filed",
		zap.String("complaint_id", c.ID.String()),
		zap.String("user_id", author.ID.String()))

	resp := response.ComplaintToResponse(c)
	return &resp, nil
}

func (s *complaintService) ListOwn(ctx context.Context, userID uuid.UUID, page *request.PageQuery) ([]response.ComplaintResponse, error) {
	list, err := s.complaints.FindByUser(ctx, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, storeErr(err)
	}
	return response.ComplaintsToResponse(list), nil
}

// ListForStaff lists the complaints of the staff member's company. A
// superadmin sees every company.
func (s *complaintService) ListForStaff(ctx context.Context, staff *entity.ResolvedUser, page *request.PageQuery) ([]response.ComplaintResponse, error) {
	scope, err := staffScope(staff)
	if err != nil {
		return nil, err
	}

	list, err := s.complaints.FindByCompany(ctx, scope, page.Limit(), page.Offset())
	if err != nil {
		return nil, storeErr(err)
	}
	return response.ComplaintsToResponse(list), nil
}

func (s *complaintService) UpdateStatus(ctx context.Context, staff *entity.ResolvedUser, id uuid.UUID, req *request.UpdateComplaintStatusRequest) (*response.ComplaintResponse, error) {
	scope, err := staffScope(staff)
	if err != nil {
		return nil, err
	}

	c, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	// complaints of other companies are invisible, not forbidden
	if c == nil || (scope != nil && (c.CompanyID == nil || *c.CompanyID != *scope)) {
		return nil, ErrNotFound
	}

	next := entity.ComplaintStatus(req.Status)
	if !c.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	c.Status = next
	if next == entity.ComplaintInProgress {
		c.AssignedTo = &staff.ID
	}
	c.UpdatedAt = time.Now()

	if err := s.complaints.UpdateStatus(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	s.log.Info("Complaint status changed",
		zap.String("complaint_id", c.ID.String()),
		zap.String("status", string(c.Status)),
		zap.String("staff_id", staff.ID.String()))

	resp := response.ComplaintToResponse(c)
	return &resp, nil
}

func staffScope(staff *entity.ResolvedUser) (*uuid.UUID, error) {
	if staff.Role == entity.RoleSuperAdmin {
		return nil, nil
	}
	if staff.CompanyID == nil {
		return nil, ErrNoCompany
	}
	return staff.CompanyID, nil
}
