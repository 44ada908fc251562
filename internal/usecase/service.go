package usecase

import (
	"bizdesk/internal/data/repository"
	"bizdesk/pkg/notify"
	"bizdesk/pkg/otp"
	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Session    SessionService
	Auth       AuthService
	User       UserService
	Admin      AdminService
	Company    CompanyService
	Invitation InvitationService
	Complaint  ComplaintService
}

func NewService(
	repo *repository.Repository,
	otps *otp.Cache,
	notifier notify.Notifier,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	sessions := NewSessionService(repo.Session, config.Session, log)

	return &Service{
		Session:    sessions,
		Auth:       NewAuthService(repo.User, sessions, otps, notifier, log),
		User:       NewUserService(repo.User, repo.Company, sessions, otps, notifier, log),
		Admin:      NewAdminService(repo, sessions, otps, notifier, log),
		Company:    NewCompanyService(repo.Company, log),
		Invitation: NewInvitationService(repo, sessions, notifier, config, log),
		Complaint:  NewComplaintService(repo.Complaint, log),
	}
}
