package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bizdesk/internal/access"
	"bizdesk/internal/data/entity"
	"bizdesk/internal/data/repository"
	"bizdesk/internal/dto/request"
	"bizdesk/internal/dto/response"
	"bizdesk/pkg/notify"
	"bizdesk/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultInvitationTTL     = 7 * 24 * time.Hour
	reasonInvitationAccepted = "invitation accepted"
)

type InvitationService interface {
	Create(ctx context.Context, inviter *entity.ResolvedUser, req *request.CreateInvitationRequest) (*response.InvitationResponse, error)
	Get(ctx context.Context, token string) (*response.InvitationResponse, error)
	Accept(ctx context.Context, token string, req *request.AcceptInvitationRequest, meta SessionMeta) (*response.AuthResponse, error)
}

type invitationService struct {
	repo     *repository.Repository
	sessions SessionService
	notifier notify.Notifier
	ttl      time.Duration
	baseURL  string
	now      func() time.Time
	log      *zap.Logger
}

func NewInvitationService(
	repo *repository.Repository,
	sessions SessionService,
	notifier notify.Notifier,
	config *utils.Config,
	log *zap.Logger,
) InvitationService {
	ttl := config.Invitation.TTL
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	return &invitationService{
		repo:     repo,
		sessions: sessions,
		notifier: notifier,
		ttl:      ttl,
		baseURL:  strings.TrimRight(config.App.BaseURL, "/"),
		now:      time.Now,
		log:      log.With(zap.String("service", "invitation")),
	}
}

func (s *invitationService) Create(ctx context.Context, inviter *entity.ResolvedUser, req *request.CreateInvitationRequest) (*response.InvitationResponse, error) {
	role, err := access.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, req.Role)
	}

	isSuper := inviter.Role == entity.RoleSuperAdmin
	// only a superadmin hands out admin roles
	if access.IsAdminRole(role) && !isSuper {
		return nil, ErrRoleForbidden
	}

	companyID := inviter.CompanyID
	if req.CompanyID != nil {
		id, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return nil, ErrNotFound
		}
		if !isSuper && (inviter.CompanyID == nil || *inviter.CompanyID != id) {
			return nil, ErrRoleForbidden
		}
		companyID = &id
	}

	var companyName *string
	if companyID != nil {
		company, err := s.repo.Company.FindByID(ctx, *companyID)
		if err != nil {
			return nil, storeErr(err)
		}
		if company == nil {
			return nil, ErrNotFound
		}
		companyName = &company.Name
	}

	email := normalizeEmail(req.Email)
	now := s.now()
	pending, err := s.repo.Invitation.FindPendingByEmail(ctx, email, now)
	if err != nil {
		return nil, storeErr(err)
	}
	if pending != nil {
		return nil, ErrInvitationPending
	}

	token, err := utils.GenerateInvitationToken()
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}

	inv := &entity.Invitation{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		Token:     token,
		Email:     email,
		Role:      role,
		CompanyID: companyID,
		InvitedBy: inviter.ID,
		Status:    entity.InvitationPending,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Invitation.Create(ctx, inv); err != nil {
		return nil, storeErr(err)
	}

	link := s.baseURL + "/invitations/" + token
	delivery := deliver(ctx, s.notifier, s.log, notify.Message{
		Channel:   notify.ChannelEmail,
		Recipient: email,
		Subject:   "You have been invited",
		Body:      fmt.Sprintf("%s invited you to join as %s. Accept before %s: %s", inviter.Name, role, inv.ExpiresAt.Format(time.RFC1123), link),
	})

	s.log.Info("Invitation created",
		zap.String("invitation_id", inv.ID.String()),
		zap.String("email", email),
		zap.String("role", string(role)),
		zap.Bool("delivered", delivery.Sent),
	)

	resp := response.InvitationToResponse(inv, companyName, now)
	resp.InviteURL = link
	resp.Delivery = &delivery
	return &resp, nil
}

func (s *invitationService) Get(ctx context.Context, token string) (*response.InvitationResponse, error) {
	inv, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}

	var companyName *string
	if inv.CompanyID != nil {
		company, err := s.repo.Company.FindByID(ctx, *inv.CompanyID)
		if err != nil {
			return nil, storeErr(err)
		}
		if company != nil {
			companyName = &company.Name
		}
	}

	resp := response.InvitationToResponse(inv, companyName, s.now())
	return &resp, nil
}

// Accept applies the invitation to the account for its email, creating the
// account when none exists. Account creation, the pending to accepted flip
// and the role change commit together, so a failure leaves the invitation
// pending and two concurrent accepts cannot both succeed.
func (s *invitationService) Accept(ctx context.Context, token string, req *request.AcceptInvitationRequest, meta SessionMeta) (*response.AuthResponse, error) {
	inv, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if inv.Status == entity.InvitationAccepted {
		return nil, ErrInvitationUsed
	}
	if inv.Expired(now) {
		return nil, ErrInvitationExpired
	}

	acc := &entity.InvitationAcceptance{
		InvitationID: inv.ID,
		AcceptedAt:   now,
		CompanyID:    inv.CompanyID,
	}

	user, err := s.repo.User.FindByEmail(ctx, inv.Email)
	if err != nil {
		return nil, storeErr(err)
	}

	if user != nil {
		if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
	} else {
		user, err = s.newInvitedUser(ctx, inv, req, now)
		if err != nil {
			return nil, err
		}
		acc.NewUser = user
	}

	if user.Role != inv.Role || inv.CompanyID != nil {
		acc.Change = newRoleChange(user.ID, user.Role, inv.Role, reasonInvitationAccepted, &inv.InvitedBy)
	}

	if err := s.repo.Invitation.Accept(ctx, acc); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrInvitationUsed
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailTaken
		}
		return nil, storeErr(err)
	}

	if acc.Change != nil {
		user.Role = inv.Role
		if inv.CompanyID != nil {
			user.CompanyID = inv.CompanyID
		}
	}

	session, err := s.sessions.Issue(ctx, user.ID, entity.SessionKindUser, meta)
	if err != nil {
		return nil, err
	}

	s.log.Info("Invitation accepted",
		zap.String("invitation_id", inv.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.Bool("new_account", acc.NewUser != nil),
	)
	return authenticated(user, nil, session), nil
}

// newInvitedUser builds the account for an invitee without one. It is
// inserted together with the acceptance.
func (s *invitationService) newInvitedUser(ctx context.Context, inv *entity.Invitation, req *request.AcceptInvitationRequest, now time.Time) (*entity.User, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.Phone != nil {
		other, err := s.repo.User.FindByPhone(ctx, *req.Phone)
		if err != nil {
			return nil, storeErr(err)
		}
		if other != nil {
			return nil, ErrPhoneTaken
		}
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to process password: %w", err)
	}

	// the invitation link proves the mailbox, so the email starts verified
	return &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:          strings.TrimSpace(*req.Name),
		Email:         inv.Email,
		Phone:         req.Phone,
		PasswordHash:  hashed,
		EmailVerified: true,
		Role:          entity.RoleUser,
	}, nil
}

func (s *invitationService) find(ctx context.Context, token string) (*entity.Invitation, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	inv, err := s.repo.Invitation.FindByToken(ctx, token)
	if err != nil {
		return nil, storeErr(err)
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	return inv, nil
}
