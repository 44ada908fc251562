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
	"bizdesk/pkg/otp"
	"bizdesk/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const reasonLoginReconciliation = "admin login role reconciliation"

type AdminService interface {
	Login(ctx context.Context, req *request.AdminLoginRequest, meta SessionMeta) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	SetCredential(ctx context.Context, admin *entity.ResolvedUser, req *request.SetAdminCredentialRequest) error
	ForgotPassword(ctx context.Context, req *request.AdminForgotPasswordRequest) (*response.OTPDispatchResponse, error)
	ResetPassword(ctx context.Context, req *request.AdminResetPasswordRequest) error
	ListUsers(ctx context.Context, req *request.PageQuery) (*response.PageResponse[response.UserResponse], error)
	ChangeUserRole(ctx context.Context, actor *entity.ResolvedUser, userID uuid.UUID, req *request.UpdateUserRoleRequest) (*response.UserResponse, error)
	RoleHistory(ctx context.Context, userID uuid.UUID) ([]response.RoleChangeResponse, error)
	DeleteUser(ctx context.Context, actor *entity.ResolvedUser, userID uuid.UUID) error
}

type adminService struct {
	repo     *repository.Repository
	sessions SessionService
	otps     *otp.Cache
	notifier notify.Notifier
	log      *zap.Logger
}

func NewAdminService(
	repo *repository.Repository,
	sessions SessionService,
	otps *otp.Cache,
	notifier notify.Notifier,
	log *zap.Logger,
) AdminService {
	return &adminService{
		repo:     repo,
		sessions: sessions,
		otps:     otps,
		notifier: notifier,
		log:      log.With(zap.String("service", "admin")),
	}
}

// Login requires both the primary password and the admin password of an
// admin role, and the stored role must already be an admin role. When the
// admin password matches a credential for another admin role, the login
// fails with ErrRoleForbidden unless the caller set ReconcileRole, in which
// case the stored role is rewritten and audited.
func (s *adminService) Login(ctx context.Context, req *request.AdminLoginRequest, meta SessionMeta) (*response.AuthResponse, error) {
	user, err := s.findByEmailOrPhone(ctx, req.EmailOrPhone)
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid admin login", zap.String("identifier", req.EmailOrPhone))
		return nil, ErrInvalidCredentials
	}
	if !access.IsAdminRole(user.Role) {
		s.log.Warn("Admin login by non-admin account",
			zap.String("user_id", user.ID.String()),
			zap.String("role", string(user.Role)))
		return nil, ErrInvalidCredentials
	}

	matched, err := s.matchCredential(ctx, user, req.AdminPassword)
	if err != nil {
		return nil, err
	}
	if matched == nil {
		s.log.Warn("Admin password rejected", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	if matched.Role != user.Role {
		if !req.ReconcileRole {
			s.log.Warn("Admin credential role differs from stored role",
				zap.String("user_id", user.ID.String()),
				zap.String("stored_role", string(user.Role)),
				zap.String("credential_role", string(matched.Role)),
			)
			return nil, ErrRoleForbidden
		}

		change := newRoleChange(user.ID, user.Role, matched.Role, reasonLoginReconciliation, &user.ID)
		if err := s.repo.User.ChangeRole(ctx, change, nil); err != nil {
			return nil, storeErr(err)
		}
		s.log.Warn("Role reconciled on admin login",
			zap.String("user_id", user.ID.String()),
			zap.String("old_role", string(change.OldRole)),
			zap.String("new_role", string(change.NewRole)),
		)
		user.Role = matched.Role
	}

	session, err := s.sessions.Issue(ctx, user.ID, entity.SessionKindAdmin, meta)
	if err != nil {
		return nil, err
	}

	s.log.Info("Admin logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	return authenticated(user, nil, session), nil
}

func (s *adminService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}
	s.log.Info("Admin logged out", zap.String("token", utils.TokenPrefix(token)))
	return nil
}

func (s *adminService) SetCredential(ctx context.Context, admin *entity.ResolvedUser, req *request.SetAdminCredentialRequest) error {
	if !access.IsAdminRole(admin.Role) {
		return ErrRoleForbidden
	}

	user, err := s.repo.User.FindByID(ctx, admin.ID)
	if err != nil {
		return storeErr(err)
	}
	if user == nil {
		return ErrNotFound
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	return s.storeCredential(ctx, user, req.AdminPassword)
}

func (s *adminService) ForgotPassword(ctx context.Context, req *request.AdminForgotPasswordRequest) (*response.OTPDispatchResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return withheldDispatch(s.otps, s.log, notify.ChannelEmail, email, "unknown email"), nil
	}
	if !access.IsAdminRole(user.Role) {
		return withheldDispatch(s.otps, s.log, notify.ChannelEmail, email, "not an admin"), nil
	}

	return dispatchCode(ctx, s.otps, s.notifier, s.log, codeRequest{
		Key:       otp.Key(string(entity.OTPPurposeAdminPasswordReset), user.Email),
		OwnerID:   user.ID,
		Role:      user.Role,
		Channel:   notify.ChannelEmail,
		Recipient: user.Email,
		Subject:   "Reset your admin password",
	})
}

func (s *adminService) ResetPassword(ctx context.Context, req *request.AdminResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return storeErr(err)
	}
	if user == nil {
		return otp.ErrNotFound
	}
	if !access.IsAdminRole(user.Role) {
		return ErrRoleForbidden
	}

	key := otp.Key(string(entity.OTPPurposeAdminPasswordReset), email)
	if err := checkCode(ctx, s.otps, s.log, key, req.OTP, user.ID); err != nil {
		return err
	}

	if err := s.storeCredential(ctx, user, req.NewAdminPassword); err != nil {
		return err
	}
	consumeCode(ctx, s.otps, s.log, key)

	return s.sessions.RevokeAll(ctx, user.ID)
}

func (s *adminService) ListUsers(ctx context.Context, req *request.PageQuery) (*response.PageResponse[response.UserResponse], error) {
	req.Normalize()

	users, err := s.repo.User.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, storeErr(err)
	}

	total, err := s.repo.User.CountAll(ctx)
	if err != nil {
		return nil, storeErr(err)
	}

	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user, nil)
	}

	page := response.NewPageResponse(userResponses, req.Page, req.PerPage, total)
	s.log.Debug("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("total_pages", page.Pagination.TotalPages),
	)

	return page, nil
}

func (s *adminService) ChangeUserRole(ctx context.Context, actor *entity.ResolvedUser, userID uuid.UUID, req *request.UpdateUserRoleRequest) (*response.UserResponse, error) {
	role, err := access.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, req.Role)
	}
	if actor.ID == userID {
		return nil, ErrSelfAction
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if user.Role != role {
		reason := fmt.Sprintf("assigned by %s", actor.Role)
		change := newRoleChange(user.ID, user.Role, role, reason, &actor.ID)
		if err := s.repo.User.ChangeRole(ctx, change, nil); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, storeErr(err)
		}
		user.Role = role
	}

	resp := response.UserToResponse(user, nil)
	return &resp, nil
}

func (s *adminService) RoleHistory(ctx context.Context, userID uuid.UUID) ([]response.RoleChangeResponse, error) {
	changes, err := s.repo.RoleChange.FindByUser(ctx, userID, 50)
	if err != nil {
		return nil, storeErr(err)
	}

	out := make([]response.RoleChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, response.RoleChangeToResponse(c))
	}
	return out, nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor *entity.ResolvedUser, userID uuid.UUID) error {
	if actor.ID == userID {
		return ErrSelfAction
	}

	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.User.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return storeErr(err)
	}

	s.log.Info("User deleted by admin",
		zap.String("user_id", userID.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *adminService) findByEmailOrPhone(ctx context.Context, identifier string) (*entity.User, error) {
	identifier = strings.TrimSpace(identifier)

	var (
		user *entity.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.repo.User.FindByEmail(ctx, normalizeEmail(identifier))
	} else {
		user, err = s.repo.User.FindByPhone(ctx, identifier)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

func (s *adminService) storeCredential(ctx context.Context, user *entity.User, adminPassword string) error {
	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to process password: %w", err)
	}

	cred := &entity.AdminCredential{
		UserID:       user.ID,
		Role:         user.Role,
		PasswordHash: hashed,
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.AdminCredential.Upsert(ctx, cred); err != nil {
		return storeErr(err)
	}

	s.log.Info("Admin credential stored",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	return nil
}

// matchCredential returns the admin credential whose hash matches password.
// The credential for the stored role is tried first; the others only matter
// for role reconciliation.
func (s *adminService) matchCredential(ctx context.Context, user *entity.User, password string) (*entity.AdminCredential, error) {
	own, err := s.repo.AdminCredential.FindByUserAndRole(ctx, user.ID, user.Role)
	if err != nil {
		return nil, storeErr(err)
	}
	if own != nil && utils.CheckPasswordHash(password, own.PasswordHash) {
		return own, nil
	}

	creds, err := s.repo.AdminCredential.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, c := range creds {
		if c.Role == user.Role || !access.IsAdminRole(c.Role) {
			continue
		}
		if utils.CheckPasswordHash(password, c.PasswordHash) {
			return c, nil
		}
	}
	return nil, nil
}

func newRoleChange(userID uuid.UUID, from, to entity.UserRole, reason string, by *uuid.UUID) *entity.RoleChange {
	return &entity.RoleChange{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:    userID,
		OldRole:   from,
		NewRole:   to,
		Reason:    reason,
		ChangedBy: by,
	}
}
