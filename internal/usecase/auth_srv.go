package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, meta SessionMeta) (*response.AuthResponse, error)
	SendOTP(ctx context.Context, req *request.SendOTPRequest) (*response.OTPDispatchResponse, error)
	VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest, meta SessionMeta) (*response.AuthResponse, error)
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
	Logout(ctx context.Context, token string) error
}

type authService struct {
	users    repository.UserRepository
	sessions SessionService
	otps     *otp.Cache
	notifier notify.Notifier
	log      *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions SessionService,
	otps *otp.Cache,
	notifier notify.Notifier,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		otps:     otps,
		notifier: notifier,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	// 1. Cek email sudah terdaftar
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	// 2. Cek phone
	if req.Phone != nil {
		existing, err = s.users.FindByPhone(ctx, *req.Phone)
		if err != nil {
			return nil, storeErr(err)
		}
		if existing != nil {
			return nil, ErrPhoneTaken
		}
	}

	// 3. Hash password
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to process password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hashed,
		Role:         entity.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeErr(err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	// 4. Kirim OTP verifikasi; registration stands even if delivery fails
	return s.verificationPrompt(ctx, user)
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, meta SessionMeta) (*response.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	// Unverified accounts get a fresh code and no session
	if !user.EmailVerified {
		s.log.Info("Login requires email verification", zap.String("user_id", user.ID.String()))
		return s.verificationPrompt(ctx, user)
	}

	session, err := s.sessions.Issue(ctx, user.ID, entity.SessionKindUser, meta)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return authenticated(user, nil, session), nil
}

func (s *authService) SendOTP(ctx context.Context, req *request.SendOTPRequest) (*response.OTPDispatchResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return withheldDispatch(s.otps, s.log, notify.ChannelEmail, email, "unknown email"), nil
	}

	purpose := entity.OTPPurpose(req.Purpose)
	subject := "Reset your password"
	if purpose == entity.OTPPurposeEmailVerification {
		if user.EmailVerified {
			return withheldDispatch(s.otps, s.log, notify.ChannelEmail, email, "already verified"), nil
		}
		subject = "Verify your email"
	}

	return s.dispatchEmailCode(ctx, user, purpose, subject)
}

func (s *authService) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest, meta SessionMeta) (*response.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, otp.ErrNotFound
	}

	key := otp.Key(string(entity.OTPPurposeEmailVerification), email)
	if err := checkCode(ctx, s.otps, s.log, key, req.OTP, user.ID); err != nil {
		return nil, err
	}

	if !user.EmailVerified {
		user.EmailVerified = true
		user.UpdatedAt = time.Now()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, storeErr(err)
		}
	}
	consumeCode(ctx, s.otps, s.log, key)

	session, err := s.sessions.Issue(ctx, user.ID, entity.SessionKindUser, meta)
	if err != nil {
		return nil, err
	}

	s.log.Info("Email verified", zap.String("user_id", user.ID.String()))
	return authenticated(user, nil, session), nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return storeErr(err)
	}
	if user == nil {
		return otp.ErrNotFound
	}

	key := otp.Key(string(entity.OTPPurposePasswordReset), email)
	if err := checkCode(ctx, s.otps, s.log, key, req.OTP, user.ID); err != nil {
		return err
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to process password: %w", err)
	}
	user.PasswordHash = hashed
	// possession of the mailbox is proven by the code
	user.EmailVerified = true
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return storeErr(err)
	}
	consumeCode(ctx, s.otps, s.log, key)

	if err := s.sessions.RevokeAll(ctx, user.ID); err != nil {
		return err
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}
	s.log.Info("User logged out", zap.String("token", utils.TokenPrefix(token)))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *authService) verificationPrompt(ctx context.Context, user *entity.User) (*response.AuthResponse, error) {
	dispatch, err := s.dispatchEmailCode(ctx, user, entity.OTPPurposeEmailVerification, "Verify your email")
	if err != nil {
		return nil, err
	}
	return &response.AuthResponse{
		NeedsVerification: true,
		Email:             user.Email,
		Delivery:          &dispatch.Delivery,
	}, nil
}

func (s *authService) dispatchEmailCode(ctx context.Context, user *entity.User, purpose entity.OTPPurpose, subject string) (*response.OTPDispatchResponse, error) {
	return dispatchCode(ctx, s.otps, s.notifier, s.log, codeRequest{
		Key:       otp.Key(string(purpose), user.Email),
		OwnerID:   user.ID,
		Role:      user.Role,
		Channel:   notify.ChannelEmail,
		Recipient: user.Email,
		Subject:   subject,
	})
}

func authenticated(user *entity.User, companyName *string, session *entity.Session) *response.AuthResponse {
	u := response.UserToResponse(user, companyName)
	return &response.AuthResponse{
		User:    &u,
		Session: response.SessionToResponse(session),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
