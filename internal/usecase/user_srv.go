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

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentToken string, req *request.ChangePasswordRequest) error
	SendPhoneOTP(ctx context.Context, userID uuid.UUID) (*response.OTPDispatchResponse, error)
	VerifyPhone(ctx context.Context, userID uuid.UUID, req *request.VerifyPhoneRequest) (*response.UserResponse, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID, req *request.DeleteAccountRequest) error
}

type userService struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	sessions  SessionService
	otps      *otp.Cache
	notifier  notify.Notifier
	log       *zap.Logger
}

func NewUserService(
	users repository.UserRepository,
	companies repository.CompanyRepository,
	sessions SessionService,
	otps *otp.Cache,
	notifier notify.Notifier,
	log *zap.Logger,
) UserService {
	return &userService{
		users:     users,
		companies: companies,
		sessions:  sessions,
		otps:      otps,
		notifier:  notifier,
		log:       log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	var companyName *string
	if user.CompanyID != nil {
		company, err := us.companies.FindByID(ctx, *user.CompanyID)
		if err != nil {
			return nil, storeErr(err)
		}
		if company != nil {
			companyName = &company.Name
		}
	}

	resp := response.UserToResponse(user, companyName)
	return &resp, nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	oldPhone := user.Phone
	phoneChanged := !samePhone(user.Phone, req.Phone)
	if phoneChanged {
		if req.Phone != nil {
			other, err := us.users.FindByPhone(ctx, *req.Phone)
			if err != nil {
				return nil, storeErr(err)
			}
			if other != nil && other.ID != user.ID {
				return nil, ErrPhoneTaken
			}
		}
		// a new number has to be verified again
		user.Phone = req.Phone
		user.PhoneVerified = false
	}
	user.UpdatedAt = time.Now()

	if err := us.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPhoneTaken
		}
		return nil, storeErr(err)
	}
	if phoneChanged && oldPhone != nil {
		// a code sent to the old number proves nothing about the new one
		consumeCode(ctx, us.otps, us.log, phoneCodeKey(user.ID, *oldPhone))
	}

	us.log.Info("Profile updated", zap.String("user_id", user.ID.String()))
	resp := response.UserToResponse(user, nil)
	return &resp, nil
}

func (us *userService) ChangePassword(ctx context.Context, userID uuid.UUID, currentToken string, req *request.ChangePasswordRequest) error {
	user, err := us.find(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to process password: %w", err)
	}
	user.PasswordHash = hashed
	user.UpdatedAt = time.Now()

	if err := us.users.Update(ctx, user); err != nil {
		return storeErr(err)
	}

	// the session making this request stays valid
	if err := us.sessions.RevokeOthers(ctx, user.ID, currentToken); err != nil {
		return err
	}

	us.log.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (us *userService) SendPhoneOTP(ctx context.Context, userID uuid.UUID) (*response.OTPDispatchResponse, error) {
	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Phone == nil || *user.Phone == "" {
		return nil, ErrNoPhone
	}
	if user.PhoneVerified {
		return nil, ErrAlreadyVerified
	}

	return dispatchCode(ctx, us.otps, us.notifier, us.log, codeRequest{
		Key:       phoneCodeKey(user.ID, *user.Phone),
		OwnerID:   user.ID,
		Role:      user.Role,
		Channel:   notify.ChannelSMS,
		Recipient: *user.Phone,
	})
}

func (us *userService) VerifyPhone(ctx context.Context, userID uuid.UUID, req *request.VerifyPhoneRequest) (*response.UserResponse, error) {
	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Phone == nil {
		return nil, ErrNoPhone
	}

	key := phoneCodeKey(user.ID, *user.Phone)
	if err := checkCode(ctx, us.otps, us.log, key, req.OTP, user.ID); err != nil {
		return nil, err
	}

	user.PhoneVerified = true
	user.UpdatedAt = time.Now()
	if err := us.users.Update(ctx, user); err != nil {
		return nil, storeErr(err)
	}
	consumeCode(ctx, us.otps, us.log, key)

	us.log.Info("Phone verified", zap.String("user_id", user.ID.String()))
	resp := response.UserToResponse(user, nil)
	return &resp, nil
}

func (us *userService) DeleteAccount(ctx context.Context, userID uuid.UUID, req *request.DeleteAccountRequest) error {
	user, err := us.find(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := us.sessions.RevokeAll(ctx, user.ID); err != nil {
		return err
	}
	if err := us.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return storeErr(err)
	}

	us.log.Info("Account deleted", zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
	return nil
}

func (us *userService) find(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func samePhone(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// phoneCodeKey binds a phone verification code to the number it was sent to.
func phoneCodeKey(userID uuid.UUID, phone string) string {
	return otp.Key(string(entity.OTPPurposePhoneVerification), userID.String()+":"+phone)
}
