package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"bizdesk/internal/data/entity"
	"bizdesk/internal/dto/request"
	"bizdesk/pkg/otp"
	"bizdesk/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type authFixture struct {
	db       *fakeDB
	notifier *fakeNotifier
	sessions SessionService
	srv      AuthService
}

func newAuthFixture(t *testing.T, codes ...string) *authFixture {
	t.Helper()
	f := &authFixture{db: newFakeDB(), notifier: &fakeNotifier{}}
	repo := f.db.repository()
	f.sessions = NewSessionService(repo.Session, utils.SessionConfig{}, zap.NewNop())
	f.srv = NewAuthService(repo.User, f.sessions, newTestCache(codes...), f.notifier, zap.NewNop())
	return f
}

func (f *authFixture) addUser(t *testing.T, email, password string, verified bool) *entity.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return f.db.addUser(&entity.User{
		Name:          "Test User",
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: verified,
		Role:          entity.RoleUser,
	})
}

func TestAuthService_Login_UnverifiedNeedsVerification(t *testing.T) {
	f := newAuthFixture(t, "111111")
	f.addUser(t, "ana@example.com", "password123", false)

	resp, err := f.srv.Login(context.Background(), &request.LoginRequest{
		Email:    "ana@example.com",
		Password: "password123",
	}, SessionMeta{})

	require.NoError(t, err)
	assert.True(t, resp.NeedsVerification)
	assert.Nil(t, resp.Session)
	assert.Nil(t, resp.User)
	assert.Empty(t, f.db.sessions)
	require.NotNil(t, resp.Delivery)
	assert.True(t, resp.Delivery.Sent)
	assert.Contains(t, f.notifier.last().Body, "111111")
}

func TestAuthService_Login_VerifiedGetsSession(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "ana@example.com", "password123", true)

	resp, err := f.srv.Login(context.Background(), &request.LoginRequest{
		Email:    "Ana@Example.com ",
		Password: "password123",
	}, SessionMeta{})

	require.NoError(t, err)
	assert.False(t, resp.NeedsVerification)
	require.NotNil(t, resp.User)
	assert.Equal(t, user.ID.String(), resp.User.ID)
	require.NotNil(t, resp.Session)
	assert.NotEmpty(t, resp.Session.Token)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), resp.Session.ExpiresAt, time.Minute)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "ana@example.com", "password123", true)

	_, err := f.srv.Login(context.Background(), &request.LoginRequest{Email: "ana@example.com", Password: "nope"}, SessionMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.srv.Login(context.Background(), &request.LoginRequest{Email: "ghost@example.com", Password: "nope"}, SessionMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Register_ThenVerify(t *testing.T) {
	f := newAuthFixture(t, "222222")

	resp, err := f.srv.Register(context.Background(), &request.RegisterRequest{
		Name:     "Budi",
		Email:    "BUDI@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.True(t, resp.NeedsVerification)
	assert.Equal(t, "budi@example.com", resp.Email)

	_, err = f.srv.Register(context.Background(), &request.RegisterRequest{
		Name: "Budi", Email: "budi@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.srv.VerifyEmail(context.Background(), &request.VerifyEmailRequest{Email: "budi@example.com", OTP: "999999"}, SessionMeta{})
	assert.ErrorIs(t, err, otp.ErrMismatch)

	verified, err := f.srv.VerifyEmail(context.Background(), &request.VerifyEmailRequest{Email: "budi@example.com", OTP: "222222"}, SessionMeta{})
	require.NoError(t, err)
	require.NotNil(t, verified.Session)
	assert.True(t, verified.User.EmailVerified)

	// single use
	_, err = f.srv.VerifyEmail(context.Background(), &request.VerifyEmailRequest{Email: "budi@example.com", OTP: "222222"}, SessionMeta{})
	assert.ErrorIs(t, err, otp.ErrNotFound)
}

func TestAuthService_SendOTP_OnlyLatestCodeVerifies(t *testing.T) {
	f := newAuthFixture(t, "333333", "444444")
	f.addUser(t, "ana@example.com", "password123", false)

	for i := 0; i < 2; i++ {
		_, err := f.srv.SendOTP(context.Background(), &request.SendOTPRequest{
			Email: "ana@example.com", Purpose: string(entity.OTPPurposeEmailVerification),
		})
		require.NoError(t, err)
	}

	_, err := f.srv.VerifyEmail(context.Background(), &request.VerifyEmailRequest{Email: "ana@example.com", OTP: "333333"}, SessionMeta{})
	assert.ErrorIs(t, err, otp.ErrMismatch)

	_, err = f.srv.VerifyEmail(context.Background(), &request.VerifyEmailRequest{Email: "ana@example.com", OTP: "444444"}, SessionMeta{})
	assert.NoError(t, err)
}

func TestAuthService_SendOTP_ReportsDeliveryFailure(t *testing.T) {
	f := newAuthFixture(t, "555555")
	f.notifier.fail = true
	f.addUser(t, "ana@example.com", "password123", true)

	resp, err := f.srv.SendOTP(context.Background(), &request.SendOTPRequest{
		Email: "ana@example.com", Purpose: string(entity.OTPPurposePasswordReset),
	})

	require.NoError(t, err)
	assert.False(t, resp.Delivery.Sent)
	assert.Equal(t, "email", resp.Delivery.Channel)
}

func TestAuthService_SendOTP_AlreadyVerified(t *testing.T) {
	f := newAuthFixture(t, "555555")
	f.addUser(t, "ana@example.com", "password123", true)

	resp, err := f.srv.SendOTP(context.Background(), &request.SendOTPRequest{
		Email: "ana@example.com", Purpose: string(entity.OTPPurposeEmailVerification),
	})

	require.NoError(t, err)
	assert.True(t, resp.Delivery.Sent)
	assert.Empty(t, f.notifier.sent)
}

func TestAuthService_SendOTP_UnknownEmailLooksLikeKnown(t *testing.T) {
	f := newAuthFixture(t, "555555")
	f.addUser(t, "ana@example.com", "password123", true)

	known, err := f.srv.SendOTP(context.Background(), &request.SendOTPRequest{
		Email: "ana@example.com", Purpose: string(entity.OTPPurposePasswordReset),
	})
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 1)

	unknown, err := f.srv.SendOTP(context.Background(), &request.SendOTPRequest{
		Email: "Nobody@Example.com", Purpose: string(entity.OTPPurposePasswordReset),
	})
	require.NoError(t, err)

	assert.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "nobody@example.com", unknown.Recipient)
	assert.Equal(t, known.Delivery, unknown.Delivery)
	assert.WithinDuration(t, known.ExpiresAt, unknown.ExpiresAt, time.Minute)
}

func TestAuthService_ResetPassword_RevokesSessions(t *testing.T) {
	f := newAuthFixture(t, "666666")
	user := f.addUser(t, "ana@example.com", "password123", true)

	_, err := f.sessions.Issue(context.Background(), user.ID, entity.SessionKindUser, SessionMeta{})
	require.NoError(t, err)

	_, err = f.srv.SendOTP(context.Background(), &request.SendOTPRequest{
		Email: "ana@example.com", Purpose: string(entity.OTPPurposePasswordReset),
	})
	require.NoError(t, err)

	err = f.srv.ResetPassword(context.Background(), &request.ResetPasswordRequest{
		Email: "ana@example.com", OTP: "666666", NewPassword: "brand-new-pass",
	})
	require.NoError(t, err)

	assert.Empty(t, f.db.sessions)
	stored := f.db.user(user.ID)
	assert.True(t, utils.CheckPasswordHash("brand-new-pass", stored.PasswordHash))
	assert.False(t, strings.Contains(stored.PasswordHash, "brand-new-pass"))
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "ana@example.com", "password123", true)
	session, err := f.sessions.Issue(context.Background(), user.ID, entity.SessionKindUser, SessionMeta{})
	require.NoError(t, err)

	require.NoError(t, f.srv.Logout(context.Background(), session.Token))

	_, err = f.sessions.Verify(context.Background(), session.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
