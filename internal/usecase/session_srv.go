package usecase

import (
	"context"
	"fmt"
	"time"

	"bizdesk/internal/data/entity"
	"bizdesk/internal/data/repository"
	"bizdesk/pkg/database"
	"bizdesk/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSessionTTL applies when the configured TTL is zero.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionMeta is request information recorded with a new session.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

type SessionService interface {
	// Verify resolves token to its owner. It returns ErrMissingToken,
	// ErrInvalidSession, ErrSessionExpired or ErrStoreUnavailable.
	Verify(ctx context.Context, token string) (*entity.ResolvedUser, error)
	// Issue creates a session of the given kind. Admin sessions come only from
	// the admin login.
	Issue(ctx context.Context, userID uuid.UUID, kind entity.SessionKind, meta SessionMeta) (*entity.Session, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	RevokeOthers(ctx context.Context, userID uuid.UUID, keepToken string) error
	SweepExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	repo    repository.SessionRepository
	ttl     time.Duration
	retries uint
	now     func() time.Time
	log     *zap.Logger
}

type SessionOption func(*sessionService)

// WithSessionClock replaces time.Now, for tests.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *sessionService) { s.now = now }
}

func NewSessionService(
	repo repository.SessionRepository,
	config utils.SessionConfig,
	log *zap.Logger,
	opts ...SessionOption,
) SessionService {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &sessionService{
		repo:    repo,
		ttl:     ttl,
		retries: config.LookupRetries,
		now:     time.Now,
		log:     log.With(zap.String("service", "session")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionService) Verify(ctx context.Context, token string) (*entity.ResolvedUser, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	found, err := database.RetryRead(ctx, s.retries, func() (*entity.SessionWithUser, error) {
		return s.repo.FindWithUser(ctx, token)
	})
	if err != nil {
		s.log.Error("Session lookup failed",
			zap.Error(err),
			zap.String("token", utils.TokenPrefix(token)),
		)
		return nil, storeErr(err)
	}
	if found == nil {
		s.log.Debug("Unknown session token", zap.String("token", utils.TokenPrefix(token)))
		return nil, ErrInvalidSession
	}

	if found.Session.Expired(s.now()) {
		// expired rows are removed on read; a failed delete is left to the janitor
		if _, err := s.repo.Delete(ctx, token); err != nil {
			s.log.Warn("Failed to delete expired session",
				zap.Error(err),
				zap.String("session_id", found.Session.ID.String()),
			)
		}
		s.log.Info("Session expired",
			zap.String("session_id", found.Session.ID.String()),
			zap.String("user_id", found.Session.UserID.String()),
		)
		return nil, ErrSessionExpired
	}

	u := found.User
	return &entity.ResolvedUser{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
		Role:          u.Role,
		CompanyID:     u.CompanyID,
		CompanyName:   found.CompanyName,
		SessionKind:   found.Session.Kind,
	}, nil
}

func (s *sessionService) Issue(ctx context.Context, userID uuid.UUID, kind entity.SessionKind, meta SessionMeta) (*entity.Session, error) {
	if kind == "" {
		kind = entity.SessionKindUser
	}

	token, err := utils.GenerateSessionToken()
	if err != nil {
		s.log.Error("Failed to generate session token", zap.Error(err))
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     token,
		Kind:      kind,
		UserAgent: optional(meta.UserAgent),
		IPAddress: optional(meta.IPAddress),
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, storeErr(err)
	}

	s.log.Info("Session issued",
		zap.String("user_id", userID.String()),
		zap.String("kind", string(kind)),
		zap.String("token", utils.TokenPrefix(token)),
		zap.Time("expires_at", session.ExpiresAt),
	)
	return session, nil
}

func (s *sessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	removed, err := s.repo.Delete(ctx, token)
	if err != nil {
		return storeErr(err)
	}
	if !removed {
		s.log.Debug("Logout for unknown session", zap.String("token", utils.TokenPrefix(token)))
	}
	return nil
}

func (s *sessionService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	n, err := s.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		return storeErr(err)
	}
	s.log.Info("Sessions revoked", zap.String("user_id", userID.String()), zap.Int64("count", n))
	return nil
}

func (s *sessionService) RevokeOthers(ctx context.Context, userID uuid.UUID, keepToken string) error {
	n, err := s.repo.DeleteByUserIDExcept(ctx, userID, keepToken)
	if err != nil {
		return storeErr(err)
	}
	s.log.Info("Other sessions revoked", zap.String("user_id", userID.String()), zap.Int64("count", n))
	return nil
}

func (s *sessionService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
