package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bizdesk/internal/access"
	"bizdesk/internal/data/entity"
	"bizdesk/internal/usecase"
	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

const (
	LoginPath        = "/user/auth/login"
	AdminLoginPath   = "/admin/auth/login"
	UnauthorizedPath = "/unauthorized"
)

// SessionVerifier resolves a bearer token into its owner.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*entity.ResolvedUser, error)
}

// AuthSession authenticates API requests. The token comes from the
// Authorization header first and then from the named cookies, in order.
func AuthSession(verifier SessionVerifier, cookieNames []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r, cookieNames...)

			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, usecase.ErrStoreUnavailable):
					logger.Error("Session lookup failed",
						zap.String("path", r.URL.Path),
						zap.Error(err))
					utils.ResponseInternalError(w, "Internal server error")
				case errors.Is(err, usecase.ErrMissingToken):
					utils.ResponseUnauthorized(w, "Missing authorization token")
				default:
					logger.Warn("Rejected session",
						zap.String("token", utils.TokenPrefix(token)),
						zap.String("path", r.URL.Path),
						zap.Error(err))
					utils.ResponseUnauthorized(w, "Invalid or expired session")
				}
				return
			}

			ctx := utils.SetUserContext(r.Context(), user)
			ctx = utils.SetTokenContext(ctx, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles must run after AuthSession.
func RequireRoles(set access.RoleSet, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := utils.GetUserFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !access.IsAuthorized(user, set) {
				logger.Warn("Role check failed",
					zap.String("user_id", user.ID.String()),
					zap.String("role", string(user.Role)),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "administrators only")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminSession must run after AuthSession. It rejects sessions that
// did not come from the admin login, whatever the user's role.
func RequireAdminSession(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := utils.GetUserFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if user.SessionKind != entity.SessionKindAdmin {
				logger.Warn("Admin route with non-admin session",
					zap.String("user_id", user.ID.String()),
					zap.String("session_kind", string(user.SessionKind)),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "admin sign-in required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken returns the bearer token, or the first non-empty cookie among
// names, or "".
func ExtractToken(r *http.Request, names ...string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	for _, name := range names {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}
