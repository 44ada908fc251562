package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"bizdesk/internal/access"
	"bizdesk/internal/data/entity"
	"bizdesk/internal/usecase"
	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

// PageClass says how a server-rendered page is gated.
type PageClass int

const (
	// PagePublic is forwarded untouched.
	PagePublic PageClass = iota
	// PageGated needs a valid session whose role is in the page's RoleSet.
	// A nil set accepts any authenticated user.
	PageGated
	// PageAdminAuth is the admin login page: visitors always get through,
	// and a valid session is attached when there is one.
	PageAdminAuth
	// PageAdminGated is PageGated plus a session from the admin login. A
	// matching role on a regular session is sent to the admin login page.
	PageAdminGated
)

func (c PageClass) String() string {
	switch c {
	case PagePublic:
		return "public"
	case PageGated:
		return "gated"
	case PageAdminAuth:
		return "admin-auth"
	case PageAdminGated:
		return "admin-gated"
	default:
		return "unknown"
	}
}

// PageGate gates browser navigation. Failures become redirects instead of
// JSON errors: no usable session goes to the login page with the original
// URI preserved, a role mismatch goes to the unauthorized page.
func PageGate(verifier SessionVerifier, class PageClass, set access.RoleSet, cookieNames []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if class == PagePublic {
				next.ServeHTTP(w, r)
				return
			}

			token := ExtractToken(r, cookieNames...)
			user, err := verifier.Verify(r.Context(), token)

			if class == PageAdminAuth {
				if err == nil {
					ctx := utils.SetUserContext(r.Context(), user)
					r = r.WithContext(utils.SetTokenContext(ctx, token))
				}
				next.ServeHTTP(w, r)
				return
			}

			if err != nil {
				if errors.Is(err, usecase.ErrStoreUnavailable) {
					logger.Error("Session lookup failed",
						zap.String("path", r.URL.Path),
						zap.Error(err))
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				logger.Info("Page requires login",
					zap.String("path", r.URL.Path),
					zap.String("reason", err.Error()))
				http.Redirect(w, r, LoginRedirectURL(r), http.StatusFound)
				return
			}

			if !access.IsAuthorized(user, set) {
				logger.Warn("Page role check failed",
					zap.String("user_id", user.ID.String()),
					zap.String("role", string(user.Role)),
					zap.String("path", r.URL.Path))
				http.Redirect(w, r, UnauthorizedPath, http.StatusFound)
				return
			}

			if class == PageAdminGated && user.SessionKind != entity.SessionKindAdmin {
				logger.Info("Page requires admin login",
					zap.String("user_id", user.ID.String()),
					zap.String("path", r.URL.Path))
				http.Redirect(w, r, AdminLoginPath+"?redirect="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
				return
			}

			ctx := utils.SetUserContext(r.Context(), user)
			ctx = utils.SetTokenContext(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoginRedirectURL points at the login page and carries the original request
// URI in the redirect parameter.
func LoginRedirectURL(r *http.Request) string {
	return LoginPath + "?redirect=" + url.QueryEscape(r.URL.RequestURI())
}
