package adaptor

import (
	"net/http"
	"time"

	"bizdesk/internal/usecase"
	"bizdesk/pkg/middleware"
	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Admin      *AdminHandler
	Company    *CompanyHandler
	Invitation *InvitationHandler
	Complaint  *ComplaintHandler
	Page       *PageHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	cookies := newCookieJar(config.Session)

	return &Handler{
		Auth:       NewAuthHandler(service.Auth, cookies, log),
		User:       NewUserHandler(service.User, cookies, log),
		Admin:      NewAdminHandler(service.Admin, cookies, log),
		Company:    NewCompanyHandler(service.Company, log),
		Invitation: NewInvitationHandler(service.Invitation, cookies, log),
		Complaint:  NewComplaintHandler(service.Complaint, log),
		Page:       NewPageHandler(log),
	}
}

// cookieJar writes the user and admin session cookies.
type cookieJar struct {
	user   string
	admin  string
	ttl    time.Duration
	secure bool
}

func newCookieJar(config utils.SessionConfig) cookieJar {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = usecase.DefaultSessionTTL
	}
	return cookieJar{
		user:   config.CookieName,
		admin:  config.AdminCookieName,
		ttl:    ttl,
		secure: config.CookieSecure,
	}
}

func (c cookieJar) setUser(w http.ResponseWriter, token string) {
	middleware.SetSessionCookie(w, c.user, token, c.ttl, c.secure)
}

func (c cookieJar) setAdmin(w http.ResponseWriter, token string) {
	middleware.SetSessionCookie(w, c.admin, token, c.ttl, c.secure)
}

func (c cookieJar) clearUser(w http.ResponseWriter) {
	middleware.ClearSessionCookie(w, c.user, c.secure)
}

func (c cookieJar) clearAdmin(w http.ResponseWriter) {
	middleware.ClearSessionCookie(w, c.admin, c.secure)
}
