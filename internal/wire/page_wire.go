package wire

import (
	"net/http"

	"bizdesk/internal/access"
	"bizdesk/internal/adaptor"
	"bizdesk/internal/data/entity"
	"bizdesk/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wirePage(r chi.Router, pageHandler *adaptor.PageHandler, g gates) {
	userCookies := []string{g.config.CookieName, g.config.AdminCookieName}
	adminCookies := []string{g.config.AdminCookieName, g.config.CookieName}

	page := func(path string, class middleware.PageClass, set access.RoleSet, cookies []string, h http.HandlerFunc) {
		r.With(middleware.PageGate(g.verifier, class, set, cookies, g.log)).Get(path, h)
	}

	page(middleware.LoginPath, middleware.PagePublic, nil, userCookies, pageHandler.UserLogin)
	page(middleware.UnauthorizedPath, middleware.PagePublic, nil, userCookies, pageHandler.Unauthorized)
	page(middleware.AdminLoginPath, middleware.PageAdminAuth, nil, adminCookies, pageHandler.AdminLogin)

	page("/user/dashboard", middleware.PageGated, access.AnyAuthenticated, userCookies, pageHandler.UserDashboard)
	page("/admin/dashboard", middleware.PageAdminGated, access.AdminRoles, adminCookies, pageHandler.AdminDashboard)
	page("/technician/dashboard", middleware.PageGated, access.Exactly(entity.RoleTechnician), userCookies, pageHandler.TechnicianDashboard)
}
