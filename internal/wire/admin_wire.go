package wire

import (
	"bizdesk/internal/access"
	"bizdesk/internal/adaptor"
	"bizdesk/internal/data/entity"
	"bizdesk/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

// wireAdmin mounts admin routes. Login and password recovery are public;
// everything else needs an admin role, and user mutation needs superadmin.
func wireAdmin(r chi.Router, adminHandler *adaptor.AdminHandler, g gates) {
	r.Route("/api/admin", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Post("/login", adminHandler.Login)
		r.Delete("/login", adminHandler.Logout)
		r.Post("/password/forgot", adminHandler.ForgotPassword)
		r.Post("/password/reset", adminHandler.ResetPassword)

		// ==================== ANY ADMIN ====================
		r.Group(func(r chi.Router) {
			r.Use(g.adminAPI())
			r.Use(middleware.RequireRoles(access.AdminRoles, g.log))

			r.Put("/credentials", adminHandler.SetCredential)
			r.Get("/users", adminHandler.ListUsers)
			r.Get("/users/{id}/role-changes", adminHandler.RoleHistory)

			// ==================== SUPERADMIN ====================
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(access.Exactly(entity.RoleSuperAdmin), g.log))
				r.Put("/users/{id}/role", adminHandler.ChangeUserRole)
				r.Delete("/users/{id}", adminHandler.DeleteUser)
			})
		})
	})
}
