package wire

import (
	"bizdesk/internal/access"
	"bizdesk/internal/adaptor"
	"bizdesk/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireCompany(
	r chi.Router,
	companyHandler *adaptor.CompanyHandler,
	invitationHandler *adaptor.InvitationHandler,
	g gates,
) {
	r.With(g.api()).Route("/api/companies", func(r chi.Router) {
		r.Post("/", companyHandler.Create)
		r.Get("/{id}", companyHandler.Get)
	})

	r.Route("/api/invitations", func(r chi.Router) {
		// Invitees have no session yet.
		r.Get("/{token}", invitationHandler.Get)
		r.Post("/{token}/accept", invitationHandler.Accept)

		r.With(
			g.adminAPI(),
			middleware.RequireRoles(access.AdminRoles, g.log),
		).Post("/", invitationHandler.Create)
	})
}
