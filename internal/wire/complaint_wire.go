package wire

import (
	"bizdesk/internal/access"
	"bizdesk/internal/adaptor"
	"bizdesk/internal/data/entity"
	"bizdesk/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

// staffRoles may work the complaint queue of their company.
var staffRoles = access.Union(
	access.Exactly(entity.RoleTechnician, entity.RoleReceptionist),
	access.AdminRoles,
)

func wireComplaint(r chi.Router, complaintHandler *adaptor.ComplaintHandler, g gates) {
	r.With(g.api()).Route("/api/complaints", func(r chi.Router) {
		r.Post("/", complaintHandler.Create)
		r.Get("/", complaintHandler.ListOwn)
	})

	r.With(
		g.api(),
		middleware.RequireRoles(staffRoles, g.log),
	).Route("/api/technician/complaints", func(r chi.Router) {
		r.Get("/", complaintHandler.ListForStaff)
		r.Patch("/{id}", complaintHandler.UpdateStatus)
	})
}
