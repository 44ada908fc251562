package wire

import (
	"bizdesk/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g gates) {
	r.Route("/api/auth", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/send-otp", authHandler.SendOTP)
		r.Post("/verify-email", authHandler.VerifyEmail)
		r.Post("/password/reset", authHandler.ResetPassword)

		// ==================== PROTECTED ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(g.api())
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})
}
