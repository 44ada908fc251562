package wire

import (
	"bizdesk/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser mounts self-service routes. Every route needs a session.
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g gates) {
	r.With(g.api()).Route("/api/user", func(r chi.Router) {
		r.Get("/profile", userHandler.GetProfile)
		r.Put("/profile", userHandler.UpdateProfile)
		r.Put("/password", userHandler.ChangePassword)
		r.Post("/phone/send-otp", userHandler.SendPhoneOTP)
		r.Post("/phone/verify", userHandler.VerifyPhone)
		r.Delete("/account", userHandler.DeleteAccount)
	})
}
