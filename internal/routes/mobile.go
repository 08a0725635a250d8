package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/phoneid/phoneid/internal/identity"
)

// RegisterMobileRoutes wires the SDK-facing surface. Every endpoint is gated
// on app credentials inside the identity service, never on admin tokens.
func RegisterMobileRoutes(r fiber.Router, h *identity.Handler, rateLimiter fiber.Handler) {
	users := r.Group("/mobile/users")
	if rateLimiter != nil {
		users.Post("/verifyPhone", rateLimiter, h.VerifyPhone)
	} else {
		users.Post("/verifyPhone", h.VerifyPhone)
	}
	users.Post("/register", h.Register)
	users.Post("/login", h.Login)
	users.Get("/login", h.LoginStatus)
	users.Put("/device", h.UpdateDevice)
}
