package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/phoneid/phoneid/internal/admin"
)

// AdminAuth gates console endpoints on a valid admin session token. It never
// guards mobile endpoints; those are gated on app credentials instead.
func AdminAuth(svc *admin.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])
		adminID, err := svc.VerifyToken(token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		c.Locals("admin_id", adminID)
		return c.Next()
	}
}
