package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/phoneid/phoneid/internal/admin"
	"github.com/phoneid/phoneid/internal/apps"
	"github.com/phoneid/phoneid/internal/identity"
)

// ConsoleDeps carries the handlers and middleware for the admin console.
type ConsoleDeps struct {
	Admin       *admin.Handler
	Apps        *apps.Handler
	AppsSvc     *apps.Service
	IdentitySvc *identity.Service
	Auth        fiber.Handler
	Idempotency fiber.Handler
}

// RegisterConsoleRoutes wires the admin-facing surface. All app management
// endpoints sit behind the admin session token.
func RegisterConsoleRoutes(r fiber.Router, d ConsoleDeps) {
	console := r.Group("/console")
	console.Post("/login", d.Admin.Login)

	managed := console.Group("/apps", d.Auth)
	if d.Idempotency != nil {
		managed.Post("/", d.Idempotency, d.Apps.Create)
	} else {
		managed.Post("/", d.Apps.Create)
	}
	managed.Get("/", d.Apps.List)
	managed.Post("/:appId/secret", d.Apps.RotateSecret)

	// Deleting an app also removes its per-app identities; the global users
	// remain for their other apps.
	managed.Delete("/:appId", func(c *fiber.Ctx) error {
		appID := c.Params("appId")
		if err := d.IdentitySvc.PurgeApp(c.UserContext(), appID); err != nil {
			return err
		}
		if err := d.AppsSvc.Delete(c.UserContext(), appID); err != nil {
			return err
		}
		return c.SendStatus(http.StatusOK)
	})
}
