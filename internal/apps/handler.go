package apps

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the console app-management endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the app registry HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	AppID     string `json:"appId"`
	Platform  string `json:"platform"`
	ServerKey string `json:"serverKey"`
}

type appResponse struct {
	ID        string `json:"id"`
	Secret    string `json:"secret,omitempty"`
	Platform  string `json:"platform,omitempty"`
	ServerKey string `json:"serverKey,omitempty"`
}

// Create registers a tenant app and returns the one-time secret.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	app, err := h.service.Create(c.UserContext(), CreateInput{
		ID:        req.AppID,
		Platform:  req.Platform,
		ServerKey: req.ServerKey,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(appResponse{
		ID:        app.ID,
		Secret:    app.Secret,
		Platform:  app.Platform,
		ServerKey: app.ServerKey,
	})
}

// List returns a page of registered apps without secrets.
func (h *Handler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	result, err := h.service.List(c.UserContext(), page, limit)
	if err != nil {
		return err
	}
	data := make([]appResponse, 0, len(result.Data))
	for _, app := range result.Data {
		data = append(data, appResponse{ID: app.ID, Platform: app.Platform, ServerKey: app.ServerKey})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"data":  data,
		"total": result.Total,
	})
}

// RotateSecret reissues an app's secret.
func (h *Handler) RotateSecret(c *fiber.Ctx) error {
	app, err := h.service.RotateSecret(c.UserContext(), c.Params("appId"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(appResponse{ID: app.ID, Secret: app.Secret})
}
