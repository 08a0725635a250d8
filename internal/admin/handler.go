package admin

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes console authentication endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the console auth handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates admin credentials and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	token, err := h.service.IssueToken(a)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"accessToken": token})
}
