package identity

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the mobile SDK endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the mobile identity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type verifyPhoneRequest struct {
	AppID       string `json:"appId"`
	AppSecret   string `json:"appSecret"`
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
}

// VerifyPhone starts a phone verification for an app's user.
func (h *Handler) VerifyPhone(c *fiber.Ctx) error {
	var req verifyPhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	err := h.service.VerifyPhone(c.UserContext(), VerifyInput{
		AppID:       req.AppID,
		AppSecret:   req.AppSecret,
		CountryCode: req.CountryCode,
		Phone:       req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "verification code sent"})
}

type registerRequest struct {
	AppID            string `json:"appId"`
	AppSecret        string `json:"appSecret"`
	CountryCode      string `json:"countryCode"`
	Phone            string `json:"phone"`
	DeviceID         string `json:"deviceId"`
	NotifID          string `json:"notifId"`
	VerificationCode string `json:"verificationCode"`
}

// Register exchanges a verification code for the per-app hash.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.service.Register(c.UserContext(), RegisterInput{
		AppID:            req.AppID,
		AppSecret:        req.AppSecret,
		CountryCode:      req.CountryCode,
		Phone:            req.Phone,
		DeviceID:         req.DeviceID,
		NotifID:          req.NotifID,
		VerificationCode: req.VerificationCode,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(session)
}

type loginRequest struct {
	AppID        string `json:"appId"`
	AppSecret    string `json:"appSecret"`
	ExistingHash string `json:"existingHash"`
}

// Login exchanges a hash from another app for one scoped to this app.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.service.Login(c.UserContext(), LoginInput{
		AppID:        req.AppID,
		AppSecret:    req.AppSecret,
		ExistingHash: req.ExistingHash,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(session)
}

// LoginStatus confirms a hash is still a valid credential for this app.
func (h *Handler) LoginStatus(c *fiber.Ctx) error {
	err := h.service.CheckStatus(c.UserContext(),
		c.Query("appId"), c.Query("appSecret"), c.Query("hash"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "OK"})
}

type deviceRequest struct {
	AppID     string `json:"appId"`
	AppSecret string `json:"appSecret"`
	Hash      string `json:"hash"`
	DeviceID  string `json:"deviceId"`
	NotifID   string `json:"notifId"`
}

// UpdateDevice refreshes the device binding behind a hash.
func (h *Handler) UpdateDevice(c *fiber.Ctx) error {
	var req deviceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	err := h.service.UpdateDevice(c.UserContext(), DeviceInput{
		AppID:     req.AppID,
		AppSecret: req.AppSecret,
		Hash:      req.Hash,
		DeviceID:  req.DeviceID,
		NotifID:   req.NotifID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "OK"})
}
