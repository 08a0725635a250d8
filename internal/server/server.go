package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/phoneid/phoneid/internal/apperr"
	"github.com/phoneid/phoneid/internal/config"
	"github.com/phoneid/phoneid/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler,
	})

	if err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger}); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler translates the tagged error taxonomy into HTTP responses.
// Client and credential errors come back as 400 with a human-readable
// message; provider faults are the only errors a caller may retry.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).SendString(fe.Message)
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.KindValidation:
			return c.Status(http.StatusBadRequest).SendString("Validation error: " + ae.Message)
		case apperr.KindInvalidAppID, apperr.KindInvalidSecret, apperr.KindInvalidHash,
			apperr.KindInvalidVerificationCode, apperr.KindVerificationFailed, apperr.KindDuplicate:
			return c.Status(http.StatusBadRequest).SendString(ae.Message)
		case apperr.KindUnauthorized:
			return c.Status(http.StatusUnauthorized).SendString(ae.Message)
		case apperr.KindNotFound:
			return c.Status(http.StatusNotFound).SendString(ae.Message)
		case apperr.KindProvider:
			return c.Status(http.StatusBadGateway).SendString("verification provider unavailable")
		}
	}

	return c.Status(http.StatusInternalServerError).SendString("internal server error")
}
