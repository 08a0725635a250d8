package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/phoneid/phoneid/internal/admin"
	"github.com/phoneid/phoneid/internal/apps"
	"github.com/phoneid/phoneid/internal/config"
	"github.com/phoneid/phoneid/internal/credential"
	"github.com/phoneid/phoneid/internal/identity"
	"github.com/phoneid/phoneid/internal/middleware"
	"github.com/phoneid/phoneid/internal/notification"
	"github.com/phoneid/phoneid/internal/verification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Postgres and Redis are mandatory outside dev; in dev the service runs
	// self-contained on in-memory stores.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	hasher := credential.NewHasher(d.Cfg.MasterSecret)

	var adminRepo admin.Repository
	var appRepo apps.Repository
	var verificationRepo verification.Repository
	var identityRepo identity.Repository
	if d.DB != nil {
		adminRepo = admin.NewPostgresRepository(d.DB)
		appRepo = apps.NewPostgresRepository(d.DB)
		verificationRepo = verification.NewPostgresRepository(d.DB)
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		adminRepo = admin.NewMemoryRepository()
		appRepo = apps.NewMemoryRepository()
		verificationRepo = verification.NewMemoryRepository()
		identityRepo = identity.NewMemoryRepository()
	}

	var provider verification.Provider
	if d.Cfg.SMSConfigured() {
		provider = verification.NewLiveProvider(verification.LiveConfig{
			VerifyURL: d.Cfg.VerifyAPIURL,
			SMSURL:    d.Cfg.SMSAPIURL,
			APIKey:    d.Cfg.SMSAPIKey,
			APISecret: d.Cfg.SMSAPISecret,
			From:      d.Cfg.SMSFrom,
		}, nil)
	} else {
		d.Logger.Warn("sms provider not configured, verification runs in test mode")
		provider = verification.TestProvider{}
	}

	var notifier notification.Notifier
	if d.Cfg.PushEnabled {
		notifier = notification.NewHTTPNotifier(d.Cfg.PushAPIURL, nil)
	} else {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	adminSvc := admin.NewService(adminRepo, d.Cfg.MasterSecret)
	appsSvc := apps.NewService(appRepo, hasher)
	verifier := verification.NewService(verificationRepo, provider, d.Cfg.OTPTTL)
	identitySvc := identity.NewService(identityRepo, appsSvc, verifier, hasher, notifier, d.Logger)

	if err := adminSvc.Bootstrap(context.Background(), d.Cfg.AdminEmail, d.Cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	adminHandler := admin.NewHandler(adminSvc)
	appsHandler := apps.NewHandler(appsSvc)
	identityHandler := identity.NewHandler(identitySvc)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"app":       d.Cfg.AppName,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, time.Hour, d.Logger)
	}
	RegisterConsoleRoutes(app, ConsoleDeps{
		Admin:       adminHandler,
		Apps:        appsHandler,
		AppsSvc:     appsSvc,
		IdentitySvc: identitySvc,
		Auth:        middleware.AdminAuth(adminSvc),
		Idempotency: idem,
	})

	rateLimiter := middleware.VerifyRateLimit(d.Cache, d.Cfg.VerifyRatePerMin)
	RegisterMobileRoutes(app, identityHandler, rateLimiter)

	return nil
}
