package apps

import (
	"context"
	"regexp"
	"time"

	"github.com/phoneid/phoneid/internal/apperr"
	"github.com/phoneid/phoneid/internal/credential"
)

var appIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{5,20}$`)

const appIDRuleMessage = "App ID must be 5-20 alphanumeric characters"

// Service manages tenant app provisioning and credential validation.
type Service struct {
	repo   Repository
	hasher *credential.Hasher
}

// NewService creates the app registry service.
func NewService(repo Repository, hasher *credential.Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// CreateInput captures the fields an admin supplies for a new app.
type CreateInput struct {
	ID        string
	Platform  string
	ServerKey string
}

// Create registers a tenant app with a freshly derived secret. The returned
// app carries the secret; this is the only time it is handed out.
func (s *Service) Create(ctx context.Context, input CreateInput) (App, error) {
	if !appIDPattern.MatchString(input.ID) {
		return App{}, apperr.New(apperr.KindValidation, appIDRuleMessage)
	}

	secret, err := s.hasher.AppSecret(input.ID)
	if err != nil {
		return App{}, err
	}

	app := App{
		ID:        input.ID,
		Secret:    secret,
		Platform:  input.Platform,
		ServerKey: input.ServerKey,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return App{}, err
	}
	return app, nil
}

// Page is one page of a listing plus the total row count.
type Page struct {
	Data  []App
	Total int64
}

// List returns a page of apps. Secrets are never included.
func (s *Service) List(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	data, total, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return Page{}, err
	}
	return Page{Data: data, Total: total}, nil
}

// ValidateCredentials gates every mobile-facing operation. When the caller
// already holds the app row it is revalidated instead of reloaded.
func (s *Service) ValidateCredentials(ctx context.Context, appID, appSecret string, app *App) (App, error) {
	if app == nil {
		loaded, err := s.repo.Get(ctx, appID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return App{}, apperr.Newf(apperr.KindInvalidAppID, "invalid app ID: %s", appID)
			}
			return App{}, err
		}
		app = &loaded
	}
	if app.ID != appID {
		return App{}, apperr.Newf(apperr.KindInvalidAppID, "invalid app ID: %s", appID)
	}
	if app.Secret != appSecret {
		return App{}, apperr.New(apperr.KindInvalidSecret, "invalid app secret")
	}
	return *app, nil
}

// RotateSecret derives and stores a replacement secret. The previous secret
// stops working immediately.
func (s *Service) RotateSecret(ctx context.Context, appID string) (App, error) {
	app, err := s.repo.Get(ctx, appID)
	if err != nil {
		return App{}, err
	}
	secret, err := s.hasher.AppSecret(app.ID)
	if err != nil {
		return App{}, err
	}
	if err := s.repo.UpdateSecret(ctx, app.ID, secret); err != nil {
		return App{}, err
	}
	app.Secret = secret
	return app, nil
}

// Delete removes an app registration.
func (s *Service) Delete(ctx context.Context, appID string) error {
	return s.repo.Delete(ctx, appID)
}
