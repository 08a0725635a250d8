package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phoneid/phoneid/internal/apperr"
	"github.com/phoneid/phoneid/internal/apps"
	"github.com/phoneid/phoneid/internal/credential"
	"github.com/phoneid/phoneid/internal/notification"
	"github.com/phoneid/phoneid/internal/verification"
)

// Service resolves phone numbers into per-app identities. Every operation is
// gated on tenant app credentials first.
type Service struct {
	repo     Repository
	apps     *apps.Service
	verifier *verification.Service
	hasher   *credential.Hasher
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService creates the identity resolver.
func NewService(repo Repository, appsSvc *apps.Service, verifier *verification.Service, hasher *credential.Hasher, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, apps: appsSvc, verifier: verifier, hasher: hasher, notifier: notifier, logger: logger}
}

// VerifyInput carries the fields for starting a phone verification.
type VerifyInput struct {
	AppID       string
	AppSecret   string
	CountryCode string
	Phone       string
}

// VerifyPhone validates app credentials and sends a verification code to the
// phone. The code itself is never echoed back to the caller.
func (s *Service) VerifyPhone(ctx context.Context, in VerifyInput) error {
	if err := required("countryCode", in.CountryCode, "phone", in.Phone); err != nil {
		return err
	}
	if _, err := s.apps.ValidateCredentials(ctx, in.AppID, in.AppSecret, nil); err != nil {
		return err
	}
	if _, err := s.verifier.Send(ctx, in.CountryCode, in.Phone); err != nil {
		return err
	}
	return nil
}

// RegisterInput carries the fields for completing a registration.
type RegisterInput struct {
	AppID            string
	AppSecret        string
	CountryCode      string
	Phone            string
	DeviceID         string
	NotifID          string
	VerificationCode string
}

// Register consumes the pending verification code and mints (or reproduces)
// the per-app hash for the phone's user. The code is single-use; re-registering
// the same phone for the same app yields the same hash. No state is written
// unless the code matched.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if err := required("countryCode", in.CountryCode, "phone", in.Phone, "deviceId", in.DeviceID, "verificationCode", in.VerificationCode); err != nil {
		return Session{}, err
	}
	app, err := s.apps.ValidateCredentials(ctx, in.AppID, in.AppSecret, nil)
	if err != nil {
		return Session{}, err
	}

	if err := s.verifier.Confirm(ctx, in.CountryCode, in.Phone, in.VerificationCode); err != nil {
		return Session{}, err
	}

	number := credential.CombinePhone(in.CountryCode, in.Phone)
	user, err := s.findOrCreateUser(ctx, s.hasher.UserLookup(number))
	if err != nil {
		return Session{}, err
	}

	au := AppUser{
		UserID:    user.ID,
		AppID:     app.ID,
		Hash:      s.hasher.AppUserHash(user.ID, app.ID),
		DeviceID:  in.DeviceID,
		NotifID:   in.NotifID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.UpsertAppUser(ctx, au); err != nil {
		return Session{}, err
	}

	s.notifyRegistration(ctx, app, au)

	return Session{AppID: app.ID, Hash: au.Hash}, nil
}

// LoginInput carries the fields for a cross-app login.
type LoginInput struct {
	AppID        string
	AppSecret    string
	ExistingHash string
}

// Login resolves a hash issued by any app into an identity for the target
// app, minting a fresh app-scoped hash when the user has none there. The
// source hash is never reused across apps.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	if err := required("existingHash", in.ExistingHash); err != nil {
		return Session{}, err
	}
	app, err := s.apps.ValidateCredentials(ctx, in.AppID, in.AppSecret, nil)
	if err != nil {
		return Session{}, err
	}

	source, err := s.repo.FindAppUserByHash(ctx, in.ExistingHash)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return Session{}, apperr.New(apperr.KindInvalidHash, "invalid login hash")
		}
		return Session{}, err
	}
	if source.AppID == app.ID {
		return Session{AppID: app.ID, Hash: source.Hash}, nil
	}

	target, err := s.repo.FindAppUser(ctx, source.UserID, app.ID)
	if err == nil {
		return Session{AppID: app.ID, Hash: target.Hash}, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return Session{}, err
	}

	au := AppUser{
		UserID:    source.UserID,
		AppID:     app.ID,
		Hash:      s.hasher.AppUserHash(source.UserID, app.ID),
		DeviceID:  source.DeviceID,
		NotifID:   source.NotifID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.UpsertAppUser(ctx, au); err != nil {
		return Session{}, err
	}
	return Session{AppID: app.ID, Hash: au.Hash}, nil
}

// CheckStatus confirms a hash was issued by the given app and is still valid.
func (s *Service) CheckStatus(ctx context.Context, appID, appSecret, hash string) error {
	if err := required("hash", hash); err != nil {
		return err
	}
	app, err := s.apps.ValidateCredentials(ctx, appID, appSecret, nil)
	if err != nil {
		return err
	}
	au, err := s.repo.FindAppUserByHash(ctx, hash)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.New(apperr.KindInvalidHash, "invalid login hash")
		}
		return err
	}
	if au.AppID != app.ID {
		return apperr.New(apperr.KindInvalidHash, "invalid login hash")
	}
	return nil
}

// DeviceInput carries updatable push-routing fields for an identity.
type DeviceInput struct {
	AppID     string
	AppSecret string
	Hash      string
	DeviceID  string
	NotifID   string
}

// UpdateDevice refreshes deviceId/notifId for the identity a hash points at.
// The hash itself is unaffected.
func (s *Service) UpdateDevice(ctx context.Context, in DeviceInput) error {
	if err := required("hash", in.Hash, "deviceId", in.DeviceID); err != nil {
		return err
	}
	app, err := s.apps.ValidateCredentials(ctx, in.AppID, in.AppSecret, nil)
	if err != nil {
		return err
	}
	au, err := s.repo.FindAppUserByHash(ctx, in.Hash)
	if err != nil || au.AppID != app.ID {
		return apperr.New(apperr.KindInvalidHash, "invalid login hash")
	}
	return s.repo.UpdateDevice(ctx, in.Hash, in.DeviceID, in.NotifID)
}

// PurgeApp removes every per-app identity for a deleted app.
func (s *Service) PurgeApp(ctx context.Context, appID string) error {
	return s.repo.DeleteByApp(ctx, appID)
}

func (s *Service) findOrCreateUser(ctx context.Context, lookup string) (User, error) {
	user, err := s.repo.FindUserByLookup(ctx, lookup)
	if err == nil {
		return user, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return User{}, err
	}

	user = User{ID: uuid.NewString(), Lookup: lookup, CreatedAt: time.Now().UTC()}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// A concurrent register for the same phone won the insert.
		if apperr.IsKind(err, apperr.KindDuplicate) {
			return s.repo.FindUserByLookup(ctx, lookup)
		}
		return User{}, err
	}
	return user, nil
}

func (s *Service) notifyRegistration(ctx context.Context, app apps.App, au AppUser) {
	if s.notifier == nil || app.ServerKey == "" || au.NotifID == "" {
		return
	}
	msg := notification.Message{
		ServerKey: app.ServerKey,
		To:        au.NotifID,
		Title:     app.ID,
		Body:      "Your phone number was verified",
	}
	if err := s.notifier.Send(ctx, msg); err != nil && s.logger != nil {
		s.logger.Warn("registration push failed", "app_id", app.ID, "error", err)
	}
}

func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return apperr.New(apperr.KindValidation, fmt.Sprintf("%s is required", pairs[i]))
		}
	}
	return nil
}
