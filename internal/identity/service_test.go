package identity

import (
	"context"
	"testing"
	"time"

	"github.com/phoneid/phoneid/internal/apperr"
	"github.com/phoneid/phoneid/internal/apps"
	"github.com/phoneid/phoneid/internal/credential"
	"github.com/phoneid/phoneid/internal/verification"
)

type fixture struct {
	svc  *Service
	apps *apps.Service
}

func newFixture() fixture {
	hasher := credential.NewHasher("test-secret")
	appsSvc := apps.NewService(apps.NewMemoryRepository(), hasher)
	verifier := verification.NewService(verification.NewMemoryRepository(), verification.TestProvider{}, time.Minute)
	svc := NewService(NewMemoryRepository(), appsSvc, verifier, hasher, nil, nil)
	return fixture{svc: svc, apps: appsSvc}
}

func (f fixture) createApp(t *testing.T, id string) apps.App {
	t.Helper()
	app, err := f.apps.Create(context.Background(), apps.CreateInput{ID: id})
	if err != nil {
		t.Fatalf("create app %s: %v", id, err)
	}
	return app
}

func (f fixture) register(t *testing.T, app apps.App, countryCode, phone, deviceID string) Session {
	t.Helper()
	ctx := context.Background()
	err := f.svc.VerifyPhone(ctx, VerifyInput{
		AppID: app.ID, AppSecret: app.Secret, CountryCode: countryCode, Phone: phone,
	})
	if err != nil {
		t.Fatalf("verify phone: %v", err)
	}
	session, err := f.svc.Register(ctx, RegisterInput{
		AppID: app.ID, AppSecret: app.Secret,
		CountryCode: countryCode, Phone: phone,
		DeviceID: deviceID, VerificationCode: verification.TestCode,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return session
}

func TestRegister(t *testing.T) {
	f := newFixture()
	app := f.createApp(t, "NEWYORKTIMES")

	session := f.register(t, app, "62", "80989999", "device-1")
	if session.AppID != app.ID {
		t.Fatalf("expected app id %s, got %s", app.ID, session.AppID)
	}
	if len(session.Hash) < 10 {
		t.Fatalf("hash too short: %q", session.Hash)
	}
}

func TestRegisterRequiresAppCredentials(t *testing.T) {
	f := newFixture()
	app := f.createApp(t, "NEWYORKTIMES")
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{
		AppID: app.ID, AppSecret: "wrong",
		CountryCode: "62", Phone: "80989999",
		DeviceID: "device-1", VerificationCode: verification.TestCode,
	})
	if !apperr.IsKind(err, apperr.KindInvalidSecret) {
		t.Fatalf("expected invalid secret, got %v", err)
	}
}

func TestRegisterWrongCode(t *testing.T) {
	f := newFixture()
	app := f.createApp(t, "NEWYORKTIMES")
	ctx := context.Background()

	err := f.svc.VerifyPhone(ctx, VerifyInput{AppID: app.ID, AppSecret: app.Secret, CountryCode: "62", Phone: "80989999"})
	if err != nil {
		t.Fatalf("verify phone: %v", err)
	}

	_, err = f.svc.Register(ctx, RegisterInput{
		AppID: app.ID, AppSecret: app.Secret,
		CountryCode: "62", Phone: "80989999",
		DeviceID: "device-1", VerificationCode: "WRONG",
	})
	if !apperr.IsKind(err, apperr.KindInvalidVerificationCode) {
		t.Fatalf("expected invalid code, got %v", err)
	}

	// A failed register leaves no identity behind and keeps the code usable.
	if _, err := f.svc.Login(ctx, LoginInput{AppID: app.ID, AppSecret: app.Secret, ExistingHash: "anything"}); !apperr.IsKind(err, apperr.KindInvalidHash) {
		t.Fatalf("expected no identity, got %v", err)
	}
	if _, err := f.svc.Register(ctx, RegisterInput{
		AppID: app.ID, AppSecret: app.Secret,
		CountryCode: "62", Phone: "80989999",
		DeviceID: "device-1", VerificationCode: verification.TestCode,
	}); err != nil {
		t.Fatalf("register with correct code after a wrong guess: %v", err)
	}
}

func TestRegisterCodeSingleUse(t *testing.T) {
	f := newFixture()
	app := f.createApp(t, "NEWYORKTIMES")
	ctx := context.Background()

	f.register(t, app, "62", "80989999", "device-1")

	// The consumed code cannot authorize a second registration.
	_, err := f.svc.Register(ctx, RegisterInput{
		AppID: app.ID, AppSecret: app.Secret,
		CountryCode: "62", Phone: "80989999",
		DeviceID: "device-1", VerificationCode: verification.TestCode,
	})
	if !apperr.IsKind(err, apperr.KindInvalidVerificationCode) {
		t.Fatalf("expected invalid code, got %v", err)
	}
}

func TestRegisterIdempotentPerUserAndApp(t *testing.T) {
	f := newFixture()
	app := f.createApp(t, "NEWYORKTIMES")

	first := f.register(t, app, "62", "80989999", "device-1")
	// Same phone re-verifies from a different device; the hash must survive.
	second := f.register(t, app, "62", "80989999", "device-2")

	if first.Hash != second.Hash {
		t.Fatalf("re-registration must reproduce the hash, got %s and %s", first.Hash, second.Hash)
	}
}

func TestHashesAreAppScoped(t *testing.T) {
	f := newFixture()
	appA := f.createApp(t, "NEWYORKTIMES")
	appB := f.createApp(t, "THEGUARDIAN")

	a := f.register(t, appA, "62", "80989999", "device-1")
	b := f.register(t, appB, "62", "80989999", "device-1")

	if a.Hash == b.Hash {
		t.Fatalf("the same phone must get distinct hashes per app")
	}
}

func TestCrossAppLogin(t *testing.T) {
	f := newFixture()
	appA := f.createApp(t, "NEWYORKTIMES")
	appB := f.createApp(t, "THEGUARDIAN")
	ctx := context.Background()

	a := f.register(t, appA, "62", "80989999", "device-1")

	b, err := f.svc.Login(ctx, LoginInput{AppID: appB.ID, AppSecret: appB.Secret, ExistingHash: a.Hash})
	if err != nil {
		t.Fatalf("cross-app login: %v", err)
	}
	if b.AppID != appB.ID {
		t.Fatalf("expected app id %s, got %s", appB.ID, b.AppID)
	}
	if b.Hash == a.Hash {
		t.Fatalf("target app must mint its own hash")
	}

	// Stable on repeated calls.
	again, err := f.svc.Login(ctx, LoginInput{AppID: appB.ID, AppSecret: appB.Secret, ExistingHash: a.Hash})
	if err != nil {
		t.Fatalf("repeat login: %v", err)
	}
	if again.Hash != b.Hash {
		t.Fatalf("cross-app hash must be stable, got %s then %s", b.Hash, again.Hash)
	}

	// The minted hash is a full credential for the target app.
	if err := f.svc.CheckStatus(ctx, appB.ID, appB.Secret, b.Hash); err != nil {
		t.Fatalf("status check: %v", err)
	}
}

func TestLoginInvalidHash(t *testing.T) {
	f := newFixture()
	app := f.createApp(t, "NEWYORKTIMES")
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginInput{AppID: app.ID, AppSecret: app.Secret, ExistingHash: "bogus"})
	if !apperr.IsKind(err, apperr.KindInvalidHash) {
		t.Fatalf("expected invalid hash, got %v", err)
	}
}

func TestCheckStatusRejectsForeignHash(t *testing.T) {
	f := newFixture()
	appA := f.createApp(t, "NEWYORKTIMES")
	appB := f.createApp(t, "THEGUARDIAN")
	ctx := context.Background()

	a := f.register(t, appA, "62", "80989999", "device-1")

	// A hash from app A is not a credential for app B.
	err := f.svc.CheckStatus(ctx, appB.ID, appB.Secret, a.Hash)
	if !apperr.IsKind(err, apperr.KindInvalidHash) {
		t.Fatalf("expected invalid hash, got %v", err)
	}
}

func TestUpdateDevice(t *testing.T) {
	f := newFixture()
	app := f.createApp(t, "NEWYORKTIMES")
	ctx := context.Background()

	session := f.register(t, app, "62", "80989999", "device-1")

	err := f.svc.UpdateDevice(ctx, DeviceInput{
		AppID: app.ID, AppSecret: app.Secret,
		Hash: session.Hash, DeviceID: "device-2", NotifID: "notif-2",
	})
	if err != nil {
		t.Fatalf("update device: %v", err)
	}

	// The hash is unaffected by device changes.
	if err := f.svc.CheckStatus(ctx, app.ID, app.Secret, session.Hash); err != nil {
		t.Fatalf("status check after device update: %v", err)
	}
}

func TestPurgeApp(t *testing.T) {
	f := newFixture()
	appA := f.createApp(t, "NEWYORKTIMES")
	appB := f.createApp(t, "THEGUARDIAN")
	ctx := context.Background()

	a := f.register(t, appA, "62", "80989999", "device-1")
	b, err := f.svc.Login(ctx, LoginInput{AppID: appB.ID, AppSecret: appB.Secret, ExistingHash: a.Hash})
	if err != nil {
		t.Fatalf("cross-app login: %v", err)
	}

	if err := f.svc.PurgeApp(ctx, appA.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if err := f.svc.CheckStatus(ctx, appA.ID, appA.Secret, a.Hash); !apperr.IsKind(err, apperr.KindInvalidHash) {
		t.Fatalf("purged identity must be gone, got %v", err)
	}
	// The same user's identity in the other app survives.
	if err := f.svc.CheckStatus(ctx, appB.ID, appB.Secret, b.Hash); err != nil {
		t.Fatalf("other app identity must survive: %v", err)
	}
}
