package verification

import (
	"context"
	"time"

	"github.com/phoneid/phoneid/internal/apperr"
	"github.com/phoneid/phoneid/internal/credential"
)

// Service coordinates the verification store and the provider adapter. It
// owns TTL policy: the store never self-expires, an aged row is simply
// treated as invalid at check time.
type Service struct {
	repo     Repository
	provider Provider
	ttl      time.Duration
	sandbox  bool
	now      func() time.Time
}

// NewService builds a verification service. The provider variant is fixed at
// construction; when it is the test-mode adapter, generated codes use the
// fixed sentinel so flows stay deterministic.
func NewService(repo Repository, provider Provider, ttl time.Duration) *Service {
	_, sandbox := provider.(TestProvider)
	return &Service{repo: repo, provider: provider, ttl: ttl, sandbox: sandbox, now: time.Now}
}

// Send generates a short numeric code, records it as the single pending
// verification for the number and delivers it over SMS.
func (s *Service) Send(ctx context.Context, countryCode, phone string) (Verification, error) {
	number := credential.CombinePhone(countryCode, phone)

	code := TestCode
	if !s.sandbox {
		var err error
		code, err = credential.RandomDigits(codeLength)
		if err != nil {
			return Verification{}, err
		}
	}

	v := Verification{Number: number, Code: code, CreatedAt: s.now().UTC()}
	if err := s.repo.Upsert(ctx, v); err != nil {
		return Verification{}, err
	}
	if err := s.provider.SendCode(ctx, number, code); err != nil {
		return Verification{}, err
	}
	return v, nil
}

// Confirm consumes the pending code for the number. The store's atomic
// check-and-delete is the authority: of two concurrent calls presenting the
// same code, exactly one succeeds.
func (s *Service) Confirm(ctx context.Context, countryCode, phone, code string) error {
	number := credential.CombinePhone(countryCode, phone)

	v, err := s.repo.Find(ctx, number)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Newf(apperr.KindInvalidVerificationCode, "no pending verification for (%s) %s", countryCode, phone)
		}
		return err
	}
	if s.expired(v) {
		_ = s.repo.Delete(ctx, number)
		return apperr.New(apperr.KindInvalidVerificationCode, "verification code expired")
	}

	count, err := s.repo.DeleteMatching(ctx, number, code)
	if err != nil {
		return err
	}
	if count != 1 {
		return apperr.New(apperr.KindInvalidVerificationCode, "invalid verification code")
	}
	return nil
}

// Request starts a remote verification where the provider generates and
// delivers the code, keeping only the provider request id locally.
func (s *Service) Request(ctx context.Context, countryCode, phone string) (string, error) {
	number := credential.CombinePhone(countryCode, phone)

	requestID, err := s.provider.RequestCode(ctx, number)
	if err != nil {
		return "", err
	}
	v := Verification{Number: number, Code: requestID, CreatedAt: s.now().UTC()}
	if err := s.repo.Upsert(ctx, v); err != nil {
		return "", err
	}
	return requestID, nil
}

// Check validates a code against the provider for a pending remote request,
// consuming the request on success.
func (s *Service) Check(ctx context.Context, countryCode, phone, code string) error {
	number := credential.CombinePhone(countryCode, phone)

	v, err := s.repo.Find(ctx, number)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Newf(apperr.KindInvalidVerificationCode, "no pending verification for (%s) %s", countryCode, phone)
		}
		return err
	}
	if s.expired(v) {
		_ = s.repo.Delete(ctx, number)
		return apperr.New(apperr.KindInvalidVerificationCode, "verification code expired")
	}

	if err := s.provider.CheckCode(ctx, v.Code, code); err != nil {
		return err
	}

	count, err := s.repo.DeleteMatching(ctx, number, v.Code)
	if err != nil {
		return err
	}
	if count != 1 {
		// A concurrent check already consumed this request.
		return apperr.New(apperr.KindInvalidVerificationCode, "invalid verification code")
	}
	return nil
}

func (s *Service) expired(v Verification) bool {
	return s.ttl > 0 && s.now().Sub(v.CreatedAt) > s.ttl
}
