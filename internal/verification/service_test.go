package verification

import (
	"context"
	"testing"
	"time"

	"github.com/phoneid/phoneid/internal/apperr"
)

func TestSendCreatesSinglePending(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, TestProvider{}, time.Minute)
	ctx := context.Background()

	first, err := svc.Send(ctx, "62", "80989999")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if first.Number != "6280989999" {
		t.Fatalf("unexpected number %s", first.Number)
	}
	if first.Code != TestCode {
		t.Fatalf("test mode must use the sentinel code, got %s", first.Code)
	}

	second, err := svc.Send(ctx, "62", "80989999")
	if err != nil {
		t.Fatalf("second send: %v", err)
	}

	stored, err := repo.Find(ctx, "6280989999")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Code != second.Code {
		t.Fatalf("resend must replace the pending code")
	}
}

func TestConfirmConsumesCode(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, TestProvider{}, time.Minute)
	ctx := context.Background()

	v, err := svc.Send(ctx, "62", "80989999")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.Confirm(ctx, "62", "80989999", v.Code); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// Codes are single use.
	err = svc.Confirm(ctx, "62", "80989999", v.Code)
	if !apperr.IsKind(err, apperr.KindInvalidVerificationCode) {
		t.Fatalf("expected invalid code on replay, got %v", err)
	}
}

func TestConfirmWrongCode(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, TestProvider{}, time.Minute)
	ctx := context.Background()

	if _, err := svc.Send(ctx, "62", "80989999"); err != nil {
		t.Fatalf("send: %v", err)
	}

	err := svc.Confirm(ctx, "62", "80989999", "0000")
	if !apperr.IsKind(err, apperr.KindInvalidVerificationCode) {
		t.Fatalf("expected invalid code, got %v", err)
	}

	// The pending code survives a wrong guess.
	if _, err := repo.Find(ctx, "6280989999"); err != nil {
		t.Fatalf("pending verification must remain: %v", err)
	}
}

func TestConfirmNoPending(t *testing.T) {
	svc := NewService(NewMemoryRepository(), TestProvider{}, time.Minute)
	err := svc.Confirm(context.Background(), "62", "80989999", TestCode)
	if !apperr.IsKind(err, apperr.KindInvalidVerificationCode) {
		t.Fatalf("expected invalid code, got %v", err)
	}
}

func TestConfirmExpired(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, TestProvider{}, time.Minute)
	ctx := context.Background()

	v, err := svc.Send(ctx, "62", "80989999")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// Age the pending verification past the TTL; the store never sweeps, the
	// service treats the stale row as invalid at check time.
	svc.now = func() time.Time { return v.CreatedAt.Add(2 * time.Minute) }

	err = svc.Confirm(ctx, "62", "80989999", v.Code)
	if !apperr.IsKind(err, apperr.KindInvalidVerificationCode) {
		t.Fatalf("expected expired code to be invalid, got %v", err)
	}
	if _, err := repo.Find(ctx, "6280989999"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expired verification should be dropped, got %v", err)
	}
}

func TestConcurrentConfirmSingleWinner(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, TestProvider{}, time.Minute)
	ctx := context.Background()

	v, err := svc.Send(ctx, "62", "80989999")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			results <- svc.Confirm(ctx, "62", "80989999", v.Code)
		}()
	}

	var ok, rejected int
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			ok++
		} else if apperr.IsKind(err, apperr.KindInvalidVerificationCode) {
			rejected++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Fatalf("expected exactly one winner, got ok=%d rejected=%d", ok, rejected)
	}
}

func TestRemoteFlow(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, TestProvider{}, time.Minute)
	ctx := context.Background()

	requestID, err := svc.Request(ctx, "62", "80989999")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if requestID != TestRequestID {
		t.Fatalf("expected sentinel request id, got %s", requestID)
	}

	if err := svc.Check(ctx, "62", "80989999", "anything"); err != nil {
		t.Fatalf("check: %v", err)
	}

	// The request is consumed on success.
	err = svc.Check(ctx, "62", "80989999", "anything")
	if !apperr.IsKind(err, apperr.KindInvalidVerificationCode) {
		t.Fatalf("expected consumed request to be invalid, got %v", err)
	}
}
