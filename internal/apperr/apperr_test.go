package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(KindValidation, "appId is required")
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation kind")
	}

	wrapped := fmt.Errorf("handling request: %w", err)
	if KindOf(wrapped) != KindValidation {
		t.Fatalf("kind must survive wrapping")
	}

	if KindOf(errors.New("plain")) != 0 {
		t.Fatalf("untagged errors have no kind")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindProvider, "call provider", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("wrapped cause must be reachable via errors.Is")
	}
	if !IsKind(err, KindProvider) {
		t.Fatalf("expected provider kind")
	}
}

func TestCodeRejected(t *testing.T) {
	if !CodeRejected(New(KindInvalidVerificationCode, "invalid verification code")) {
		t.Fatalf("invalid code counts as rejection")
	}
	if !CodeRejected(New(KindVerificationFailed, "provider rejected code")) {
		t.Fatalf("provider rejection counts as rejection")
	}
	if CodeRejected(New(KindProvider, "timeout")) {
		t.Fatalf("provider fault is not a rejection")
	}
}
