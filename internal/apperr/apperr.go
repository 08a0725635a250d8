// Package apperr defines the closed error taxonomy shared by all services.
// Errors carry an explicit kind so handlers map them to HTTP responses
// without string matching.
package apperr

import "fmt"

// Kind classifies an application error.
type Kind int

const (
	// KindValidation indicates malformed caller input.
	KindValidation Kind = iota + 1
	// KindInvalidAppID indicates an unknown tenant app identifier.
	KindInvalidAppID
	// KindInvalidSecret indicates a tenant app secret mismatch.
	KindInvalidSecret
	// KindInvalidHash indicates an unknown app-user login hash.
	KindInvalidHash
	// KindInvalidVerificationCode indicates a wrong, expired or already
	// consumed phone verification code.
	KindInvalidVerificationCode
	// KindVerificationFailed indicates the verification provider logically
	// rejected a code. Callers treat it the same as an invalid code.
	KindVerificationFailed
	// KindDuplicate indicates a unique-constraint conflict on create.
	KindDuplicate
	// KindNotFound indicates a missing record.
	KindNotFound
	// KindUnauthorized indicates failed console authentication.
	KindUnauthorized
	// KindProvider indicates a network or provider fault. Retryable by the
	// caller; never retried here.
	KindProvider
)

// Error is a tagged application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a tagged error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a tagged error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error with a kind and message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or 0 for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return 0
	}
	return e.Kind
}

// IsKind reports whether err is tagged with the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// CodeRejected reports whether err means the presented verification code was
// not accepted, regardless of whether the store or the provider rejected it.
func CodeRejected(err error) bool {
	k := KindOf(err)
	return k == KindInvalidVerificationCode || k == KindVerificationFailed
}
