package verification

import "context"

// Sentinel values returned by the test-mode provider so the rest of the
// system runs deterministically without live provider access.
const (
	TestRequestID = "TEST_REQUEST_ID"
	TestCode      = "1234"
)

// Provider abstracts the phone-verification backend. Two flows exist: the
// remote flow (RequestCode/CheckCode) where the provider generates and checks
// the code, and the SMS flow (SendCode) where the service generates the code
// and only uses the provider for delivery.
type Provider interface {
	// RequestCode asks the provider to generate and deliver a code, returning
	// the provider's request id.
	RequestCode(ctx context.Context, number string) (string, error)
	// CheckCode asks the provider whether code is valid for a prior request.
	CheckCode(ctx context.Context, requestID, code string) error
	// SendCode delivers a locally generated code over SMS.
	SendCode(ctx context.Context, number, code string) error
}

// TestProvider is the adapter variant used when provider credentials are not
// configured. It never touches the network: requests return fixed sentinels
// and checks always succeed.
type TestProvider struct{}

// RequestCode returns the sentinel request id without any network call.
func (TestProvider) RequestCode(_ context.Context, _ string) (string, error) {
	return TestRequestID, nil
}

// CheckCode always succeeds in test mode.
func (TestProvider) CheckCode(_ context.Context, _, _ string) error {
	return nil
}

// SendCode is a no-op in test mode.
func (TestProvider) SendCode(_ context.Context, _, _ string) error {
	return nil
}
