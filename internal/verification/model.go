package verification

import "time"

// Verification is a short-lived mapping from a phone number to a pending
// code. The number is the primary key: at most one verification is pending
// per phone at any time.
type Verification struct {
	// Number is the combined country code and national number.
	Number string
	// Code holds either the locally generated SMS code or the provider's
	// request id, depending on the flow.
	Code      string
	CreatedAt time.Time
}
