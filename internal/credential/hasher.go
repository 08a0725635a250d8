// Package credential derives the opaque identifiers the service hands out:
// tenant app secrets, per-app user hashes and the phone lookup key. All
// derivations are keyed HMAC-SHA256, so none are reversible and the same
// inputs always reproduce the same output.
package credential

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Hasher produces keyed one-way hashes using the process master secret.
type Hasher struct {
	key []byte
}

// NewHasher builds a hasher keyed by the master secret.
func NewHasher(secret string) *Hasher {
	return &Hasher{key: []byte(secret)}
}

// Sum returns the hex HMAC-SHA256 of data under the master secret.
func (h *Hasher) Sum(data string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// AppSecret derives a fresh opaque secret for a tenant app from random
// entropy and the app id. The secret is not re-derivable; losing it means
// rotating it.
func (h *Hasher) AppSecret(appID string) (string, error) {
	entropy, err := RandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate app secret entropy: %w", err)
	}
	return h.Sum(entropy + appID), nil
}

// AppUserHash derives the durable per-app user credential. The material is
// (user id, app id) only: device identifiers are deliberately excluded so a
// user re-registering from a new device reproduces the same hash. Including
// the app id isolates tenants, the same user yields a different hash per app.
func (h *Hasher) AppUserHash(userID, appID string) string {
	return h.Sum(userID + appID)
}

// UserLookup derives the key used to anchor a phone number to its global
// user record without storing the number itself.
func (h *Hasher) UserLookup(number string) string {
	return h.Sum(number)
}

const (
	digits   = "0123456789"
	alphanum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// RandomDigits returns n random decimal digits, suitable as an SMS code.
func RandomDigits(n int) (string, error) {
	return randomFrom(digits, n)
}

// RandomString returns n random alphanumeric characters.
func RandomString(n int) (string, error) {
	return randomFrom(alphanum, n)
}

func randomFrom(charset string, n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out), nil
}

// CombinePhone joins a country code and national number into the canonical
// form used as the verification key. A leading zero on the national number
// is dropped.
func CombinePhone(countryCode, phone string) string {
	if len(phone) > 0 && phone[0] == '0' {
		phone = phone[1:]
	}
	return countryCode + phone
}
