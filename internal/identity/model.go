package identity

import "time"

// User is the global, app-independent anchor for a verified phone number.
// The number itself is never stored; Lookup is its keyed one-way hash and is
// the only way a returning phone resolves to the same user.
type User struct {
	ID        string
	Lookup    string
	CreatedAt time.Time
}

// AppUser is the per-(app, user) identity. Hash is the durable credential the
// SDK stores client-side in place of a password; it is unique on its own and
// the (UserID, AppID) pair is unique as well. DeviceID and NotifID exist for
// push routing only and never feed the hash.
type AppUser struct {
	UserID    string
	AppID     string
	Hash      string
	DeviceID  string
	NotifID   string
	CreatedAt time.Time
}

// Session is what a successful register or login hands back to the SDK: the
// app id and the opaque per-app hash, nothing else identifying.
type Session struct {
	AppID string `json:"appId"`
	Hash  string `json:"hash"`
}
