package admin

import "time"

// Admin is a console operator able to provision tenant apps.
type Admin struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
