// Package account is the backend authentication service for Guard. It
// owns the users table, password hashing, and account creation, and
// implements the session.Verifier contract the session store calls. The
// session core never touches this package's internals -- only the
// Verifier seam.
package account

import (
	"time"
)

// User is a registered Guard account. PasswordHash is an argon2id PHC
// string and never leaves this package.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	CreatedAt    time.Time `json:"created_at"`
}
