package domain

import (
	"strings"
	"time"
)

// Account is the persisted credential + identity record for one registered
// tradesperson or business.
type Account struct {
	ID           string
	Name         string
	Phone        string
	Email        string
	PasswordHash string
	Address      string
	Image        string
	IsBusiness   bool
	Role         string

	// Lockout state. FailedLoginAttempts only grows on failed logins and is
	// reset to zero on success. A non-nil LockUntil in the future rejects
	// logins regardless of password correctness.
	FailedLoginAttempts int
	LockUntil           *time.Time

	CreatedAt time.Time
}

// NormalizeEmail trims and lower-cases an email. Idempotent, so it is safe to
// apply again on input the validation layer already normalized.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LockedAt reports whether the account is locked at the given instant.
func (a Account) LockedAt(now time.Time) bool {
	return a.LockUntil != nil && now.Before(*a.LockUntil)
}
