package auth

import (
	"context"
	"time"

	"github.com/fieldcrew/marketplace-api/internal/domain"
)

/*
AccountRepo
-----------
Persistence port for accounts.
Only describes WHAT the credential core needs, not HOW it's stored.
*/
type AccountRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)

	// Create persists a new account. The store's uniqueness constraint on the
	// normalized email is the authoritative guard against duplicate
	// registrations; implementations must map a unique violation to
	// domain.ErrEmailAlreadyExists.
	Create(ctx context.Context, a domain.Account) (domain.Account, error)

	// RecordFailedLogin increments the failure counter in a single atomic
	// write and, when the post-increment count reaches threshold, sets the
	// lock in the same write. It returns the post-increment state.
	RecordFailedLogin(ctx context.Context, accountID string, threshold int, lockFor time.Duration) (attempts int, lockUntil *time.Time, err error)

	// ResetLoginState zeroes the failure counter and clears any lock.
	ResetLoginState(ctx context.Context, accountID string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt / argon2.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies session tokens (JWT).
Used by the service + session guard middleware.
*/
type TokenIdentity struct {
	AccountID  string
	Role       string
	Email      string
	IsBusiness bool
}

type TokenClaims struct {
	AccountID  string
	Role       string
	Email      string
	IsBusiness bool
	Exp        time.Time
}

type TokenSigner interface {
	SignSessionToken(id TokenIdentity, ttl time.Duration) (string, error)
	VerifySessionToken(token string) (TokenClaims, error)
}

/*
EventPublisher
--------------
Publishes account lifecycle events to the broker. Consumers (notifications,
fraud review) live in other services; publishing is best-effort and never
fails the credential flow that triggered it.
*/
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, evt AccountRegisteredEvent) error
	PublishAccountLocked(ctx context.Context, evt AccountLockedEvent) error
}

type AccountRegisteredEvent struct {
	AccountID  string
	Email      string
	Name       string
	IsBusiness bool
}

type AccountLockedEvent struct {
	AccountID string
	Email     string
	LockUntil time.Time
	Attempts  int
}
