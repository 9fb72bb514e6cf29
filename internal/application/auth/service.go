package auth

import (
	"context"
	"time"

	"github.com/fieldcrew/marketplace-api/internal/domain"
)

const (
	DefaultTokenTTL      = 7 * 24 * time.Hour
	DefaultLockThreshold = 3
	DefaultLockDuration  = 24 * time.Hour
)

type Service struct {
	accounts AccountRepo
	hasher   PasswordHasher
	signer   TokenSigner
	pub      EventPublisher

	tokenTTL      time.Duration
	lockThreshold int
	lockDuration  time.Duration

	audit func(action string, fields map[string]string)
}

type Config struct {
	TokenTTL      time.Duration
	LockThreshold int
	LockDuration  time.Duration
}

func NewService(
	accounts AccountRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	pub EventPublisher,
	cfg Config,
) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	threshold := cfg.LockThreshold
	if threshold <= 0 {
		threshold = DefaultLockThreshold
	}
	lockFor := cfg.LockDuration
	if lockFor <= 0 {
		lockFor = DefaultLockDuration
	}
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		signer:   signer,
		pub:      pub,
		audit:    func(string, map[string]string) {},

		tokenTTL:      ttl,
		lockThreshold: threshold,
		lockDuration:  lockFor,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// TokenTTL reports the fixed session token lifetime. There is no refresh
// mechanism; re-authentication is the only renewal path.
func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }

// GetAccount returns the account behind an authenticated session.
func (s *Service) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// AuthResult is the common output of Register and Login.
type AuthResult struct {
	Account domain.Account
	Token   string
}

// issueToken signs a session token scoped to one account.
func (s *Service) issueToken(a domain.Account) (string, error) {
	return s.signer.SignSessionToken(TokenIdentity{
		AccountID:  a.ID,
		Role:       a.Role,
		Email:      a.Email,
		IsBusiness: a.IsBusiness,
	}, s.tokenTTL)
}
