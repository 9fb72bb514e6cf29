package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldcrew/marketplace-api/internal/domain"
)

// RegisterInput is the pre-validated registration record. The schema layer
// guarantees presence and shape; the core still re-normalizes the email.
type RegisterInput struct {
	Name       string
	Phone      string
	Email      string
	Password   string
	Address    string
	Image      string
	IsBusiness bool
}

// Register creates a new account and issues a session token for it.
// Uniqueness is pre-checked for latency, but the store's unique constraint is
// the authoritative guard: a create that loses the race still comes back as
// domain.ErrEmailAlreadyExists, never as an internal error.
func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	if in.Email == "" {
		return AuthResult{}, domain.ErrMissingField("email")
	}
	if in.Password == "" {
		return AuthResult{}, domain.ErrMissingField("password")
	}

	// Fast path: reject known duplicates before paying for the hash.
	if _, err := s.accounts.GetByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, domain.ErrEmailAlreadyExists()
	} else if !domain.Is(err, "account_not_found") {
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, domain.ErrHashFailed(err)
	}

	a := domain.Account{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      in.Address,
		Image:        in.Image,
		IsBusiness:   in.IsBusiness,
		Role:         string(domain.DefaultRole(in.IsBusiness)),
	}

	created, err := s.accounts.Create(ctx, a)
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.issueToken(created)
	if err != nil {
		return AuthResult{}, err
	}

	if s.pub != nil {
		// Best-effort: a broker outage must not fail the registration.
		_ = s.pub.PublishAccountRegistered(ctx, AccountRegisteredEvent{
			AccountID:  created.ID,
			Email:      created.Email,
			Name:       created.Name,
			IsBusiness: created.IsBusiness,
		})
	}

	s.audit("account_registered", map[string]string{
		"account_id": created.ID,
		"role":       created.Role,
	})

	return AuthResult{Account: created, Token: token}, nil
}
