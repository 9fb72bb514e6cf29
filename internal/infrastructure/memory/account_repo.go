package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fieldcrew/marketplace-api/internal/domain"
)

// AccountRepo is an in-memory implementation of the accounts port, used by
// dev mode and handler tests. It mirrors the postgres store's semantics:
// email uniqueness under the write lock and a single-step failure increment.
type AccountRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.Account
	byEmail map[string]string // normalized email -> account id
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		byID:    make(map[string]domain.Account),
		byEmail: make(map[string]string),
	}
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return r.byID[id], nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (r *AccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.Email = domain.NormalizeEmail(a.Email)
	if a.ID == "" || a.Email == "" {
		return domain.Account{}, domain.ErrInternal(nil)
	}
	if _, exists := r.byEmail[a.Email]; exists {
		return domain.Account{}, domain.ErrEmailAlreadyExists()
	}
	if a.Role == "" {
		a.Role = string(domain.DefaultRole(a.IsBusiness))
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	r.byID[a.ID] = a
	r.byEmail[a.Email] = a.ID
	return a, nil
}

func (r *AccountRepo) RecordFailedLogin(ctx context.Context, accountID string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[accountID]
	if !ok {
		return 0, nil, domain.ErrAccountNotFound()
	}

	a.FailedLoginAttempts++
	now := time.Now()
	if a.FailedLoginAttempts >= threshold && (a.LockUntil == nil || !now.Before(*a.LockUntil)) {
		until := now.Add(lockFor)
		a.LockUntil = &until
	}
	r.byID[accountID] = a
	return a.FailedLoginAttempts, a.LockUntil, nil
}

func (r *AccountRepo) ResetLoginState(ctx context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[accountID]
	if !ok {
		return domain.ErrAccountNotFound()
	}
	a.FailedLoginAttempts = 0
	a.LockUntil = nil
	r.byID[accountID] = a
	return nil
}
