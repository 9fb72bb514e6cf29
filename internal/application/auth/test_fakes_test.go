package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fieldcrew/marketplace-api/internal/domain"
)

/*
Fakes for ports
*/

type fakeAccountRepo struct {
	mu sync.Mutex

	byID    map[string]domain.Account
	byEmail map[string]domain.Account

	// injected errors (if set, method returns error)
	getByEmailErr error
	createErr     error
	recordErr     error
	resetErr      error

	resetIDs    []string
	recordCalls int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byID:    map[string]domain.Account{},
		byEmail: map[string]domain.Account{},
	}
}

func (f *fakeAccountRepo) put(a domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[a.ID] = a
	f.byEmail[a.Email] = a
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.Account{}, f.getByEmailErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.Account{}, f.createErr
	}
	if _, exists := f.byEmail[a.Email]; exists {
		return domain.Account{}, domain.ErrEmailAlreadyExists()
	}
	a.CreatedAt = time.Now()
	f.byID[a.ID] = a
	f.byEmail[a.Email] = a
	return a, nil
}

func (f *fakeAccountRepo) RecordFailedLogin(ctx context.Context, accountID string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.recordCalls++
	if f.recordErr != nil {
		return 0, nil, f.recordErr
	}
	a, ok := f.byID[accountID]
	if !ok {
		return 0, nil, domain.ErrAccountNotFound()
	}
	a.FailedLoginAttempts++
	now := time.Now()
	if a.FailedLoginAttempts >= threshold && (a.LockUntil == nil || !now.Before(*a.LockUntil)) {
		until := now.Add(lockFor)
		a.LockUntil = &until
	}
	f.byID[accountID] = a
	f.byEmail[a.Email] = a
	return a.FailedLoginAttempts, a.LockUntil, nil
}

func (f *fakeAccountRepo) ResetLoginState(ctx context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resetErr != nil {
		return f.resetErr
	}
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrAccountNotFound()
	}
	a.FailedLoginAttempts = 0
	a.LockUntil = nil
	f.byID[accountID] = a
	f.byEmail[a.Email] = a
	f.resetIDs = append(f.resetIDs, accountID)
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func newFakeHasher() *fakeHasher {
	return &fakeHasher{
		hashFn: func(pw string) (string, error) { return "hash:" + pw, nil },
		compareFn: func(hash, pw string) error {
			if hash == "hash:"+pw {
				return nil
			}
			return errors.New("mismatch")
		},
	}
}

func (f *fakeHasher) Hash(pw string) (string, error) { return f.hashFn(pw) }
func (f *fakeHasher) Compare(hash, pw string) error  { return f.compareFn(hash, pw) }

type fakeSigner struct {
	signErr error
	signed  []TokenIdentity
}

func (f *fakeSigner) SignSessionToken(id TokenIdentity, ttl time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.signed = append(f.signed, id)
	return "tok:" + id.AccountID, nil
}

func (f *fakeSigner) VerifySessionToken(token string) (TokenClaims, error) {
	if !strings.HasPrefix(token, "tok:") {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	return TokenClaims{AccountID: strings.TrimPrefix(token, "tok:")}, nil
}

type fakePublisher struct {
	mu         sync.Mutex
	registered []AccountRegisteredEvent
	locked     []AccountLockedEvent
	err        error
}

func (f *fakePublisher) PublishAccountRegistered(ctx context.Context, evt AccountRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, evt)
	return nil
}

func (f *fakePublisher) PublishAccountLocked(ctx context.Context, evt AccountLockedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.locked = append(f.locked, evt)
	return nil
}

/*
Helpers
*/

func newSvcForTest(t *testing.T) (*Service, *fakeAccountRepo, *fakeHasher, *fakeSigner, *fakePublisher) {
	t.Helper()

	repo := newFakeAccountRepo()
	hasher := newFakeHasher()
	signer := &fakeSigner{}
	pub := &fakePublisher{}

	svc := NewService(repo, hasher, signer, pub, Config{})
	return svc, repo, hasher, signer, pub
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	if !domain.Is(err, code) {
		t.Fatalf("expected domain code %q, got %v", code, err)
	}
}

func seedAccount(repo *fakeAccountRepo, id, email, password string) domain.Account {
	a := domain.Account{
		ID:           id,
		Email:        email,
		PasswordHash: "hash:" + password,
		Role:         string(domain.RoleTradesman),
	}
	repo.put(a)
	return a
}
