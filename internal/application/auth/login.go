package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/fieldcrew/marketplace-api/internal/domain"
)

// Login runs the lockout state machine for one attempt and, on success,
// issues a session token.
//
// Unknown emails and wrong passwords produce the identical
// domain.ErrInvalidCredentials so responses cannot be used to enumerate
// registered emails. Lock state is re-read from the store on every attempt;
// the service holds no account snapshot between requests.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "account_not_found") {
			return AuthResult{}, domain.ErrInvalidCredentials()
		}
		return AuthResult{}, err
	}

	now := time.Now()
	if a.LockedAt(now) {
		// Password is deliberately not compared while locked.
		return AuthResult{}, domain.ErrAccountLocked(a.LockUntil.Sub(now))
	}

	if err := s.hasher.Compare(a.PasswordHash, password); err != nil {
		return AuthResult{}, s.recordFailure(ctx, a)
	}

	// Clear lockout state, but only when there is something to clear.
	if a.FailedLoginAttempts > 0 || a.LockUntil != nil {
		if err := s.accounts.ResetLoginState(ctx, a.ID); err != nil {
			return AuthResult{}, err
		}
		a.FailedLoginAttempts = 0
		a.LockUntil = nil
	}

	token, err := s.issueToken(a)
	if err != nil {
		return AuthResult{}, err
	}

	s.audit("account_logged_in", map[string]string{"account_id": a.ID})

	return AuthResult{Account: a, Token: token}, nil
}

// recordFailure persists the failed attempt and returns the error the caller
// must surface. The increment and the conditional lock happen in one atomic
// store write, so concurrent failures cannot silently drop a count.
func (s *Service) recordFailure(ctx context.Context, a domain.Account) error {
	attempts, lockUntil, err := s.accounts.RecordFailedLogin(ctx, a.ID, s.lockThreshold, s.lockDuration)
	if err != nil {
		// The counter write must land before the response; surface the
		// store failure rather than pretending the attempt was counted.
		return err
	}

	if attempts >= s.lockThreshold && lockUntil != nil && lockUntil.After(time.Now()) {
		if s.pub != nil {
			_ = s.pub.PublishAccountLocked(ctx, AccountLockedEvent{
				AccountID: a.ID,
				Email:     a.Email,
				LockUntil: *lockUntil,
				Attempts:  attempts,
			})
		}
		s.audit("account_locked", map[string]string{
			"account_id": a.ID,
			"attempts":   strconv.Itoa(attempts),
		})
		return domain.ErrAccountJustLocked(s.lockThreshold, s.lockDuration)
	}

	return domain.ErrInvalidCredentials()
}
