package memory

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/fieldcrew/marketplace-api/internal/application/auth"
)

// NoopPublisher logs lifecycle events instead of publishing them. Used when
// no broker is configured (dev mode, tests).
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishAccountRegistered(ctx context.Context, evt auth.AccountRegisteredEvent) error {
	log.Info().
		Str("account_id", evt.AccountID).
		Str("email", evt.Email).
		Bool("is_business", evt.IsBusiness).
		Msg("noop publisher: account registered")
	return nil
}

func (p *NoopPublisher) PublishAccountLocked(ctx context.Context, evt auth.AccountLockedEvent) error {
	log.Warn().
		Str("account_id", evt.AccountID).
		Int("attempts", evt.Attempts).
		Time("lock_until", evt.LockUntil).
		Msg("noop publisher: account locked")
	return nil
}
