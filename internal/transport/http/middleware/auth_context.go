package middleware

import "context"

type ctxKey string

const ctxIdentity ctxKey = "identity"

// Identity is the authenticated caller as seen by handlers downstream of the
// session guard.
type Identity struct {
	AccountID  string
	Role       string
	Email      string
	IsBusiness bool
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(Identity)
	return id, ok && id.AccountID != ""
}
