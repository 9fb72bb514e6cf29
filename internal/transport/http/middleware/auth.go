package middleware

import (
	"net/http"
	"strings"

	"github.com/fieldcrew/marketplace-api/internal/application/auth"
	"github.com/fieldcrew/marketplace-api/internal/domain"
)

// AuthTokenHeader is the custom header checked before the Authorization
// header. Clients that set both get the custom header's token.
const AuthTokenHeader = "X-Auth-Token"

type TokenVerifier interface {
	VerifySessionToken(token string) (auth.TokenClaims, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// TokenExtractor pulls a raw token out of a request, returning "" when its
// transport is absent.
type TokenExtractor func(r *http.Request) string

// FromAuthTokenHeader reads the X-Auth-Token header.
func FromAuthTokenHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(AuthTokenHeader))
}

// FromBearer reads Authorization: Bearer <token>.
func FromBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// DefaultExtractors is the transport order for session tokens: the custom
// header wins over the Authorization header.
func DefaultExtractors() []TokenExtractor {
	return []TokenExtractor{FromAuthTokenHeader, FromBearer}
}

// SessionGuard verifies the session token and injects the caller's identity
// into the request context. A request with no token on any transport gets
// the missing-token error; any verification failure gets the same generic
// rejection, so the response never reveals whether the token was expired,
// tampered, or signed with the wrong key.
func SessionGuard(verifier TokenVerifier, extractors []TokenExtractor, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw string
			for _, extract := range extractors {
				if raw = extract(r); raw != "" {
					break
				}
			}
			if raw == "" {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			claims, err := verifier.VerifySessionToken(raw)
			if err != nil {
				writeErr(w, r, domain.ErrTokenRejected())
				return
			}
			if strings.TrimSpace(claims.AccountID) == "" {
				writeErr(w, r, domain.ErrTokenRejected())
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				AccountID:  claims.AccountID,
				Role:       claims.Role,
				Email:      claims.Email,
				IsBusiness: claims.IsBusiness,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
