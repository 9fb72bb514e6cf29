package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fieldcrew/marketplace-api/internal/application/auth"
	"github.com/fieldcrew/marketplace-api/internal/domain"
)

// JWTSigner issues and verifies HS256 session tokens. The secret is loaded
// once at startup and handed in here; nothing reads it as ambient state.
type JWTSigner struct {
	secret []byte
	issuer string
}

func NewJWTSigner(secret string, issuer string) *JWTSigner {
	return &JWTSigner{
		secret: []byte(secret),
		issuer: issuer,
	}
}

type sessionClaims struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsBusiness bool   `json:"biz"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) SignSessionToken(id auth.TokenIdentity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email:      id.Email,
		Role:       id.Role,
		IsBusiness: id.IsBusiness,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// VerifySessionToken distinguishes expired from malformed/tampered tokens so
// callers can log the real cause; the session guard collapses both before
// anything reaches the client.
func (s *JWTSigner) VerifySessionToken(token string) (auth.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.TokenClaims{}, domain.ErrTokenExpired()
		}
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}

	exp := time.Time{}
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	return auth.TokenClaims{
		AccountID:  claims.Subject,
		Role:       claims.Role,
		Email:      claims.Email,
		IsBusiness: claims.IsBusiness,
		Exp:        exp,
	}, nil
}
