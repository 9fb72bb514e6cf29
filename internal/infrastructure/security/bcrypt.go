package security

import (
	"github.com/fieldcrew/marketplace-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is deliberately above the library default; offline
// brute force against a leaked hash has to pay for every guess.
const DefaultBcryptCost = 12

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}
	return string(b), nil
}

// Compare runs in time independent of where a mismatch occurs; bcrypt's
// comparison is constant-time over the full digest.
func (h *BcryptHasher) Compare(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
