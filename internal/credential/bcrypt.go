// Package credential implements password hashing.
package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/auth-service/internal/model"
)

// DefaultCost is the bcrypt cost used for new hashes.
const DefaultCost = 10

var _ model.CredentialVerifier = (*Bcrypt)(nil)

// Bcrypt hashes passwords with bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a Bcrypt with the given cost, falling back to DefaultCost
// when cost is out of range.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (b *Bcrypt) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
