// Package auth provides credential hashing for account secrets.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCost is returned when a bcrypt cost is outside bcrypt's accepted range.
var ErrInvalidCost = errors.New("invalid bcrypt cost")

// CredentialHasher defines the interface for hashing and checking secrets.
type CredentialHasher interface {
	// Hash returns a salted, one-way hash of secret.
	Hash(secret string) (string, error)

	// Verify reports whether secret matches hash. A malformed hash never matches.
	Verify(secret, hash string) bool
}

// BcryptHasher implements CredentialHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the given work factor.
// A cost of 0 selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d (must be between %d and %d)",
			ErrInvalidCost, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash implements the CredentialHasher interface using bcrypt.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// Verify implements the CredentialHasher interface using bcrypt.
func (h *BcryptHasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

var _ CredentialHasher = (*BcryptHasher)(nil)
