package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost provides a good balance between security and
	// login latency.
	DefaultBcryptCost = 10
)

// BcryptHasher hashes credentials with bcrypt at a configurable cost. It
// satisfies the directory's PasswordHasher capability; comparison runs in
// constant time, raw passwords are never stored.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher. Costs outside bcrypt's valid
// range fall back to DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash generates a bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare checks a bcrypt hash against its possible plaintext in constant
// time.
func (h *BcryptHasher) Compare(hashed, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}
