package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/holocron/internal/server/config"
)

// PasswordHasher turns plaintext passwords into salted digests and checks
// them back.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// BcryptHasher is a PasswordHasher backed by bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher takes the work factor from cfg.
func NewBcryptHasher(cfg *config.Config) *BcryptHasher {
	return &BcryptHasher{cost: cfg.BcryptCost}
}

// Hash returns a bcrypt digest with an embedded random salt. It only fails
// for inputs bcrypt refuses (longer than 72 bytes).
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Mismatches and malformed
// digests both yield false.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
