// Package hasher turns plaintext passwords into salted one-way digests.
package hasher

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the work factor used for stored student passwords.
const DefaultCost = 10

var (
	ErrInvalidCost = errors.New("invalid bcrypt cost")
	ErrMismatch    = errors.New("password does not match hash")
)

// Bcrypt hashes and verifies passwords with a fixed work factor.
// bcrypt draws a fresh random salt on every Hash call, so equal
// plaintexts never produce equal digests.
type Bcrypt struct {
	cost int
}

// New returns a Bcrypt using cost, or ErrInvalidCost when cost is outside
// bcrypt's accepted range.
func New(cost int) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidCost, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash returns the bcrypt digest of plain.
func (b *Bcrypt) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify compares plain against a digest produced by Hash.
// It returns ErrMismatch when they do not match.
func (b *Bcrypt) Verify(digest, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	return nil
}

// Cost reports the work factor b hashes with.
func (b *Bcrypt) Cost() int {
	return b.cost
}
