// Package password hashes and verifies stored credentials.
package password

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used when none is configured.
const DefaultCost = 12

// MaxBytes is the longest password bcrypt accepts. Length is counted in
// bytes, so multi-byte characters use up the budget faster.
const MaxBytes = 72

// ErrTooLong is returned by Hash for passwords over MaxBytes.
var ErrTooLong = errors.New("the length must be no more than 72 bytes")

// LengthRule rejects passwords that Hash would refuse.
var LengthRule = validation.By(func(value any) error {
	if s, ok := value.(string); ok && len(s) > MaxBytes {
		return ErrTooLong
	}
	return nil
})

// Hasher defines the minimal hashing interface so the algorithm can be
// swapped without touching callers.
type Hasher interface {
	Hash(pw string) (string, error)
	Verify(pw, hash string) bool
}

// Bcrypt implements Hasher. Its hashes embed algorithm, cost and salt,
// so Verify needs nothing but the stored string.
type Bcrypt struct{ Cost int }

// Hash returns the bcrypt hash of pw.
func (b Bcrypt) Hash(pw string) (string, error) {
	if len(pw) > MaxBytes {
		return "", ErrTooLong
	}
	cost := b.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether pw matches hash. Malformed or empty hashes
// never match.
func (b Bcrypt) Verify(pw, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
