package password

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor, fixed process-wide.
const Cost = 12

const (
	MinLength = 8
	Symbols   = "@$!%*?&"
)

// ErrInvalidHash reports a stored hash that bcrypt cannot parse.
var ErrInvalidHash = errors.New("invalid password hash")

// Hash generates a salted bcrypt hash for the given plaintext.
func Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plaintext matches the stored hash. A mismatch is
// not an error; only a malformed hash is.
func Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
}

// StrengthCheck returns every rule the plaintext violates: minimum length,
// and at least one uppercase letter, lowercase letter, digit, and symbol.
// An empty result means the password is acceptable.
func StrengthCheck(plaintext string) []string {
	var violations []string

	if len(plaintext) < MinLength {
		violations = append(violations, fmt.Sprintf("Password must be at least %d characters long", MinLength))
	}

	var upper, lower, digit, symbol bool
	for _, r := range plaintext {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(Symbols, r):
			symbol = true
		}
	}

	if !upper {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !lower {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !digit {
		violations = append(violations, "Password must contain at least one number")
	}
	if !symbol {
		violations = append(violations, fmt.Sprintf("Password must contain at least one special character (%s)", Symbols))
	}

	return violations
}
