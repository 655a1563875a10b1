package answers

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Override recognises the operator code that satisfies every validator.
type Override interface {
	Match(input string) bool
}

// Code is an override kept in plain text. Matching is exact and
// case-sensitive after trimming surrounding whitespace.
type Code string

func (c Code) Match(input string) bool {
	return c != "" && strings.TrimSpace(input) == string(c)
}

// HashedCode is an override stored as a bcrypt hash.
type HashedCode []byte

func (h HashedCode) Match(input string) bool {
	input = strings.TrimSpace(input)
	if len(h) == 0 || input == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(h, []byte(input)) == nil
}

// HashCode returns the bcrypt hash to put in OVERRIDE_CODE_HASH.
func HashCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing override code: %w", err)
	}
	return string(hash), nil
}

// NewOverride prefers hash when set, otherwise the plain code.
func NewOverride(code, hash string) Override {
	if hash != "" {
		return HashedCode(hash)
	}
	return Code(code)
}
