package crypto

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted at registration or update.
const MinPasswordLength = 7

var (
	ErrPasswordTooShort     = errors.New("password must be at least 7 characters")
	ErrPasswordContainsWord = errors.New(`password cannot contain "password"`)
)

// CheckPasswordPolicy reports why a candidate password is too weak, or nil.
// Surrounding whitespace is ignored when measuring length.
func CheckPasswordPolicy(password string) error {
	trimmed := strings.TrimSpace(password)
	if utf8.RuneCountInString(trimmed) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if strings.Contains(strings.ToLower(trimmed), "password") {
		return ErrPasswordContainsWord
	}
	return nil
}
