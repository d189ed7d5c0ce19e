package utils

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is the shortest password accepted for staff and users.
const MinPasswordLen = 8

var ErrWeakPassword = errors.New("password must be at least 8 characters")

// CheckPassword enforces the length rule. bcrypt ignores bytes past 72,
// so longer passwords are refused rather than silently truncated.
func CheckPassword(plain string) error {
	if utf8.RuneCountInString(plain) < MinPasswordLen {
		return ErrWeakPassword
	}
	if len(plain) > 72 {
		return errors.New("password must be at most 72 bytes")
	}
	return nil
}

// HashPassword returns the bcrypt hash of plain at cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash with plain in constant time.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
