// Package auth holds the credential engine (password hashing, token issuance
// and verification) and the authorization gate that turns bearer tokens into
// authenticated caller contexts.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is bcrypt's input limit. Longer passwords are rejected
// outright instead of being silently truncated.
const maxPasswordBytes = 72

// ErrPasswordTooLong is returned by HashPassword for passwords beyond the
// bcrypt input limit.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword hashes a password with bcrypt and a per-call random salt.
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. Malformed hashes
// simply fail verification.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
