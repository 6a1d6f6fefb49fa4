// Package crypto hashes and verifies account passwords with Argon2id.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"

	"github.com/FredericTischler/safe-zone/internal/errs"
)

// Argon2id parameters.
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024 // KiB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

const (
	// SaltLen is the size of a per-account salt.
	SaltLen = 16
	// MinPasswordLen is the shortest accepted password, in characters.
	MinPasswordLen = 8
	// MaxPasswordLen caps the input fed to Argon2.
	MaxPasswordLen = 256
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// CheckPassword enforces the password length policy.
func CheckPassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLen {
		return errs.Validation("password must be at least %d characters", MinPasswordLen)
	}
	if n > MaxPasswordLen {
		return errs.Validation("password must be at most %d characters", MaxPasswordLen)
	}
	return nil
}

// NewCredential draws a fresh salt and hashes password with it.
func NewCredential(password string) (hash, salt []byte, err error) {
	salt, err = RandBytes(SaltLen)
	if err != nil {
		return nil, nil, err
	}
	return HashPassword([]byte(password), salt), salt, nil
}

// HashPassword returns the Argon2id hash of password under salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword compares password against the stored hash in constant time.
func VerifyPassword(password, salt, expected []byte) bool {
	if len(expected) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(HashPassword(password, salt), expected) == 1
}
