package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize = 16
	keySize  = 32
)

// PBKDF2Iterations is the work factor for password hashing. Tests lower it.
var PBKDF2Iterations = 600000

var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword derives a PBKDF2-HMAC-SHA256 key from password with a fresh
// random salt.
func HashPassword(password string) (hash, salt []byte, err error) {
	if password == "" {
		return nil, nil, ErrEmptyPassword
	}

	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, keySize, sha256.New), salt, nil
}

// VerifyPassword compares in constant time.
func VerifyPassword(password string, hash, salt []byte) bool {
	if password == "" || len(hash) == 0 || len(salt) == 0 {
		return false
	}

	computed := pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, len(hash), sha256.New)
	return subtle.ConstantTimeCompare(computed, hash) == 1
}
