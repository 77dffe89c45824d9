package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	hashSaltLength        = 16
	hashTime       uint32 = 2
	hashMemory     uint32 = 64 * 1024
	hashThreads    uint8  = 4
	hashKeyLength  uint32 = 32
)

// HashPassword generates an Argon2id hash for the provided password.
// The resulting string is encoded as "salt:hash" with both parts base64-encoded.
func HashPassword(password string) (string, error) {
	salt := make([]byte, hashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, hashTime, hashMemory, hashThreads, hashKeyLength)

	return base64.StdEncoding.EncodeToString(salt) + ":" + base64.StdEncoding.EncodeToString(sum), nil
}

// VerifyPassword compares the provided password against a stored Argon2id hash.
// Empty inputs verify as false without error.
func VerifyPassword(password, encoded string) (bool, error) {
	if password == "" || encoded == "" {
		return false, nil
	}

	parts := strings.Split(encoded, ":")
	if len(parts) != 2 {
		return false, fmt.Errorf("invalid password hash format")
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}

	stored, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, hashTime, hashMemory, hashThreads, uint32(len(stored)))

	return subtle.ConstantTimeCompare(computed, stored) == 1, nil
}
