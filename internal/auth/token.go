package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// AdminTokenCost is the bcrypt cost used when hashing admin tokens.
const AdminTokenCost = 12

var ErrInvalidToken = errors.New("invalid admin token")

// HashAdminToken creates a bcrypt hash of an admin token, suitable for the
// ADMIN_TOKEN_HASH configuration value.
func HashAdminToken(token string) (string, error) {
	// bcrypt has a 72-byte limit
	if len(token) > 72 {
		return "", errors.New("token exceeds maximum length of 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), AdminTokenCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAdminToken compares a presented token with the configured hash.
func CheckAdminToken(token, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

// GenerateVisitorID creates a cryptographically random opaque identity for
// an anonymous caller.
func GenerateVisitorID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateCSRFSecret creates a random 32-byte secret for CSRF token signing.
func GenerateCSRFSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
