// Package password wraps credential hashing. Login passwords go through
// bcrypt; refresh tokens are stored as SHA-256 digests so a leaked table
// cannot replay them.
package password

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for every stored password
const DefaultCost = 12

// Hash bcrypt-hashes a plaintext password
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether the plaintext matches the stored bcrypt hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// HashToken returns the hex SHA-256 digest used as the lookup key for a
// stored refresh token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidatePassword enforces the minimum length of 8 characters
func ValidatePassword(password string) bool {
	return len(password) >= 8
}
