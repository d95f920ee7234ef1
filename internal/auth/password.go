package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsPasswordHash reports whether a stored credential looks like a bcrypt hash.
func IsPasswordHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// MatchPassword checks password against a stored credential, which is either a
// bcrypt hash or a plain value compared exactly.
func MatchPassword(password, stored string) bool {
	if IsPasswordHash(stored) {
		return CheckPassword(password, stored)
	}
	return password == stored
}
