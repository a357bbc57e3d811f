package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

var hashSalt string

func init() {
	// In production, set LOG_HASH_SALT.
	hashSalt = os.Getenv("LOG_HASH_SALT")
	if hashSalt == "" {
		hashSalt = "default-salt-change-in-production"
	}
}

// HashID creates a privacy-preserving short hash of a record identifier, so
// log lines can be correlated without exposing the id itself.
func HashID(id string) string {
	hash := sha256.Sum256([]byte(id + ":" + hashSalt))
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeEmail keeps the domain of an address and hides the mailbox.
func SanitizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return SanitizeText(email)
	}
	return "***" + email[at:]
}

// SanitizeText is a general-purpose sanitizer for user-provided or stored text.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}

	if len(text) <= 10 {
		return fmt.Sprintf("<%d chars>", len(text))
	}

	return fmt.Sprintf("%s...<%d chars>", text[:3], len(text))
}
