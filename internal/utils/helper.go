package utils

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// GenerateShareToken returns a URL-safe random token for share links.
func GenerateShareToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
