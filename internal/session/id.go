package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// idEntropyBytes is the raw length of a session identifier before
// encoding. 32 bytes gives 256 bits of entropy.
const idEntropyBytes = 32

// GenerateID returns a cryptographically random session identifier in
// unpadded base64url form.
func GenerateID() (string, error) {
	b := make([]byte, idEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
