package invites

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	TokenPrefix = "oki_"
	TokenBytes  = 32

	// Token sources recorded when an invitation is accepted.
	TokenSourceService  = "service"
	TokenSourceWorkflow = "workflow"
)

// GenerateToken returns a new invitation token for invitations minted by
// this service. The invite workflow mints its own tokens, so lookups never
// require this format.
func GenerateToken() (string, error) {
	randomBytes := make([]byte, TokenBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return TokenPrefix + base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

// IsGeneratedToken reports whether token has the shape GenerateToken produces.
func IsGeneratedToken(token string) bool {
	encoded, ok := strings.CutPrefix(token, TokenPrefix)
	if !ok {
		return false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	return len(decoded) == TokenBytes
}

// TokenSource labels who minted token: this service (admin create-invite)
// or the external invite workflow.
func TokenSource(token string) string {
	if IsGeneratedToken(token) {
		return TokenSourceService
	}
	return TokenSourceWorkflow
}
