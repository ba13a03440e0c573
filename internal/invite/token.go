// internal/invite/token.go
package invite

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes of secure random yields a 64-character URL-safe token,
// enough entropy that guessing is infeasible. Uniqueness is enforced
// by the database index, not here.
const tokenBytes = 48

func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
