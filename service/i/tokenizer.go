package i

import (
	"time"
)

// Tokenizer defines methods for generating and decoding bearer tokens.
type Tokenizer interface {
	// Generate creates a token with the given claims that expires after expTime.
	Generate(claims map[string]any, expTime time.Duration) (string, error)

	// Decode checks signature, expiry and issuer, returning the claims.
	Decode(token string) (map[string]any, error)
}
