// Package service provides the cryptographic helpers behind webhook delivery:
// payload signing, secret generation and at-rest secret protection.
package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

// SecretSize is the number of random bytes in a webhook secret.
const SecretSize = 32

// Signer computes and checks webhook payload signatures.
type Signer interface {
	// Sign returns hex(HMAC-SHA256(secret, payload)).
	Sign(secret string, payload []byte) string
	// Verify reports whether signature matches payload under secret in constant time.
	Verify(secret string, payload []byte, signature string) bool
}

type hmacSigner struct{}

// NewSigner creates an HMAC-SHA256 Signer.
func NewSigner() Signer {
	return hmacSigner{}
}

func (hmacSigner) Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s hmacSigner) Verify(secret string, payload []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}

// GenerateSecret returns SecretSize random bytes hex-encoded.
func GenerateSecret() (string, error) {
	randomBytes := make([]byte, SecretSize)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate webhook secret")
	}
	return hex.EncodeToString(randomBytes), nil
}
