package session

import (
	"fmt"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Signer computes and checks HMAC-SHA256 MACs with a process-wide secret.
type Signer struct {
	key    []byte
	method *jwt.SigningMethodHMAC
}

// NewSigner derives the signing key from secret.
func NewSigner(secret string) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: secret is empty", ErrConfiguration)
	}
	return &Signer{key: []byte(secret), method: jwt.SigningMethodHS256}, nil
}

// Sign returns the MAC of message.
func (s *Signer) Sign(message []byte) ([]byte, error) {
	sig, err := s.method.Sign(string(message), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	return sig, nil
}

// Verify reports whether signature is the MAC of message. The comparison is
// constant time.
func (s *Signer) Verify(message, signature []byte) bool {
	return s.method.Verify(string(message), signature, s.key) == nil
}
