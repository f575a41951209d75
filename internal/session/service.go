package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// Algorithm is the only accepted header alg.
	Algorithm = "HS256"
	// TokenType tags tokens issued by this service.
	TokenType = "token-v1"
	// DefaultTTL is the fixed session lifetime.
	DefaultTTL = 7 * 24 * time.Hour
)

// Header is the first token segment.
type Header struct {
	Alg  string `json:"alg"`
	Type string `json:"type"`
}

// Payload is the second token segment.
type Payload struct {
	SubjectID string `json:"subjectId"`
	IssuedAt  int64  `json:"issuedAt"`
	ExpiresAt int64  `json:"expiresAt"`
}

// ExpiresTime returns ExpiresAt as a time.Time.
func (p Payload) ExpiresTime() time.Time {
	return time.Unix(p.ExpiresAt, 0)
}

// Service issues and validates session tokens. It holds no mutable state and
// is safe for concurrent use.
type Service struct {
	signer *Signer
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewService builds a Service signing with secret.
func NewService(secret string, opts ...Option) (*Service, error) {
	signer, err := NewSigner(secret)
	if err != nil {
		return nil, err
	}
	s := &Service{signer: signer, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue creates a token for subjectID.
func (s *Service) Issue(subjectID string) (string, time.Time, error) {
	if strings.TrimSpace(subjectID) == "" {
		return "", time.Time{}, fmt.Errorf("issue token: empty subject")
	}

	now := s.now().Unix()
	payload := Payload{
		SubjectID: subjectID,
		IssuedAt:  now,
		ExpiresAt: now + int64(s.ttl/time.Second),
	}

	headerJSON, err := json.Marshal(Header{Alg: Algorithm, Type: TokenType})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encode header: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encode payload: %w", err)
	}

	input := signingInput(EncodeSegment(headerJSON), EncodeSegment(payloadJSON))
	sig, err := s.signer.Sign([]byte(input))
	if err != nil {
		return "", time.Time{}, err
	}
	return input + segmentSeparator + EncodeSegment(sig), payload.ExpiresTime(), nil
}

// Validate checks the token's signature and expiry and returns its payload.
// Failures wrap ErrMalformedToken, ErrInvalidSignature or ErrTokenExpired.
func (s *Service) Validate(token string) (*Payload, error) {
	headerSeg, payloadSeg, sigSeg, err := SplitToken(token)
	if err != nil {
		return nil, err
	}

	sig, err := DecodeSegment(sigSeg)
	if err != nil {
		return nil, err
	}
	if !s.signer.Verify([]byte(signingInput(headerSeg, payloadSeg)), sig) {
		return nil, ErrInvalidSignature
	}

	var header Header
	if err := decodeJSONSegment(headerSeg, &header); err != nil {
		return nil, err
	}
	if header.Alg != Algorithm {
		return nil, fmt.Errorf("%w: unexpected alg %q", ErrMalformedToken, header.Alg)
	}

	var payload Payload
	if err := decodeJSONSegment(payloadSeg, &payload); err != nil {
		return nil, err
	}
	if payload.SubjectID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}

	if payload.ExpiresAt <= s.now().Unix() {
		return nil, ErrTokenExpired
	}
	return &payload, nil
}

func decodeJSONSegment(seg string, v any) error {
	raw, err := DecodeSegment(seg)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return nil
}
