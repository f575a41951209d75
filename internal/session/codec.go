package session

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const segmentSeparator = "."

// EncodeSegment encodes b with the URL-safe base64 alphabet and no padding.
func EncodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeSegment reverses EncodeSegment. Padding is optional on input.
func DecodeSegment(seg string) ([]byte, error) {
	if pad := (4 - len(seg)%4) % 4; pad > 0 {
		seg += strings.Repeat("=", pad)
	}
	b, err := base64.URLEncoding.DecodeString(seg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return b, nil
}

// SplitToken splits a compact token into its three segments.
func SplitToken(token string) (header, payload, signature string, err error) {
	parts := strings.Split(token, segmentSeparator)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	for _, p := range parts {
		if p == "" {
			return "", "", "", fmt.Errorf("%w: empty segment", ErrMalformedToken)
		}
	}
	return parts[0], parts[1], parts[2], nil
}

func signingInput(header, payload string) string {
	return header + segmentSeparator + payload
}
