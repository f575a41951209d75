package session

import "errors"

var (
	// ErrConfiguration reports unusable secret material. It is a startup failure.
	ErrConfiguration = errors.New("session: invalid signing configuration")
	// ErrMalformedToken reports a token that does not parse into header, payload and signature.
	ErrMalformedToken = errors.New("session: malformed token")
	// ErrInvalidSignature reports a token whose MAC does not match.
	ErrInvalidSignature = errors.New("session: invalid signature")
	// ErrTokenExpired reports a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("session: token expired")
)

// IsExpired reports whether err is an expiry failure, the one case a client
// may answer by silently re-authenticating.
func IsExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}
