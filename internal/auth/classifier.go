package auth

import "strings"

// Page paths used by the guard.
const (
	SignInPath = "/sign-in"
	SignUpPath = "/sign-up"
	apiPrefix  = "/api/"
)

// Classifier decides which paths skip authentication.
type Classifier struct {
	publicPaths   map[string]struct{}
	assetPrefixes []string
}

// NewClassifier builds a classifier from an exact-match allow-list and a set
// of static asset prefixes.
func NewClassifier(publicPaths, assetPrefixes []string) *Classifier {
	set := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		set[p] = struct{}{}
	}
	return &Classifier{publicPaths: set, assetPrefixes: append([]string(nil), assetPrefixes...)}
}

// DefaultClassifier returns the service's allow-list.
func DefaultClassifier() *Classifier {
	return NewClassifier(
		[]string{
			"/",
			SignInPath,
			SignUpPath,
			"/api/auth/signin",
			"/api/auth/signup",
			"/api/auth/me",
			"/api/auth/logout",
			"/health/live",
			"/health/ready",
		},
		[]string{"/static/", "/_assets/"},
	)
}

// IsPublic reports whether path is reachable without a session.
func (c *Classifier) IsPublic(path string) bool {
	if _, ok := c.publicPaths[path]; ok {
		return true
	}
	if strings.Contains(path, ".") {
		return true
	}
	for _, prefix := range c.assetPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsAPI reports whether path addresses the JSON API rather than a page.
func IsAPI(path string) bool {
	return strings.HasPrefix(path, apiPrefix)
}
