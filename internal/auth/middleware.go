package auth

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/audioforge/studio/internal/session"
	apperrors "github.com/audioforge/studio/pkg/util"
)

const (
	subjectKey = "auth_subject"
	payloadKey = "auth_payload"

	// SubjectHeader carries the verified subject to downstream handlers.
	SubjectHeader = "X-User-Id"
)

// TokenValidator is the part of the session service the guard needs.
type TokenValidator interface {
	Validate(token string) (*session.Payload, error)
}

// ErrNoSession is returned by Identify when the request carries no token.
var ErrNoSession = errors.New("no session token")

// Guard gates every request before it reaches a page or API handler.
type Guard struct {
	tokens     TokenValidator
	classifier *Classifier
	cookies    CookieOptions
	logger     *zap.Logger
}

// NewGuard constructs the route guard.
func NewGuard(tokens TokenValidator, classifier *Classifier, cookies CookieOptions, logger *zap.Logger) *Guard {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{tokens: tokens, classifier: classifier, cookies: cookies, logger: logger}
}

// Handle enforces authentication for every non-public path.
func (g *Guard) Handle(c *fiber.Ctx) error {
	// The subject header is only ever set by the guard itself.
	c.Request().Header.Del(SubjectHeader)

	path := c.Path()
	if g.classifier.IsPublic(path) {
		return c.Next()
	}

	payload, err := g.Identify(c)
	if err != nil {
		if IsAPI(path) {
			return g.rejectAPI(err)
		}
		return g.redirectToSignIn(c, err)
	}

	c.Locals(subjectKey, payload.SubjectID)
	c.Locals(payloadKey, payload)
	c.Request().Header.Set(SubjectHeader, payload.SubjectID)
	return c.Next()
}

// Identify validates the request's session cookie without enforcing anything.
func (g *Guard) Identify(c *fiber.Ctx) (*session.Payload, error) {
	token := c.Cookies(CookieName)
	if token == "" {
		return nil, ErrNoSession
	}
	return g.tokens.Validate(token)
}

// ClearCookie expires the session cookie on the response.
func (g *Guard) ClearCookie(c *fiber.Ctx) {
	ClearSessionCookie(c, g.cookies)
}

func (g *Guard) rejectAPI(err error) error {
	if errors.Is(err, ErrNoSession) {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	return apperrors.NewUnauthorized("Invalid token")
}

func (g *Guard) redirectToSignIn(c *fiber.Ctx, err error) error {
	if !errors.Is(err, ErrNoSession) {
		g.logger.Debug("rejected session on page request", zap.String("path", c.Path()), zap.Error(err))
		ClearSessionCookie(c, g.cookies)
	}
	target := SignInPath + "?from=" + url.QueryEscape(c.Path())
	return c.Redirect(target, fiber.StatusTemporaryRedirect)
}

// SubjectFromContext returns the subject attached by the guard.
func SubjectFromContext(c *fiber.Ctx) (string, bool) {
	subject, ok := c.Locals(subjectKey).(string)
	return subject, ok && subject != ""
}

// PayloadFromContext returns the verified token payload attached by the guard.
func PayloadFromContext(c *fiber.Ctx) (*session.Payload, bool) {
	payload, ok := c.Locals(payloadKey).(*session.Payload)
	return payload, ok
}
