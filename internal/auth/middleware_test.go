package auth_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioforge/studio/internal/auth"
	"github.com/audioforge/studio/internal/session"
	apperrors "github.com/audioforge/studio/pkg/util"
)

func TestClassifier_IsPublic(t *testing.T) {
	t.Parallel()

	c := auth.DefaultClassifier()
	cases := map[string]bool{
		"/":                         true,
		"/sign-in":                  true,
		"/sign-up":                  true,
		"/api/auth/signin":          true,
		"/api/auth/signup":          true,
		"/api/auth/me":              true,
		"/api/auth/logout":          true,
		"/favicon.ico":              true,
		"/static/app.js":            true,
		"/static/chunks/main":       true,
		"/_assets/font":             true,
		"/sound-effects/generate":   false,
		"/speech-synthesis":         false,
		"/api/history":              false,
		"/api/auth/me/":             false,
		"/sign-in/extra":            false,
		"/api/generate/music":       false,
		"/creative-platform/home":   false,
		"/music-platform/melody-ma": false,
	}
	for path, want := range cases {
		for i := 0; i < 3; i++ {
			assert.Equal(t, want, c.IsPublic(path), path)
		}
	}
}

func TestIsAPI(t *testing.T) {
	t.Parallel()

	assert.True(t, auth.IsAPI("/api/history"))
	assert.False(t, auth.IsAPI("/apiary"))
	assert.False(t, auth.IsAPI("/sound-effects"))
}

type guardFixture struct {
	app    *fiber.App
	tokens *session.Service
	clock  *time.Time
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()

	now := time.Unix(1_700_000_000, 0)
	clock := &now
	tokens, err := session.NewService("guard-secret", session.WithClock(func() time.Time { return *clock }))
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Message, "code": de.Code})
		},
	})
	guard := auth.NewGuard(tokens, auth.DefaultClassifier(), auth.CookieOptions{}, nil)
	app.Use(guard.Handle)

	echo := func(c *fiber.Ctx) error {
		subject, _ := auth.SubjectFromContext(c)
		return c.JSON(fiber.Map{
			"subject": subject,
			"header":  c.Get(auth.SubjectHeader),
		})
	}
	app.Get("/api/history", auth.RequireSubject(), echo)
	app.Get("/sound-effects/generate", echo)
	app.Get("/", echo)
	app.Get("/static/app.js", echo)

	return &guardFixture{app: app, tokens: tokens, clock: clock}
}

func (f *guardFixture) do(t *testing.T, path, token string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestGuard_ProtectedAPI(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)

	resp := f.do(t, "/api/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", decode(t, resp)["error"])

	resp = f.do(t, "/api/history", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", decode(t, resp)["error"])

	token, _, err := f.tokens.Issue("user-42")
	require.NoError(t, err)
	resp = f.do(t, "/api/history", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "user-42", body["subject"])
	assert.Equal(t, "user-42", body["header"])
}

func TestGuard_ProtectedPageRedirects(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	wantLocation := "/sign-in?from=" + url.QueryEscape("/sound-effects/generate")

	resp := f.do(t, "/sound-effects/generate", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, wantLocation, resp.Header.Get("Location"))
	assert.Empty(t, resp.Cookies())

	token, _, err := f.tokens.Issue("user-42")
	require.NoError(t, err)
	*f.clock = f.clock.Add(session.DefaultTTL)

	resp = f.do(t, "/sound-effects/generate", token, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, wantLocation, resp.Header.Get("Location"))

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))
}

func TestGuard_ValidPagePassesThrough(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	token, _, err := f.tokens.Issue("user-7")
	require.NoError(t, err)

	resp := f.do(t, "/sound-effects/generate", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-7", decode(t, resp)["subject"])
}

func TestGuard_PublicPathsIgnoreTokenState(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	for _, token := range []string{"", "garbage", "a.b.c"} {
		for _, path := range []string{"/", "/static/app.js"} {
			resp := f.do(t, path, token, nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode, "%s with %q", path, token)
			_ = resp.Body.Close()
		}
	}
}

func TestGuard_StripsSpoofedSubjectHeader(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)

	resp := f.do(t, "/", "", map[string]string{auth.SubjectHeader: "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", decode(t, resp)["header"])

	token, _, err := f.tokens.Issue("user-42")
	require.NoError(t, err)
	resp = f.do(t, "/api/history", token, map[string]string{auth.SubjectHeader: "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-42", decode(t, resp)["header"])
}
