package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/audioforge/studio/internal/api/http"
	"github.com/audioforge/studio/internal/api/http/handlers"
	"github.com/audioforge/studio/internal/auth"
	"github.com/audioforge/studio/internal/blob"
	"github.com/audioforge/studio/internal/events"
	"github.com/audioforge/studio/internal/modelapi"
	"github.com/audioforge/studio/internal/observability"
	"github.com/audioforge/studio/internal/repository"
	"github.com/audioforge/studio/internal/service"
	"github.com/audioforge/studio/internal/session"
)

type testServer struct {
	app      *fiber.App
	sessions *session.Service
	clock    *time.Time
	model    *httptest.Server
	failWith string
}

type serverSettings struct {
	requestTimeout time.Duration
	modelTimeout   time.Duration
	modelDelay     time.Duration
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWith(t, serverSettings{requestTimeout: 5 * time.Second, modelTimeout: 5 * time.Second})
}

func newTestServerWith(t *testing.T, settings serverSettings) *testServer {
	t.Helper()

	now := time.Now()
	ts := &testServer{clock: &now}

	ts.model = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if settings.modelDelay > 0 {
			time.Sleep(settings.modelDelay)
		}
		if ts.failWith != "" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"` + ts.failWith + `"}`))
			return
		}
		if r.URL.Path == "/voices" {
			_, _ = w.Write([]byte(`{"voices":["alba"]}`))
			return
		}
		_, _ = w.Write([]byte(`{"audio_url":"https://cdn.example/out.wav","blob_name":"out.wav"}`))
	}))
	t.Cleanup(ts.model.Close)

	sessions, err := session.NewService("router-test-secret", session.WithClock(func() time.Time { return *ts.clock }))
	require.NoError(t, err)
	ts.sessions = sessions

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	mem := repository.NewMemoryStore()

	client := modelapi.NewClient(ts.model.URL, "", settings.modelTimeout)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   mem.Users(),
		Sessions:   sessions,
		BcryptCost: bcrypt.MinCost,
		Dispatcher: dispatcher,
	})
	historyService := service.NewHistoryService(service.HistoryDependencies{
		HistoryRepo: mem.History(),
		Blobs:       blob.Disabled{},
		Dispatcher:  dispatcher,
	})
	generationService := service.NewGenerationService(service.GenerationDependencies{
		Clients:    service.ModelClients{Speech: client, VoiceConversion: client, SoundEffect: client, Melody: client, Music: client},
		History:    historyService,
		Statuses:   repository.NewMemoryStatusStore(time.Hour),
		Dispatcher: dispatcher,
	})

	cookies := auth.CookieOptions{}
	guard := auth.NewGuard(sessions, auth.DefaultClassifier(), cookies, logger)

	ts.app = httptransport.NewApp("audio-studio", logger, metrics)
	httptransport.RegisterMiddlewares(ts.app, logger, metrics, settings.requestTimeout, guard)
	httptransport.RegisterRoutes(ts.app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler("audio-studio", "test", nil),
		Auth:       handlers.NewAuthHandler(authService, guard, cookies),
		History:    handlers.NewHistoryHandler(historyService),
		Generation: handlers.NewGenerationHandler(generationService),
		Uploads:    handlers.NewUploadHandler(service.NewUploadService(nil)),
		Pages:      handlers.NewPagesHandler("Audio Studio"),
		Metrics:    handlers.NewMetricsHandler(metrics),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func errorBody(t *testing.T, resp *http.Response) (string, string) {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	readJSON(t, resp, &body)
	return body.Error, body.Code
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func (ts *testServer) signIn(t *testing.T) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1", "confirmPassword": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email": "ada@example.com", "password": "secret1", "rememberMe": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	_ = resp.Body.Close()
	return cookie.Value
}

func TestSignUpSignInAndMe(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Ada", "email": "Ada@Example.com", "password": "secret1", "confirmPassword": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp))
	var created struct {
		Message string `json:"message"`
		User    struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	readJSON(t, resp, &created)
	assert.Equal(t, "User created successfully", created.Message)
	assert.Equal(t, "ada@example.com", created.User.Email)

	resp = ts.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	_ = resp.Body.Close()

	payload, err := ts.sessions.Validate(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, payload.SubjectID)
	assert.Equal(t, int64(604800), payload.ExpiresAt-payload.IssuedAt)

	resp = ts.do(t, http.MethodGet, "/api/auth/me", cookie.Value, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me struct {
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}
	readJSON(t, resp, &me)
	assert.Equal(t, created.User.ID, me.User.ID)
	assert.Equal(t, "Ada", me.User.Name)
}

func TestSignUpValidation(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		body map[string]string
		want string
	}{
		{map[string]string{"name": "A", "email": "a@x.com", "password": "secret1"}, "Please fill in all fields"},
		{map[string]string{"name": "A", "email": "a@x.com", "password": "secret1", "confirmPassword": "secret2"}, "Passwords do not match"},
		{map[string]string{"name": "A", "email": "a@x.com", "password": "abc", "confirmPassword": "abc"}, "Password must be at least 6 characters long"},
		{map[string]string{"name": "A", "email": "nope", "password": "secret1", "confirmPassword": "secret1"}, "Please provide a valid email"},
	}
	for _, tc := range cases {
		resp := ts.do(t, http.MethodPost, "/api/auth/signup", "", tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		msg, _ := errorBody(t, resp)
		assert.Equal(t, tc.want, msg)
	}

	ts.signIn(t)
	resp := ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1", "confirmPassword": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	msg, _ := errorBody(t, resp)
	assert.Equal(t, "User already exists with this email", msg)
}

func TestSignInFailures(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t)

	resp := ts.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "ada@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	msg, _ := errorBody(t, resp)
	assert.Equal(t, "Please provide email and password", msg)

	for _, creds := range []map[string]string{
		{"email": "ada@example.com", "password": "wrong-pass"},
		{"email": "ghost@example.com", "password": "secret1"},
	} {
		resp := ts.do(t, http.MethodPost, "/api/auth/signin", "", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Nil(t, sessionCookie(resp))
		msg, _ := errorBody(t, resp)
		assert.Equal(t, "Invalid credentials", msg)
	}
}

func TestMeWithoutSession(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	msg, _ := errorBody(t, resp)
	assert.Equal(t, "Not authenticated", msg)

	resp = ts.do(t, http.MethodGet, "/api/auth/me", "x.y.z", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	msg, _ = errorBody(t, resp)
	assert.Equal(t, "Invalid token", msg)

	orphan, _, err := ts.sessions.Issue("deleted-user")
	require.NoError(t, err)
	resp = ts.do(t, http.MethodGet, "/api/auth/me", orphan, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	msg, _ = errorBody(t, resp)
	assert.Equal(t, "User not found", msg)
}

func TestLogoutClearsCookie(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	var body map[string]string
	readJSON(t, resp, &body)
	assert.Equal(t, "Logout successful", body["message"])
}

func TestSignOutThenMeIsUnauthorized(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	resp := ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := sessionCookie(resp)
	require.NotNil(t, cleared)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/auth/me", cleared.Value, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	msg, _ := errorBody(t, resp)
	assert.Equal(t, "Not authenticated", msg)
}

func TestRoutingMatchesGuardClassification(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	resp := ts.do(t, http.MethodPost, "/api/auth/signin/", "", map[string]any{
		"email": "ada@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp))
	_ = resp.Body.Close()

	for _, path := range []string{"/API/history?service=melody-maker", "/api/history/?service=melody-maker"} {
		resp = ts.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		_ = resp.Body.Close()
	}

	resp = ts.do(t, http.MethodGet, "/api/history?service=melody-maker", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestProtectedAPIRejectsMissingAndTamperedTokens(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	resp := ts.do(t, http.MethodGet, "/api/history?service=melody-maker", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	msg, code := errorBody(t, resp)
	assert.Equal(t, "Unauthorized", msg)
	assert.Equal(t, "UNAUTHORIZED", code)

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-1] + flip(parts[1][len(parts[1])-1])
	resp = ts.do(t, http.MethodGet, "/api/history?service=melody-maker", strings.Join(parts, "."), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	msg, _ = errorBody(t, resp)
	assert.Equal(t, "Invalid token", msg)
}

func flip(b byte) string {
	if b == 'A' {
		return "B"
	}
	return "A"
}

func TestProtectedPageRedirects(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/sound-effects/generate", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/sign-in?from="+url.QueryEscape("/sound-effects/generate"), resp.Header.Get("Location"))

	token := ts.signIn(t)
	resp = ts.do(t, http.MethodGet, "/sound-effects/generate", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	_ = resp.Body.Close()

	*ts.clock = ts.clock.Add(session.DefaultTTL + time.Second)
	resp = ts.do(t, http.MethodGet, "/music-platform/melody-maker", token, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)

	resp = ts.do(t, http.MethodGet, "/sign-in", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerationAndHistoryFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	resp := ts.do(t, http.MethodPost, "/api/generate/sound-effect", token, map[string]string{"prompt": "distant thunder"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var generated struct {
		AudioID                 string `json:"audioId"`
		AudioURL                string `json:"audioUrl"`
		ShouldShowThrottleAlert bool   `json:"shouldShowThrottleAlert"`
	}
	readJSON(t, resp, &generated)
	assert.NotEmpty(t, generated.AudioID)
	assert.Equal(t, "https://cdn.example/out.wav", generated.AudioURL)
	assert.False(t, generated.ShouldShowThrottleAlert)

	resp = ts.do(t, http.MethodGet, "/api/generate/status/"+generated.AudioID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status struct {
		Success  bool    `json:"success"`
		AudioURL *string `json:"audioUrl"`
	}
	readJSON(t, resp, &status)
	assert.True(t, status.Success)
	require.NotNil(t, status.AudioURL)

	resp = ts.do(t, http.MethodGet, "/api/history?service=make-an-audio", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	readJSON(t, resp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Sound Effect: distant thunder", items[0].Title)

	resp = ts.do(t, http.MethodDelete, "/api/history/"+items[0].ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodDelete, "/api/history/"+items[0].ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/history", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	msg, _ := errorBody(t, resp)
	assert.Equal(t, "Service parameter is required", msg)
}

func TestGenerationUpstreamFailure(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)
	ts.failWith = "model overloaded"

	resp := ts.do(t, http.MethodPost, "/api/generate/melody", token, map[string]any{"prompt": "lofi beat"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	msg, code := errorBody(t, resp)
	assert.Equal(t, "model overloaded", msg)
	assert.Equal(t, "UPSTREAM_FAILED", code)

	resp = ts.do(t, http.MethodGet, "/api/generate/status/does-not-exist", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status map[string]any
	readJSON(t, resp, &status)
	assert.Equal(t, false, status["success"])
	assert.Nil(t, status["audioUrl"])
}

func TestMusicOperationsAndVoices(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	resp := ts.do(t, http.MethodPost, "/api/generate/music/extend", token, map[string]any{"src_audio_path": "song.wav"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/api/generate/music/remix", token, map[string]any{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/api/generate/music/edit", token, map[string]any{"src_audio_path": "song.wav"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	msg, _ := errorBody(t, resp)
	assert.Equal(t, "Missing or invalid parameters: edit_target_prompt", msg)

	resp = ts.do(t, http.MethodGet, "/api/voices/styletts2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var voices map[string][]string
	readJSON(t, resp, &voices)
	assert.Equal(t, []string{"alba"}, voices["voices"])
}

func TestGenerationOutlivesRequestTimeout(t *testing.T) {
	ts := newTestServerWith(t, serverSettings{
		requestTimeout: 200 * time.Millisecond,
		modelTimeout:   5 * time.Second,
		modelDelay:     400 * time.Millisecond,
	})
	token := ts.signIn(t)

	resp := ts.do(t, http.MethodPost, "/api/generate/sound-effect", token, map[string]any{"prompt": "rain on a tin roof"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res map[string]any
	readJSON(t, resp, &res)
	assert.Equal(t, "https://cdn.example/out.wav", res["audioUrl"])
}

func TestGenerationBoundedByModelTimeout(t *testing.T) {
	ts := newTestServerWith(t, serverSettings{
		requestTimeout: 5 * time.Second,
		modelTimeout:   100 * time.Millisecond,
		modelDelay:     400 * time.Millisecond,
	})
	token := ts.signIn(t)

	resp := ts.do(t, http.MethodPost, "/api/generate/sound-effect", token, map[string]any{"prompt": "rain"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	msg, _ := errorBody(t, resp)
	assert.Equal(t, "Failed to generate sound effect", msg)
}

func TestUploadsUnavailableWithoutStorage(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	resp := ts.do(t, http.MethodPost, "/api/uploads", token, map[string]string{"fileType": "audio/wav"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestMetricsCountRequests(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	resp := ts.do(t, http.MethodGet, "/api/metrics", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap observability.Snapshot
	readJSON(t, resp, &snap)
	assert.NotEmpty(t, snap.Requests)
}
