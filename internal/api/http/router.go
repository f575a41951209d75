package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/audioforge/studio/internal/api/http/handlers"
	"github.com/audioforge/studio/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	History    *handlers.HistoryHandler
	Generation *handlers.GenerationHandler
	Uploads    *handlers.UploadHandler
	Pages      *handlers.PagesHandler
	Metrics    *handlers.MetricsHandler
	StaticDir  string
}

var protectedPages = []string{
	"/speech-synthesis",
	"/sound-effects",
	"/creative-platform",
	"/music-platform",
}

// RegisterRoutes wires HTTP routes. Authentication is enforced by the guard
// installed in RegisterMiddlewares; RequireSubject backs it up on API groups.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.StaticDir != "" {
		app.Static("/static", cfg.StaticDir)
		app.Static("/_assets", cfg.StaticDir)
	}

	authGroup := app.Group("/api/auth")
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Get("/me", cfg.Auth.Me)
	authGroup.Post("/logout", cfg.Auth.Logout)

	history := app.Group("/api/history", auth.RequireSubject())
	history.Get("", cfg.History.List)
	history.Delete("/:id", cfg.History.Delete)

	generate := app.Group("/api/generate", auth.RequireSubject())
	generate.Post("/speech", cfg.Generation.Speech)
	generate.Post("/speech-to-speech", cfg.Generation.SpeechToSpeech)
	generate.Post("/sound-effect", cfg.Generation.SoundEffect)
	generate.Post("/melody", cfg.Generation.Melody)
	generate.Post("/music", cfg.Generation.Music)
	generate.Post("/music/:operation", cfg.Generation.Music)
	generate.Get("/status/:audioId", cfg.Generation.Status)

	app.Get("/api/voices/:service", auth.RequireSubject(), cfg.Generation.Voices)
	app.Post("/api/uploads", auth.RequireSubject(), cfg.Uploads.Create)
	app.Get("/api/metrics", auth.RequireSubject(), cfg.Metrics.Snapshot)

	app.Get("/", cfg.Pages.Render)
	app.Get("/sign-in", cfg.Pages.Render)
	app.Get("/sign-up", cfg.Pages.Render)
	for _, prefix := range protectedPages {
		app.Get(prefix, cfg.Pages.Render)
		app.Get(prefix+"/*", cfg.Pages.Render)
	}
}
