package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieName carries the session token.
const CookieName = "token"

// CookieOptions controls cookie attributes that vary by environment.
type CookieOptions struct {
	Secure bool
}

// SetSessionCookie stores token as an http-only, same-site strict cookie.
func SetSessionCookie(c *fiber.Ctx, token string, maxAge time.Duration, opts CookieOptions) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Expires:  time.Now().Add(maxAge),
		Secure:   opts.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// ClearSessionCookie empties the session cookie and expires it.
func ClearSessionCookie(c *fiber.Ctx, opts CookieOptions) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   opts.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
