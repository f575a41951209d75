package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/audioforge/studio/pkg/util"
)

// RequireSubject ensures the guard attached a subject before the handler runs.
// It protects route groups that could be mounted outside the guard.
func RequireSubject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := SubjectFromContext(c); !ok {
			return apperrors.NewUnauthorized("Unauthorized")
		}
		return c.Next()
	}
}
