package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/audioforge/studio/internal/api/dto"
	"github.com/audioforge/studio/internal/auth"
	apperrors "github.com/audioforge/studio/pkg/util"
)

func subject(c *fiber.Ctx) (string, error) {
	userID, ok := auth.SubjectFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthorized("Unauthorized")
	}
	return userID, nil
}

// bindJSON parses the body into req and validates it.
func bindJSON(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("Invalid request body", nil)
	}
	return dto.Validate(req)
}
