package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/audioforge/studio/internal/api/dto"
	"github.com/audioforge/studio/internal/auth"
	"github.com/audioforge/studio/internal/service"
	apperrors "github.com/audioforge/studio/pkg/util"
)

// AuthHandler exposes sign-up, sign-in and session endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	guard   *auth.Guard
	cookies auth.CookieOptions
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, guard *auth.Guard, cookies auth.CookieOptions) *AuthHandler {
	return &AuthHandler{auth: authService, guard: guard, cookies: cookies}
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Please fill in all fields", nil)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.auth.SignUp(c.UserContext(), service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.AuthResponse{
		Message: "User created successfully",
		User:    user.Profile(),
	})
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Please provide email and password", nil)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, token, _, err := h.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	auth.SetSessionCookie(c, token, h.auth.Sessions().TTL(), h.cookies)
	return c.JSON(dto.AuthResponse{
		Message: "Login successful",
		User:    user.Profile(),
	})
}

// Me handles GET /api/auth/me. The path is public, so the session is read here.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	payload, err := h.guard.Identify(c)
	if err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			return apperrors.NewUnauthorized("Not authenticated")
		}
		return apperrors.NewUnauthorized("Invalid token")
	}

	user, err := h.auth.CurrentUser(c.UserContext(), payload.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(dto.MeResponse{User: user.Profile()})
}

// Logout handles POST /api/auth/logout. It always succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.guard.ClearCookie(c)
	return c.JSON(dto.MessageResponse{Message: "Logout successful"})
}
