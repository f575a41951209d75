package dto

import "github.com/audioforge/studio/internal/domain"

// SignUpRequest is the body of POST /api/auth/signup.
type SignUpRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (SignUpRequest) validationMessage(_, tag string) string {
	switch tag {
	case "required":
		return "Please fill in all fields"
	case "eqfield":
		return "Passwords do not match"
	case "min":
		return "Password must be at least 6 characters long"
	case "email":
		return "Please provide a valid email"
	}
	return ""
}

// SignInRequest is the body of POST /api/auth/signin. RememberMe is accepted
// for client compatibility; every session lasts the same seven days.
type SignInRequest struct {
	Email      string `json:"email" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

func (SignInRequest) validationMessage(_, _ string) string {
	return "Please provide email and password"
}

// AuthResponse is returned by sign-up and sign-in.
type AuthResponse struct {
	Message string         `json:"message"`
	User    domain.Profile `json:"user"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	User domain.Profile `json:"user"`
}

// MessageResponse carries a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
