package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/middleware"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/service"
)

// AuthHandler handles registration, login, and session lookup
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// SessionResponse carries the user and a signed bearer token
type SessionResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new account and returns a session token
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, token, err := h.authService.Register(service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFieldsRequired):
			return NewValidationError(c, "All fields are required", nil)
		case errors.Is(err, domain.ErrPasswordMismatch):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "confirmPassword", Message: "Passwords do not match"},
			})
		case errors.Is(err, domain.ErrPasswordTooShort):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "password", Message: "Password must be at least 6 characters"},
			})
		case errors.Is(err, domain.ErrInvalidEmail):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "email", Message: "Must be a valid email address"},
			})
		case errors.Is(err, domain.ErrUsernameTaken):
			return NewConflictError(c, "Username already exists")
		case errors.Is(err, domain.ErrEmailTaken):
			return NewConflictError(c, "Email already registered")
		}
		log.Error().Err(err).Msg("Failed to register user")
		return NewInternalError(c, "Failed to register")
	}

	return c.JSON(http.StatusCreated, SessionResponse{User: user, Token: token})
}

// Login authenticates by username or email and returns a session token
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, token, err := h.authService.Login(req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "Invalid username/email or password")
		}
		log.Error().Err(err).Msg("Failed to log in user")
		return NewInternalError(c, "Failed to log in")
	}

	return c.JSON(http.StatusOK, SessionResponse{User: user, Token: token})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)

	user, err := h.authService.GetUser(userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Msg("Failed to load user")
		return NewInternalError(c, "Failed to load user")
	}

	return c.JSON(http.StatusOK, user)
}
