package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// AuthHandler exposes signup, login, logout, and session introspection.
type AuthHandler struct {
	auth       *service.AuthService
	middleware *auth.SessionMiddleware
	secure     bool
}

// NewAuthHandler constructs handler. secure controls the cookie Secure flag.
func NewAuthHandler(authService *service.AuthService, middleware *auth.SessionMiddleware, secure bool) *AuthHandler {
	return &AuthHandler{auth: authService, middleware: middleware, secure: secure}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.auth.Signup(c.Context(), service.SignupInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		return err
	}

	c.Cookie(auth.SessionCookie(session.Token, session.ExpiresAt, h.secure))
	return c.JSON(fiber.Map{
		"success": true,
		"user":    sessionUser(session),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	session, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(auth.SessionCookie(session.Token, session.ExpiresAt, h.secure))
	return c.JSON(fiber.Map{
		"success": true,
		"user":    sessionUser(session),
	})
}

// Logout handles GET /api/auth/logout. The session is revoked until its
// natural expiry and the cookie is cleared either way.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if claims, err := h.middleware.ClaimsFromCookie(c); err == nil {
		if err := h.auth.Logout(c.Context(), claims); err != nil {
			return err
		}
	}
	c.Cookie(auth.ClearSessionCookie(h.secure))
	return c.JSON(fiber.Map{"success": true})
}

// ParseCookie handles GET /api/auth/parsecookie, resolving the account behind
// the current session.
func (h *AuthHandler) ParseCookie(c *fiber.Ctx) error {
	claims, err := h.middleware.ClaimsFromCookie(c)
	if err != nil {
		return apperrors.NewUnauthorized("no valid session")
	}
	session, err := h.auth.CurrentUser(c.Context(), claims)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": sessionUser(session)})
}

func sessionUser(session *service.Session) dto.UserResponse {
	return dto.UserResponse{
		ID:    session.UserID,
		Name:  session.Name,
		Email: session.Email,
		Role:  string(session.Role),
	}
}
