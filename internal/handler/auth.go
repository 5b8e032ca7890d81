package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/secrethelper/api/internal/middleware"
	"github.com/secrethelper/api/pkg/response"
)

// AuthHandler exposes token introspection
type AuthHandler struct{}

// NewAuthHandler creates a new auth handler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Verify confirms the bearer token is valid and echoes its identity.
// The auth middleware has already rejected invalid tokens before this runs.
// GET /api/auth/verify
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{
		"valid":  true,
		"userId": middleware.GetUserID(c),
		"email":  middleware.GetUserEmail(c),
	})
}
