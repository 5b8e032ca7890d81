package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/secrethelper/api/internal/service"
	"github.com/secrethelper/api/pkg/response"
)

// SessionHandler exposes conversation session lookups
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get returns a session with its full transcript and last draft
// GET /api/sessions/:sessionId
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	sess, err := h.sessions.Get(c.Context(), sessionID)
	if err != nil {
		return response.NotFound(c, "Session not found")
	}

	return response.OK(c, sess)
}
