package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/secrethelper/api/internal/service"
	"github.com/secrethelper/api/pkg/response"
)

// HistoryHandler exposes the song history
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List returns recent songs, newest first
// GET /api/history
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	entries, err := h.history.List(c.Context(), limit)
	if err != nil {
		return response.ServiceError(c, "Failed to read history")
	}

	return response.OK(c, fiber.Map{"songs": entries})
}

// Clear deletes all history entries
// DELETE /api/history
func (h *HistoryHandler) Clear(c *fiber.Ctx) error {
	if err := h.history.Clear(c.Context()); err != nil {
		return response.ServiceError(c, "Failed to clear history")
	}
	return response.NoContent(c)
}
