package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/secrethelper/api/internal/model"
	"github.com/secrethelper/api/internal/service"
	"github.com/secrethelper/api/pkg/response"
)

// SongHandler exposes the full song pipeline endpoints
type SongHandler struct {
	jobs     *service.JobService
	sessions *service.SessionService
	validate *validator.Validate
}

// NewSongHandler creates a new song handler
func NewSongHandler(jobs *service.JobService, sessions *service.SessionService) *SongHandler {
	return &SongHandler{
		jobs:     jobs,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Start kicks off the full song pipeline as a background job
// POST /api/songs/start
func (h *SongHandler) Start(c *fiber.Ctx) error {
	var req model.SongStartRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validate.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	sess, err := h.sessions.GetOrCreate(c.Context(), req.SessionID)
	if err != nil {
		return response.ServiceError(c, "Failed to load session")
	}

	payload := &model.SongJobPayload{
		SessionID:    sess.ID,
		Message:      req.Message,
		Settings:     req.Settings,
		CustomLyrics: req.CustomLyrics,
	}

	job, err := h.jobs.StartSong(c.Context(), payload)
	if err != nil {
		return response.ServiceError(c, "Failed to start job")
	}

	return response.Accepted(c, model.JobStartResponse{
		JobID:     job.ID,
		SessionID: sess.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
	})
}
