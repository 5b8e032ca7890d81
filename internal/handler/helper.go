package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/secrethelper/api/internal/helper"
	"github.com/secrethelper/api/internal/model"
	"github.com/secrethelper/api/internal/service"
	"github.com/secrethelper/api/pkg/response"
)

// HelperHandler exposes the co-writer endpoints
type HelperHandler struct {
	jobs     *service.JobService
	sessions *service.SessionService
	helper   *helper.Service
	validate *validator.Validate
}

// NewHelperHandler creates a new helper handler
func NewHelperHandler(jobs *service.JobService, sessions *service.SessionService, helperSvc *helper.Service) *HelperHandler {
	return &HelperHandler{
		jobs:     jobs,
		sessions: sessions,
		helper:   helperSvc,
		validate: validator.New(),
	}
}

// Generate starts a co-writer turn as a background job
// POST /api/helper/generate
func (h *HelperHandler) Generate(c *fiber.Ctx) error {
	var req model.HelperGenerateRequest
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

	payload := &model.HelperJobPayload{
		SessionID:   sess.ID,
		Message:     req.Message,
		Settings:    req.Settings,
		CurrentSong: req.CurrentSong,
	}

	job, err := h.jobs.StartHelper(c.Context(), payload)
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

// Regenerate rewrites a single section of the session's current draft
// POST /api/helper/regenerate
func (h *HelperHandler) Regenerate(c *fiber.Ctx) error {
	var req model.HelperRegenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validate.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	sess, err := h.sessions.Get(c.Context(), req.SessionID)
	if err != nil {
		return response.NotFound(c, "Session not found")
	}

	if sess.LastResult == nil || !sess.LastResult.HasSong() {
		return response.ValidationError(c, "No current draft to regenerate", nil)
	}

	payload := &model.HelperJobPayload{
		SessionID:   sess.ID,
		Message:     h.helper.RegenerateMessage(req.Section),
		Settings:    req.Settings,
		CurrentSong: sess.LastResult,
	}

	job, err := h.jobs.StartHelper(c.Context(), payload)
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
