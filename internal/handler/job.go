package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/secrethelper/api/internal/model"
	"github.com/secrethelper/api/internal/service"
	"github.com/secrethelper/api/pkg/response"
)

// JobHandler exposes status and result lookups shared by all job types
type JobHandler struct {
	jobs *service.JobService
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Status reports the progress of a background job
// GET /api/jobs/:jobId/status
func (h *JobHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")

	job, err := h.jobs.GetJob(c.Context(), jobID)
	if err != nil {
		return response.NotFound(c, "Job not found")
	}

	return response.OK(c, model.JobStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	})
}

// Result returns the stored result of a finished job
// GET /api/jobs/:jobId/result
func (h *JobHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")

	raw, job, err := h.jobs.GetResult(c.Context(), jobID)
	if err != nil {
		if job == nil {
			return response.NotFound(c, "Job not found")
		}
		if job.Status == model.JobStatusFailed {
			msg := "Job failed"
			if job.Error != nil {
				msg = *job.Error
			}
			return response.JobFailed(c, msg)
		}
		return response.JobFailed(c, "Job not finished yet")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}
