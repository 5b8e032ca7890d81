package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/secrethelper/api/internal/helper"
	"github.com/secrethelper/api/internal/model"
	"github.com/secrethelper/api/internal/orchestrator"
	"github.com/secrethelper/api/internal/service"
	"github.com/secrethelper/api/internal/websocket"
)

// HelperWorker processes co-writer jobs from the helper queue
type HelperWorker struct {
	jobs     *service.JobService
	sessions *service.SessionService
	helper   *helper.Service
	orch     *orchestrator.Orchestrator
	hub      *websocket.Hub
}

// NewHelperWorker creates a new helper worker
func NewHelperWorker(
	jobs *service.JobService,
	sessions *service.SessionService,
	helperSvc *helper.Service,
	orch *orchestrator.Orchestrator,
	hub *websocket.Hub,
) *HelperWorker {
	return &HelperWorker{
		jobs:     jobs,
		sessions: sessions,
		helper:   helperSvc,
		orch:     orch,
		hub:      hub,
	}
}

// ProcessTask handles a helper job: one "thinking" pipeline stage whose
// heartbeats are mirrored into the session transcript and over WebSocket.
func (w *HelperWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var tp service.TaskPayload
	if err := json.Unmarshal(t.Payload(), &tp); err != nil {
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}

	var payload model.HelperJobPayload
	if err := w.jobs.GetPayload(ctx, tp.JobID, &payload); err != nil {
		return err
	}

	log.Printf("Processing helper job %s (session %s)", tp.JobID, payload.SessionID)

	if err := w.jobs.MarkRunning(ctx, tp.JobID); err != nil {
		return err
	}

	sess, err := w.sessions.GetOrCreate(ctx, payload.SessionID)
	if err != nil {
		return w.fail(ctx, tp.JobID, nil, fmt.Errorf("session load failed: %w", err))
	}

	// The current draft defaults to the session's last result
	if payload.CurrentSong == nil {
		payload.CurrentSong = sess.LastResult
	}

	sess.Conversation.Append(model.RoleUser, payload.Message)
	sess.Conversation.Append(model.RoleAssistant, "Thinking ▪ ▫ ▫")
	if err := w.sessions.Save(ctx, sess); err != nil {
		log.Printf("Failed to save session %s: %v", sess.ID, err)
	}

	stages := []orchestrator.Stage{
		{
			Name:    "thinking",
			Percent: 50,
			Label:   "Thinking",
			Work: func(ctx context.Context, _ interface{}) (interface{}, error) {
				return w.helper.Generate(ctx, &payload)
			},
		},
	}

	for snap := range w.orch.Run(ctx, stages) {
		switch snap.Status {
		case orchestrator.StatusRunning:
			w.progress(ctx, tp.JobID, sess, snap)

		case orchestrator.StatusFailed:
			return w.fail(ctx, tp.JobID, sess, snap.Err)

		case orchestrator.StatusSucceeded:
			res, ok := snap.Result.(*model.StructuredResult)
			if !ok {
				return w.fail(ctx, tp.JobID, sess, fmt.Errorf("unexpected result type %T", snap.Result))
			}
			return w.complete(ctx, tp.JobID, sess, res)
		}
	}

	// Channel closed without a terminal snapshot: the context was cancelled
	return w.fail(ctx, tp.JobID, sess, ctx.Err())
}

func (w *HelperWorker) progress(ctx context.Context, jobID string, sess *model.Session, snap orchestrator.Snapshot) {
	if err := w.jobs.UpdateProgress(ctx, jobID, snap.Percent, snap.Label); err != nil {
		log.Printf("Failed to update job %s: %v", jobID, err)
	}
	w.hub.BroadcastProgress(jobID, snap.Stage, snap.Percent, model.JobStatusRunning, snap.Label)

	sess.Conversation.ReplaceLast(snap.Label)
	if err := w.sessions.Save(ctx, sess); err != nil {
		log.Printf("Failed to save session %s: %v", sess.ID, err)
	}
}

func (w *HelperWorker) complete(ctx context.Context, jobID string, sess *model.Session, res *model.StructuredResult) error {
	if err := w.jobs.Complete(ctx, jobID, res); err != nil {
		return err
	}

	final := res.AssistantMessage
	if res.NeedClarification && res.ClarifyingQuestion != "" {
		final = res.ClarifyingQuestion
	}
	if final == "" {
		final = "Here's the updated draft."
	}
	sess.Conversation.ReplaceLast(final)
	sess.LastResult = res
	if err := w.sessions.Save(ctx, sess); err != nil {
		log.Printf("Failed to save session %s: %v", sess.ID, err)
	}

	w.hub.BroadcastComplete(jobID, res)
	log.Printf("Helper job %s completed", jobID)
	return nil
}

func (w *HelperWorker) fail(ctx context.Context, jobID string, sess *model.Session, cause error) error {
	if cause == nil {
		cause = fmt.Errorf("job aborted")
	}
	log.Printf("Helper job %s failed: %v", jobID, cause)

	msg := "Generation failed. Please try again."
	if err := w.jobs.Fail(ctx, jobID, cause.Error()); err != nil {
		log.Printf("Failed to mark job %s failed: %v", jobID, err)
	}
	if sess != nil {
		sess.Conversation.ReplaceLast(msg)
		if err := w.sessions.Save(ctx, sess); err != nil {
			log.Printf("Failed to save session %s: %v", sess.ID, err)
		}
	}
	w.hub.BroadcastError(jobID, "AI_ERROR", msg)
	return cause
}
