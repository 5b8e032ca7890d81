package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/secrethelper/api/internal/model"
)

// Asynq task types
const (
	TaskTypeHelper = "helper:process"
	TaskTypeSong   = "song:process"
)

// Queue names, one per job type so song rendering cannot starve the
// fast helper turns.
const (
	QueueHelper = "helper"
	QueueSong   = "song"
)

const jobTTL = 24 * time.Hour

// TaskPayload is the asynq task body. The full job payload lives in the
// job record; the task only carries the ID.
type TaskPayload struct {
	JobID string `json:"jobId"`
}

// Enqueuer abstracts asynq.Client so tests can run jobs inline
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// jobRecord is the persisted form of a job. Payload and result travel
// outside the Job struct so they never leak into status responses.
type jobRecord struct {
	Job     model.Job       `json:"job"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// JobService tracks background jobs and dispatches them through asynq.
// Without a Redis client it keeps records in an in-process map.
type JobService struct {
	rdb      *redis.Client
	enqueuer Enqueuer

	mu  sync.RWMutex
	mem map[string]*jobRecord
}

// NewJobService creates a job service. rdb may be nil; enqueuer must not.
func NewJobService(rdb *redis.Client, enqueuer Enqueuer) *JobService {
	return &JobService{
		rdb:      rdb,
		enqueuer: enqueuer,
		mem:      make(map[string]*jobRecord),
	}
}

// StartHelper creates a helper job and enqueues it on the helper queue
func (s *JobService) StartHelper(ctx context.Context, payload *model.HelperJobPayload) (*model.Job, error) {
	return s.start(ctx, model.JobTypeHelper, payload.SessionID, payload, TaskTypeHelper, QueueHelper)
}

// StartSong creates a song job and enqueues it on the song queue
func (s *JobService) StartSong(ctx context.Context, payload *model.SongJobPayload) (*model.Job, error) {
	return s.start(ctx, model.JobTypeSong, payload.SessionID, payload, TaskTypeSong, QueueSong)
}

func (s *JobService) start(ctx context.Context, jobType, sessionID string, payload interface{}, taskType, queue string) (*model.Job, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		SessionID: sessionID,
		Status:    model.JobStatusQueued,
		CreatedAt: time.Now().UTC(),
	}

	rec := &jobRecord{Job: *job, Payload: payloadBytes}
	if err := s.saveRecord(ctx, rec); err != nil {
		return nil, err
	}

	taskBytes, err := json.Marshal(TaskPayload{JobID: job.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}
	task := asynq.NewTask(taskType, taskBytes)
	if _, err := s.enqueuer.EnqueueContext(ctx, task, asynq.Queue(queue), asynq.MaxRetry(0), asynq.Timeout(30*time.Minute)); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}
	return job, nil
}

// GetJob returns the job with the given ID
func (s *JobService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	job := rec.Job
	return &job, nil
}

// GetPayload decodes the stored payload of a job into out
func (s *JobService) GetPayload(ctx context.Context, id string, out interface{}) error {
	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return err
	}
	if len(rec.Payload) == 0 {
		return fmt.Errorf("job %s has no payload", id)
	}
	if err := json.Unmarshal(rec.Payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// GetResult returns the raw result of a job, or an error if the job is
// not finished yet.
func (s *JobService) GetResult(ctx context.Context, id string) (json.RawMessage, *model.Job, error) {
	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	job := rec.Job
	if job.Status != model.JobStatusSucceeded {
		return nil, &job, fmt.Errorf("job %s not finished", id)
	}
	return rec.Result, &job, nil
}

// MarkRunning transitions a job to running
func (s *JobService) MarkRunning(ctx context.Context, id string) error {
	return s.update(ctx, id, func(rec *jobRecord) {
		now := time.Now().UTC()
		rec.Job.Status = model.JobStatusRunning
		rec.Job.StartedAt = &now
	})
}

// UpdateProgress records pipeline progress on a running job
func (s *JobService) UpdateProgress(ctx context.Context, id string, progress int, step string) error {
	return s.update(ctx, id, func(rec *jobRecord) {
		rec.Job.Progress = progress
		rec.Job.CurrentStep = step
	})
}

// Complete stores the result and marks the job succeeded
func (s *JobService) Complete(ctx context.Context, id string, result interface{}) error {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return s.update(ctx, id, func(rec *jobRecord) {
		now := time.Now().UTC()
		rec.Job.Status = model.JobStatusSucceeded
		rec.Job.Progress = 100
		rec.Job.CurrentStep = ""
		rec.Job.CompletedAt = &now
		rec.Result = resultBytes
	})
}

// Fail marks the job failed with a user-facing error message
func (s *JobService) Fail(ctx context.Context, id, errMsg string) error {
	return s.update(ctx, id, func(rec *jobRecord) {
		now := time.Now().UTC()
		rec.Job.Status = model.JobStatusFailed
		rec.Job.Error = &errMsg
		rec.Job.CompletedAt = &now
	})
}

func (s *JobService) update(ctx context.Context, id string, fn func(rec *jobRecord)) error {
	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return err
	}
	fn(rec)
	return s.saveRecord(ctx, rec)
}

func (s *JobService) saveRecord(ctx context.Context, rec *jobRecord) error {
	if s.rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		copied := *rec
		s.mem[rec.Job.ID] = &copied
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := s.rdb.Set(ctx, jobKey(rec.Job.ID), data, jobTTL).Err(); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (s *JobService) getRecord(ctx context.Context, id string) (*jobRecord, error) {
	if s.rdb == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		rec, ok := s.mem[id]
		if !ok {
			return nil, fmt.Errorf("job not found: %s", id)
		}
		copied := *rec
		return &copied, nil
	}

	data, err := s.rdb.Get(ctx, jobKey(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var rec jobRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &rec, nil
}

func jobKey(id string) string {
	return fmt.Sprintf("job:%s", id)
}
