package model

import "time"

// HelperGenerateRequest starts a co-writer job for a session
type HelperGenerateRequest struct {
	SessionID   string             `json:"sessionId" validate:"omitempty,max=64"`
	Message     string             `json:"message" validate:"required,min=1,max=2000"`
	Settings    GenerationSettings `json:"settings"`
	CurrentSong *StructuredResult  `json:"currentSong,omitempty"`
}

// HelperRegenerateRequest regenerates a single section of the current draft
type HelperRegenerateRequest struct {
	SessionID string             `json:"sessionId" validate:"required,max=64"`
	Section   Section            `json:"section" validate:"required,oneof=hook verse1 verse2 bridge sound"`
	Settings  GenerationSettings `json:"settings"`
}

// SongStartRequest starts a full song pipeline job
type SongStartRequest struct {
	SessionID    string             `json:"sessionId" validate:"omitempty,max=64"`
	Message      string             `json:"message" validate:"required,min=1,max=2000"`
	Settings     GenerationSettings `json:"settings"`
	CustomLyrics string             `json:"customLyrics" validate:"omitempty,max=8000"`
}

// JobStartResponse acknowledges an accepted background job
type JobStartResponse struct {
	JobID     string    `json:"jobId"`
	SessionID string    `json:"sessionId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobStatusResponse reports progress of a background job
type JobStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// HistoryEntry is one line of the song history, newest first
type HistoryEntry struct {
	Prompt    string    `json:"prompt"`
	Genre     string    `json:"genre"`
	Mood      string    `json:"mood"`
	Voice     string    `json:"voice"`
	Duration  float64   `json:"duration"`
	TrackURL  string    `json:"trackUrl"`
	Lyrics    string    `json:"lyrics,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
