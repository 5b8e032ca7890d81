package model

import "time"

// Job represents a background generation job in the system
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"` // "helper" or "song"
	SessionID   string     `json:"sessionId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Payload     []byte     `json:"-"` // Stored as JSON
	Result      []byte     `json:"-"` // Stored as JSON
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Job types
const (
	JobTypeHelper = "helper"
	JobTypeSong   = "song"
)

// GenerationSettings carries the UI configuration attached to a request.
// Genre "auto" and BPM 0 mean "detect from the message".
type GenerationSettings struct {
	Voice            string      `json:"voice" validate:"omitempty,max=64"`
	Genre            string      `json:"genre" validate:"omitempty,max=64"`
	BPM              int         `json:"bpm" validate:"gte=0,lte=300"`
	Tier             QualityTier `json:"tier" validate:"omitempty,oneof=small medium large"`
	InstrumentalOnly bool        `json:"instrumentalOnly"`
}

// HelperJobPayload contains the data for a helper (co-writer) job
type HelperJobPayload struct {
	SessionID   string             `json:"sessionId"`
	Message     string             `json:"message"`
	Settings    GenerationSettings `json:"settings"`
	CurrentSong *StructuredResult  `json:"currentSong,omitempty"`
}

// SongJobPayload contains the data for a full song pipeline job
type SongJobPayload struct {
	SessionID    string             `json:"sessionId"`
	Message      string             `json:"message"`
	Settings     GenerationSettings `json:"settings"`
	CustomLyrics string             `json:"customLyrics,omitempty"`
}

// SongResult is the outcome of a completed song pipeline job
type SongResult struct {
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Mood        string    `json:"mood"`
	BPM         int       `json:"bpm"`
	Voice       string    `json:"voice"`
	Lyrics      string    `json:"lyrics,omitempty"`
	TrackURL    string    `json:"trackUrl"`
	Duration    float64   `json:"duration"`
	Narration   string    `json:"narration"`
	Suggestions []string  `json:"suggestions"`
	CreatedAt   time.Time `json:"createdAt"`
}
