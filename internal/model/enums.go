package model

// Quality tier selects which generation models back a request
type QualityTier string

const (
	TierSmall  QualityTier = "small"
	TierMedium QualityTier = "medium"
	TierLarge  QualityTier = "large"
)

var ValidTiers = []QualityTier{TierSmall, TierMedium, TierLarge}

// Conversation roles
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Song sections addressable by the regenerate operation
type Section string

const (
	SectionHook   Section = "hook"
	SectionVerse1 Section = "verse1"
	SectionVerse2 Section = "verse2"
	SectionBridge Section = "bridge"
	SectionSound  Section = "sound"
)

var ValidSections = []Section{
	SectionHook, SectionVerse1, SectionVerse2, SectionBridge, SectionSound,
}

// SectionLabels maps a section to the wording used in regenerate prompts.
var SectionLabels = map[Section]string{
	SectionHook:   "Hook",
	SectionVerse1: "Verse 1",
	SectionVerse2: "Verse 2",
	SectionBridge: "Bridge",
	SectionSound:  "Sound description",
}
