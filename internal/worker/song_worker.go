package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/secrethelper/api/internal/client"
	"github.com/secrethelper/api/internal/config"
	"github.com/secrethelper/api/internal/helper"
	"github.com/secrethelper/api/internal/lyrics"
	"github.com/secrethelper/api/internal/model"
	"github.com/secrethelper/api/internal/orchestrator"
	"github.com/secrethelper/api/internal/prompt"
	"github.com/secrethelper/api/internal/service"
	"github.com/secrethelper/api/internal/websocket"
)

// moodNarrations is the final assistant line for a finished song
var moodNarrations = map[string]string{
	"happy":      "Done! This one came out bright, turn it up.",
	"sad":        "Done. It's a quiet one, give it a careful listen.",
	"dark":       "Done. This one sits low and heavy.",
	"chill":      "Done! Easy listening, exactly as ordered.",
	"energetic":  "Done! Careful, this one moves fast.",
	"aggressive": "Done. It bites, you asked for it.",
	"romantic":   "Done! This one's for slow evenings.",
	"epic":       "Done! Big drums, bigger horizon.",
	"dreamy":     "Done. Float away.",
	"nostalgic":  "Done. Sounds like an old photograph.",
	"mysterious": "Done. Listen closely, it keeps secrets.",
}

// suggestions are follow-up prompts offered with every finished song
var suggestions = []string{
	"Make it slower and more stripped back",
	"Same vibe, different genre",
	"Rewrite the hook only",
	"Instrumental version of this one",
}

// songState carries intermediate artifacts between pipeline stages
type songState struct {
	intent       *prompt.ParsedPrompt
	lyricsText   string
	instrumental *client.InstrumentalResult
	vocals       *client.VocalResult
	final        *client.MixResult
}

// SongWorker runs the full song pipeline: lyrics, instrumental, vocals, mix
type SongWorker struct {
	jobs     *service.JobService
	sessions *service.SessionService
	history  *service.HistoryService
	lyrics   *lyrics.Generator
	music    client.InstrumentalGenerator
	vocal    client.VocalGenerator
	mixer    client.AudioMixer
	orch     *orchestrator.Orchestrator
	hub      *websocket.Hub
	duration int
}

// NewSongWorker creates a new song worker
func NewSongWorker(
	jobs *service.JobService,
	sessions *service.SessionService,
	history *service.HistoryService,
	lyricsGen *lyrics.Generator,
	music client.InstrumentalGenerator,
	vocal client.VocalGenerator,
	mixer client.AudioMixer,
	orch *orchestrator.Orchestrator,
	hub *websocket.Hub,
	cfg *config.PipelineConfig,
) *SongWorker {
	duration := cfg.Duration
	if duration <= 0 {
		duration = 30
	}
	return &SongWorker{
		jobs:     jobs,
		sessions: sessions,
		history:  history,
		lyrics:   lyricsGen,
		music:    music,
		vocal:    vocal,
		mixer:    mixer,
		orch:     orch,
		hub:      hub,
		duration: duration,
	}
}

// ProcessTask handles a song job end to end. Each synthesis client falls
// back to a mock artifact when its service is not configured, so the
// pipeline shape is always exercised.
func (w *SongWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var tp service.TaskPayload
	if err := json.Unmarshal(t.Payload(), &tp); err != nil {
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}

	var payload model.SongJobPayload
	if err := w.jobs.GetPayload(ctx, tp.JobID, &payload); err != nil {
		return err
	}

	log.Printf("Processing song job %s (session %s)", tp.JobID, payload.SessionID)

	if err := w.jobs.MarkRunning(ctx, tp.JobID); err != nil {
		return err
	}

	sess, err := w.sessions.GetOrCreate(ctx, payload.SessionID)
	if err != nil {
		return w.fail(ctx, tp.JobID, nil, fmt.Errorf("session load failed: %w", err))
	}

	sess.Conversation.Append(model.RoleUser, payload.Message)
	sess.Conversation.Append(model.RoleAssistant, "Starting the pipeline ▪ ▫ ▫")
	if err := w.sessions.Save(ctx, sess); err != nil {
		log.Printf("Failed to save session %s: %v", sess.ID, err)
	}

	intent := w.resolveIntent(&payload)
	stages := w.buildStages(&payload, intent)

	for snap := range w.orch.Run(ctx, stages) {
		switch snap.Status {
		case orchestrator.StatusRunning:
			w.progress(ctx, tp.JobID, sess, snap)

		case orchestrator.StatusFailed:
			return w.fail(ctx, tp.JobID, sess, snap.Err)

		case orchestrator.StatusSucceeded:
			state, ok := snap.Result.(*songState)
			if !ok {
				return w.fail(ctx, tp.JobID, sess, fmt.Errorf("unexpected result type %T", snap.Result))
			}
			return w.complete(ctx, tp.JobID, sess, &payload, state)
		}
	}

	return w.fail(ctx, tp.JobID, sess, ctx.Err())
}

// resolveIntent parses the message and applies UI overrides on top
func (w *SongWorker) resolveIntent(payload *model.SongJobPayload) *prompt.ParsedPrompt {
	intent := prompt.Parse(payload.Message)
	set := payload.Settings
	if set.Genre != "" && set.Genre != "auto" {
		intent.Genre = set.Genre
		intent.BPM = prompt.DefaultBPM(set.Genre)
	}
	if set.Voice != "" {
		intent.Voice = set.Voice
	}
	if set.BPM > 0 {
		intent.BPM = set.BPM
	}
	intent.MusicPrompt = fmt.Sprintf("%s %s instrumental, %d bpm, high quality production",
		intent.Mood, intent.Genre, intent.BPM)
	return intent
}

func (w *SongWorker) buildStages(payload *model.SongJobPayload, intent *prompt.ParsedPrompt) []orchestrator.Stage {
	vocalsWanted := !payload.Settings.InstrumentalOnly

	stages := []orchestrator.Stage{}

	if vocalsWanted {
		stages = append(stages, orchestrator.Stage{
			Name:    "lyrics",
			Percent: 15,
			Label:   "Writing lyrics",
			Work: func(ctx context.Context, _ interface{}) (interface{}, error) {
				state := &songState{intent: intent}
				if payload.CustomLyrics != "" {
					state.lyricsText = payload.CustomLyrics
					return state, nil
				}
				structure := helper.StructureFor(intent.Genre, payload.Settings.Tier)
				state.lyricsText = w.lyrics.Generate(ctx, intent, structure)
				return state, nil
			},
		})
	}

	stages = append(stages, orchestrator.Stage{
		Name:    "instrumental",
		Percent: 40,
		Label:   "Generating instrumental",
		Work: func(ctx context.Context, input interface{}) (interface{}, error) {
			state, _ := input.(*songState)
			if state == nil {
				state = &songState{intent: intent}
			}
			if !w.music.IsConfigured() {
				log.Printf("Music service not configured, using mock instrumental")
				state.instrumental = &client.InstrumentalResult{
					AudioURL:   "mock://instrumental/" + uuid.New().String(),
					SampleRate: 32000,
					Duration:   float64(w.duration),
				}
				return state, nil
			}
			res, err := w.music.GenerateInstrumental(ctx, &client.InstrumentalRequest{
				Prompt:    intent.MusicPrompt,
				Duration:  w.duration,
				ModelSize: string(payload.Settings.Tier),
			})
			if err != nil {
				return nil, fmt.Errorf("instrumental generation failed: %w", err)
			}
			state.instrumental = res
			return state, nil
		},
	})

	if vocalsWanted {
		stages = append(stages, orchestrator.Stage{
			Name:    "vocals",
			Percent: 70,
			Label:   "Recording vocals",
			Work: func(ctx context.Context, input interface{}) (interface{}, error) {
				state := input.(*songState)
				if state.lyricsText == "" {
					return state, nil
				}
				if !w.vocal.IsConfigured() {
					log.Printf("Vocal service not configured, using mock vocals")
					state.vocals = &client.VocalResult{
						AudioURL:   "mock://vocals/" + uuid.New().String(),
						SampleRate: 24000,
						Duration:   float64(w.duration),
					}
					return state, nil
				}
				res, err := w.vocal.GenerateVocals(ctx, &client.VocalRequest{
					Lyrics: state.lyricsText,
					Voice:  intent.Voice,
				})
				if err != nil {
					return nil, fmt.Errorf("vocal generation failed: %w", err)
				}
				state.vocals = res
				return state, nil
			},
		})
	}

	stages = append(stages, orchestrator.Stage{
		Name:    "mix",
		Percent: 90,
		Label:   "Mixing and mastering",
		Work: func(ctx context.Context, input interface{}) (interface{}, error) {
			state := input.(*songState)
			outputKey := fmt.Sprintf("songs/%s.wav", uuid.New().String())
			metadata := map[string]string{
				"genre": intent.Genre,
				"mood":  intent.Mood,
			}

			if !w.mixer.IsConfigured() {
				log.Printf("Mixer service not configured, using mock track")
				state.final = &client.MixResult{
					OutputURL: "mock://" + outputKey,
					Duration:  state.instrumental.Duration,
				}
				return state, nil
			}

			if state.vocals != nil {
				res, err := w.mixer.Mix(ctx, &client.MixRequest{
					InstrumentalURL: state.instrumental.AudioURL,
					VocalURL:        state.vocals.AudioURL,
					Metadata:        metadata,
					OutputKey:       outputKey,
				})
				if err != nil {
					return nil, fmt.Errorf("mixing failed: %w", err)
				}
				state.final = res
				return state, nil
			}

			res, err := w.mixer.SaveInstrumental(ctx, &client.SaveInstrumentalRequest{
				InstrumentalURL: state.instrumental.AudioURL,
				Metadata:        metadata,
				OutputKey:       outputKey,
			})
			if err != nil {
				return nil, fmt.Errorf("export failed: %w", err)
			}
			state.final = res
			return state, nil
		},
	})

	return stages
}

func (w *SongWorker) progress(ctx context.Context, jobID string, sess *model.Session, snap orchestrator.Snapshot) {
	if err := w.jobs.UpdateProgress(ctx, jobID, snap.Percent, snap.Label); err != nil {
		log.Printf("Failed to update job %s: %v", jobID, err)
	}
	w.hub.BroadcastProgress(jobID, snap.Stage, snap.Percent, model.JobStatusRunning, snap.Label)

	sess.Conversation.ReplaceLast(snap.Label)
	if err := w.sessions.Save(ctx, sess); err != nil {
		log.Printf("Failed to save session %s: %v", sess.ID, err)
	}
}

func (w *SongWorker) complete(ctx context.Context, jobID string, sess *model.Session, payload *model.SongJobPayload, state *songState) error {
	intent := state.intent

	narration, ok := moodNarrations[intent.Mood]
	if !ok {
		narration = "Done! Your track is ready."
	}

	result := &model.SongResult{
		Title:       titleFromTheme(intent.Theme),
		Genre:       intent.Genre,
		Mood:        intent.Mood,
		BPM:         intent.BPM,
		Voice:       intent.Voice,
		Lyrics:      state.lyricsText,
		TrackURL:    state.final.OutputURL,
		Duration:    state.final.Duration,
		Narration:   narration,
		Suggestions: suggestions,
		CreatedAt:   time.Now().UTC(),
	}

	if err := w.jobs.Complete(ctx, jobID, result); err != nil {
		return err
	}

	sess.Conversation.ReplaceLast(narration)
	if err := w.sessions.Save(ctx, sess); err != nil {
		log.Printf("Failed to save session %s: %v", sess.ID, err)
	}

	w.history.Add(ctx, model.HistoryEntry{
		Prompt:    payload.Message,
		Genre:     result.Genre,
		Mood:      result.Mood,
		Voice:     result.Voice,
		Duration:  result.Duration,
		TrackURL:  result.TrackURL,
		Lyrics:    result.Lyrics,
		Timestamp: result.CreatedAt,
	})

	w.hub.BroadcastComplete(jobID, result)
	log.Printf("Song job %s completed: %s", jobID, result.TrackURL)
	return nil
}

func (w *SongWorker) fail(ctx context.Context, jobID string, sess *model.Session, cause error) error {
	if cause == nil {
		cause = fmt.Errorf("job aborted")
	}
	log.Printf("Song job %s failed: %v", jobID, cause)

	msg := "Song generation failed. Please try again."
	if err := w.jobs.Fail(ctx, jobID, cause.Error()); err != nil {
		log.Printf("Failed to mark job %s failed: %v", jobID, err)
	}
	if sess != nil {
		sess.Conversation.ReplaceLast(msg)
		if err := w.sessions.Save(ctx, sess); err != nil {
			log.Printf("Failed to save session %s: %v", sess.ID, err)
		}
	}
	w.hub.BroadcastError(jobID, "SERVICE_ERROR", msg)
	return cause
}

// titleFromTheme turns the first few theme words into a track title
func titleFromTheme(theme string) string {
	words := strings.Fields(theme)
	if len(words) > 4 {
		words = words[:4]
	}
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	title := strings.Join(words, " ")
	if title == "" {
		title = "Untitled"
	}
	return title
}
