package helper

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/secrethelper/api/internal/client"
	"github.com/secrethelper/api/internal/model"
)

// Service runs one helper turn: prompt assembly, backend call, recovery
// cascade and lint pass.
type Service struct {
	ollama client.TextGenerator
}

// NewService creates a new helper service
func NewService(ollama client.TextGenerator) *Service {
	return &Service{ollama: ollama}
}

// Generate runs a full helper turn for the given payload. A backend
// transport failure is returned as an error; malformed backend output is
// absorbed by the recovery cascade and never surfaces as an error.
func (s *Service) Generate(ctx context.Context, payload *model.HelperJobPayload) (*model.StructuredResult, error) {
	if !s.ollama.IsConfigured() {
		log.Printf("[helper] text backend not configured, using mock result")
		return s.generateMock(payload), nil
	}

	system := SystemPromptFor(payload.Settings.Tier)
	userMsg := BuildUserMessage(payload.Message, payload.Settings, payload.CurrentSong)

	raw, err := s.ollama.Generate(ctx, system, userMsg)
	if err != nil {
		return nil, fmt.Errorf("text generation failed: %w", err)
	}

	repair := func(ctx context.Context, prompt string) (string, error) {
		return s.ollama.Generate(ctx, system, prompt)
	}

	res := Recover(ctx, raw, repair)
	if !res.NeedClarification && !payload.Settings.InstrumentalOnly {
		res = Lint(ctx, res, repair)
	}
	return res, nil
}

// RegenerateMessage builds the canned change request for a section rewrite.
func (s *Service) RegenerateMessage(section model.Section) string {
	return RegenerateMessage(section)
}

// generateMock produces a deterministic result so the rest of the pipeline
// works without a running backend.
func (s *Service) generateMock(payload *model.HelperJobPayload) *model.StructuredResult {
	genre := payload.Settings.Genre
	if genre == "" {
		genre = "pop"
	}
	voice := payload.Settings.Voice
	if voice == "" {
		voice = "neutral"
	}
	bpm := payload.Settings.BPM
	if bpm <= 0 {
		bpm = BPMDefaults[strings.ToLower(genre)]
		if bpm == 0 {
			bpm = fallbackBPM
		}
	}

	title := "Midnight Draft"
	theme := strings.TrimSpace(payload.Message)
	if len(theme) > 40 {
		theme = theme[:40]
	}

	res := &model.StructuredResult{
		AssistantMessage: fmt.Sprintf("Here's a %s sketch based on your idea. Tell me what to change.", genre),
		Song: model.SongConcept{
			Title:            title,
			Voice:            voice,
			Genre:            genre,
			BPM:              bpm,
			MoodTags:         []string{"warm", "late-night"},
			SoundDescription: fmt.Sprintf("%s groove at %d bpm with roomy drums and a round bassline", genre, bpm),
		},
		Lyrics: model.LyricsBlock{
			Structure: append([]string(nil), defaultStructure...),
			Text: "[Verse 1]\nStreetlights hum over " + theme + "\nI count the windows going dark\n\n" +
				"[Chorus]\nHold the frequency, stay on the line\nEvery signal finds its way in time\n\n" +
				"[Verse 2]\nMorning traffic writes a second draft\nOf everything we meant to say\n\n" +
				"[Bridge]\nTurn it up until the static clears\n\n" +
				"[Chorus]\nHold the frequency, stay on the line\nEvery signal finds its way in time",
		},
		ProductionNotes: model.ProductionNotes{
			Arrangement: "Sparse first verse, add pads in the chorus, drop to drums and voice in the bridge",
			MixNotes:    "Vocal up front, light tape saturation on the bus",
		},
	}
	if payload.Settings.InstrumentalOnly {
		res.Lyrics = model.LyricsBlock{Structure: []string{}, Text: ""}
		res.AssistantMessage = fmt.Sprintf("Here's an instrumental %s sketch at %d bpm.", genre, bpm)
	}
	return res
}
