package helper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/secrethelper/api/internal/model"
)

// SystemPrompt drives the structured conversation with the text backend.
// The schema wording is load-bearing: the placeholder strings it contains
// are exactly the ones Normalize strips when echoed back.
const SystemPrompt = `You are Secret Helper, a seasoned music producer and songwriter assisting a user in designing a song.

You ALWAYS reply with a single JSON object and nothing else. No markdown, no prose outside the JSON. The schema:

{
  "assistant_message": "string",
  "song": {
    "title": "song title",
    "voice": "string",
    "genre": "string",
    "bpm": 120,
    "mood_tags": ["string"],
    "sound_description": "describe the sound/beat"
  },
  "lyrics": {
    "structure": ["Verse 1", "Chorus"],
    "text": "full lyrics here"
  },
  "production_notes": {
    "arrangement": "arrangement notes",
    "mix_notes": "mix notes"
  },
  "need_clarification": false,
  "clarifying_question": ""
}

Rules:
- assistant_message is a short, friendly note to the user about what you did.
- Write complete lyrics with section headers in square brackets, e.g. [Verse 1].
- Lyrics must be concrete and specific. Never use stock phrases like "broken heart", "tears fall" or "without you".
- Respect the user's UI settings for voice, genre and bpm when given; they override your own preferences.
- When the user asks for a change, update the current draft instead of starting from scratch, and keep unchanged sections identical.
- If the request is too vague to act on, set need_clarification to true and put one short question in clarifying_question. Leave the song fields from the current draft untouched.
- Keep bpm plausible for the genre.`

// SystemPromptSmall is the condensed prompt for the small quality tier,
// where the model's context and instruction-following budget is tight.
const SystemPromptSmall = `You are Secret Helper, a music producer assistant. Reply with ONE JSON object only, no markdown:
{"assistant_message":"string","song":{"title":"song title","voice":"string","genre":"string","bpm":120,"mood_tags":["string"],"sound_description":"describe the sound/beat"},"lyrics":{"structure":["Verse 1","Chorus"],"text":"full lyrics here"},"production_notes":{"arrangement":"arrangement notes","mix_notes":"mix notes"},"need_clarification":false,"clarifying_question":""}
Write full lyrics with [Section] headers. Update the current draft on change requests. If the request is too vague set need_clarification true with one short clarifying_question.`

// SystemPromptFor picks the prompt variant for a quality tier.
func SystemPromptFor(tier model.QualityTier) string {
	if tier == model.TierSmall {
		return SystemPromptSmall
	}
	return SystemPrompt
}

// languageOverrides maps explicit language mentions in the user message to
// a lyrics language, overriding the genre default.
var languageOverrides = map[string]string{
	"in spanish":    "Spanish",
	"en español":    "Spanish",
	"in english":    "English",
	"in portuguese": "Portuguese",
	"in korean":     "Korean",
	"in french":     "French",
	"in german":     "German",
	"in italian":    "Italian",
	"in japanese":   "Japanese",
	"in turkish":    "Turkish",
}

// LyricsLanguage resolves the lyrics language from the genre table, with
// explicit mentions in the user message taking precedence.
func LyricsLanguage(genre, message string) string {
	lower := strings.ToLower(message)
	for phrase, lang := range languageOverrides {
		if strings.Contains(lower, phrase) {
			return lang
		}
	}
	if lang, ok := GenreLanguages[strings.ToLower(genre)]; ok {
		return lang
	}
	return "English"
}

// StructureFor returns the section headers for a genre, trimmed for the
// small tier so short generations still cover every listed section.
func StructureFor(genre string, tier model.QualityTier) []string {
	headers, ok := GenreStructures[strings.ToLower(genre)]
	if !ok {
		headers = DefaultSectionHeaders
	}
	if tier == model.TierSmall && len(headers) > 6 {
		trimmed := make([]string, 0, 6)
		trimmed = append(trimmed, headers[:5]...)
		trimmed = append(trimmed, headers[len(headers)-1])
		return trimmed
	}
	return append([]string(nil), headers...)
}

// BuildUserMessage assembles the turn sent to the backend: the user's
// request, the pinned UI settings, the resolved language and structure,
// and the current draft when one exists.
func BuildUserMessage(message string, settings model.GenerationSettings, current *model.StructuredResult) string {
	var b strings.Builder
	b.WriteString("User request: ")
	b.WriteString(message)
	b.WriteString("\n")

	genre := settings.Genre
	if genre == "" && current != nil {
		genre = current.Song.Genre
	}
	if genre == "" {
		genre = "pop"
	}

	if settings.Voice != "" {
		fmt.Fprintf(&b, "UI setting voice: %s\n", settings.Voice)
	}
	if settings.Genre != "" {
		fmt.Fprintf(&b, "UI setting genre: %s\n", settings.Genre)
	}
	if settings.BPM > 0 {
		fmt.Fprintf(&b, "UI setting bpm: %d\n", settings.BPM)
	}
	if settings.InstrumentalOnly {
		b.WriteString("UI setting: instrumental only, no lyrics needed\n")
	}

	fmt.Fprintf(&b, "lyrics_language: %s\n", LyricsLanguage(genre, message))
	fmt.Fprintf(&b, "song_structure: %s\n", strings.Join(StructureFor(genre, settings.Tier), " "))

	if current != nil && current.HasSong() {
		draft, err := json.Marshal(current)
		if err == nil {
			b.WriteString("Current draft (update it, do not start over):\n")
			b.Write(draft)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// regenerateMessages are the canned change requests behind the per-section
// regenerate operation. Each one scopes the rewrite to a single part.
var regenerateMessages = map[model.Section]string{
	model.SectionHook:   "Rewrite only the hook/chorus of the current song. Make it catchier. Keep every other section and all song fields identical.",
	model.SectionVerse1: "Rewrite only Verse 1 of the current song. Keep every other section and all song fields identical.",
	model.SectionVerse2: "Rewrite only Verse 2 of the current song. Keep every other section and all song fields identical.",
	model.SectionBridge: "Rewrite only the bridge of the current song. Give it a contrasting angle. Keep every other section and all song fields identical.",
	model.SectionSound:  "Rewrite only sound_description and production_notes of the current song. Keep the lyrics and all other song fields identical.",
}

// RegenerateMessage returns the canned request for a section rewrite.
func RegenerateMessage(section model.Section) string {
	if msg, ok := regenerateMessages[section]; ok {
		return msg
	}
	return regenerateMessages[model.SectionHook]
}
