package helper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/secrethelper/api/internal/model"
)

// Placeholder strings the backend sometimes echoes back from the schema
// description instead of real content. Matched case-insensitively.
var placeholders = map[string]bool{
	"string":                        true,
	"short description of song":     true,
	"song title":                    true,
	"song title here":               true,
	"full lyrics here":              true,
	"describe the sound/beat":       true,
	"describe arrangement":          true,
	"describe mix":                  true,
	"arrangement notes":             true,
	"mix notes":                     true,
	"one sentence about the song":   true,
}

// BPMDefaults maps a genre to its default tempo, used when the backend
// omits bpm or returns a falsy value.
var BPMDefaults = map[string]int{
	"hip-hop": 90, "boom-bap": 90, "trap": 145, "drill": 145, "lo-fi": 80,
	"reggaeton": 92, "salsa": 180, "bachata": 126, "merengue": 158,
	"cumbia": 100, "latin pop": 110, "pop": 120, "rock": 130,
	"indie": 120, "punk": 168, "metal": 155, "alternative": 125,
	"electronic": 128, "house": 128, "techno": 138, "dubstep": 140,
	"drum & bass": 174, "synthwave": 110, "ambient": 70,
	"r&b": 90, "soul": 85, "funk": 110, "blues": 75,
	"gospel": 90, "jazz": 100, "classical": 80, "reggae": 76,
	"dancehall": 90, "afrobeats": 102, "bossa nova": 128, "folk": 90,
	"country": 100, "k-pop": 120, "disco": 120,
}

const fallbackBPM = 100

// defaultStructure is the canonical section list used when the backend
// omits lyrics.structure.
var defaultStructure = []string{"Verse 1", "Chorus", "Verse 2", "Chorus", "Bridge", "Chorus"}

// GenreStructures maps a genre to its section headers, used when building
// generation prompts. Latin genres use Spanish section names.
var GenreStructures = map[string][]string{
	"hip-hop":     {"[Intro]", "[Verse 1]", "[Hook]", "[Verse 2]", "[Hook]", "[Outro]"},
	"boom-bap":    {"[Intro]", "[Verse 1]", "[Hook]", "[Verse 2]", "[Hook]", "[Outro]"},
	"trap":        {"[Intro]", "[Verse 1]", "[Hook]", "[Verse 2]", "[Hook]", "[Bridge]", "[Hook]", "[Outro]"},
	"drill":       {"[Intro]", "[Verse 1]", "[Hook]", "[Verse 2]", "[Hook]", "[Outro]"},
	"lo-fi":       {"[Intro]", "[Verse 1]", "[Hook]", "[Verse 2]", "[Hook]", "[Outro]"},
	"pop":         {"[Intro]", "[Verse 1]", "[Pre-Chorus]", "[Chorus]", "[Verse 2]", "[Pre-Chorus]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"indie":       {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"alternative": {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"rock":        {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Guitar Solo]", "[Bridge]", "[Chorus]", "[Outro]"},
	"metal":       {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Guitar Solo]", "[Bridge]", "[Chorus]", "[Outro]"},
	"punk":        {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"folk":        {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"country":     {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"disco":       {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"r&b":         {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"soul":        {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"funk":        {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"blues":       {"[Intro]", "[Verse 1]", "[Hook]", "[Verse 2]", "[Hook]", "[Verse 3]", "[Outro]"},
	"gospel":      {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"jazz":        {"[Intro]", "[Verse 1]", "[Hook]", "[Verse 2]", "[Solo]", "[Hook]", "[Outro]"},
	"electronic":  {"[Intro]", "[Verse 1]", "[Build-Up]", "[Drop]", "[Break]", "[Build-Up]", "[Drop]", "[Outro]"},
	"house":       {"[Intro]", "[Verse 1]", "[Build-Up]", "[Drop]", "[Break]", "[Build-Up]", "[Drop]", "[Outro]"},
	"techno":      {"[Intro]", "[Build-Up]", "[Drop]", "[Break]", "[Build-Up]", "[Drop]", "[Outro]"},
	"dubstep":     {"[Intro]", "[Verse 1]", "[Build-Up]", "[Drop]", "[Break]", "[Build-Up]", "[Drop]", "[Outro]"},
	"drum & bass": {"[Intro]", "[Verse 1]", "[Build-Up]", "[Drop]", "[Break]", "[Drop]", "[Outro]"},
	"synthwave":   {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"ambient":     {"[Intro]", "[Part 1]", "[Part 2]", "[Part 3]", "[Outro]"},
	"bachata":     {"[Intro]", "[Verso 1]", "[Coro]", "[Verso 2]", "[Coro]", "[Puente]", "[Coro]", "[Final]"},
	"salsa":       {"[Intro]", "[Verso 1]", "[Coro]", "[Verso 2]", "[Coro]", "[Mambo]", "[Coro]", "[Final]"},
	"merengue":    {"[Intro]", "[Verso 1]", "[Coro]", "[Verso 2]", "[Coro]", "[Puente]", "[Coro]", "[Final]"},
	"cumbia":      {"[Intro]", "[Verso 1]", "[Coro]", "[Verso 2]", "[Coro]", "[Puente]", "[Coro]", "[Final]"},
	"reggaeton":   {"[Intro]", "[Verso 1]", "[Coro]", "[Verso 2]", "[Coro]", "[Break]", "[Coro]", "[Final]"},
	"latin pop":   {"[Intro]", "[Verso 1]", "[Pre-Coro]", "[Coro]", "[Verso 2]", "[Pre-Coro]", "[Coro]", "[Puente]", "[Coro]", "[Final]"},
	"bossa nova":  {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"reggae":      {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"dancehall":   {"[Intro]", "[Verse 1]", "[Hook]", "[Verse 2]", "[Hook]", "[Outro]"},
	"afrobeats":   {"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"},
	"k-pop":       {"[Intro]", "[Verse 1]", "[Pre-Chorus]", "[Chorus]", "[Verse 2]", "[Pre-Chorus]", "[Chorus]", "[Bridge]", "[Rap Break]", "[Chorus]", "[Outro]"},
	"classical":   {"[Intro]", "[Part 1]", "[Part 2]", "[Part 3]", "[Outro]"},
}

// DefaultSectionHeaders is used for genres without a dedicated structure.
var DefaultSectionHeaders = []string{"[Intro]", "[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]", "[Outro]"}

// GenreLanguages maps genres whose lyrics are not written in English.
var GenreLanguages = map[string]string{
	"bachata":    "Spanish",
	"salsa":      "Spanish",
	"merengue":   "Spanish",
	"cumbia":     "Spanish",
	"reggaeton":  "Spanish",
	"latin pop":  "Spanish",
	"bossa nova": "Portuguese",
	"k-pop":      "Korean",
}

// Normalize converts a loosely-typed decoded JSON object into a trusted
// StructuredResult. It is total: missing, wrong-typed and placeholder
// fields are replaced with type-correct defaults, and it is idempotent.
// This is the only point where untyped maps become typed results.
func Normalize(d map[string]interface{}) *model.StructuredResult {
	song := asMap(d["song"])
	lyr := asMap(d["lyrics"])
	prod := asMap(d["production_notes"])

	genre := asString(song["genre"])
	if genre == "" {
		genre = "pop"
	}

	voice := asString(song["voice"])
	if voice == "" {
		voice = "neutral"
	}

	bpm := asInt(song["bpm"])
	if bpm <= 0 {
		bpm = BPMDefaults[strings.ToLower(genre)]
		if bpm == 0 {
			bpm = fallbackBPM
		}
	}

	structure := asStringSlice(lyr["structure"])
	if len(structure) == 0 {
		structure = append([]string(nil), defaultStructure...)
	}

	res := &model.StructuredResult{
		AssistantMessage: clean(asString(d["assistant_message"])),
		Song: model.SongConcept{
			Title:            clean(asString(song["title"])),
			Voice:            voice,
			Genre:            genre,
			BPM:              bpm,
			MoodTags:         asStringSlice(song["mood_tags"]),
			SoundDescription: clean(asString(song["sound_description"])),
		},
		Lyrics: model.LyricsBlock{
			Structure: structure,
			Text:      clean(asString(lyr["text"])),
		},
		ProductionNotes: model.ProductionNotes{
			Arrangement: clean(asString(prod["arrangement"])),
			MixNotes:    clean(asString(prod["mix_notes"])),
		},
		NeedClarification:  asBool(d["need_clarification"]),
		ClarifyingQuestion: clean(asString(d["clarifying_question"])),
	}

	// A clarification request must always carry a question to show
	if res.NeedClarification && res.ClarifyingQuestion == "" {
		res.ClarifyingQuestion = defaultClarifyingQuestion
	}
	return res
}

// defaultClarifyingQuestion covers results that ask for clarification
// without saying what is unclear.
const defaultClarifyingQuestion = "Could you tell me a bit more about the song you have in mind?"

// Fallback returns a valid empty result with safe defaults.
func Fallback() *model.StructuredResult {
	return &model.StructuredResult{
		Song: model.SongConcept{
			Voice:    "neutral",
			Genre:    "pop",
			BPM:      fallbackBPM,
			MoodTags: []string{},
		},
		Lyrics: model.LyricsBlock{
			Structure: append([]string(nil), defaultStructure...),
		},
	}
}

// clean returns the empty string when the value is a schema placeholder.
func clean(v string) string {
	v = strings.TrimSpace(v)
	if placeholders[strings.ToLower(v)] {
		return ""
	}
	return v
}

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// Backends occasionally return numbers for string fields
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asInt(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func asBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	default:
		return false
	}
}

func asStringSlice(v interface{}) []string {
	out := []string{}
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, t...)
	}
	return out
}
