// Package prompt extracts musical intent from free-form user text using
// keyword tables. It backs the song pipeline when the UI settings leave
// genre, mood or voice on auto.
package prompt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParsedPrompt is the musical intent read out of a user message
type ParsedPrompt struct {
	Genre       string
	Mood        string
	Voice       string
	Theme       string
	BPM         int
	MusicPrompt string
}

// genreKeywords maps trigger words to canonical genre names. Longer
// phrases are matched before shorter ones.
var genreKeywords = map[string]string{
	"boom bap":    "boom-bap",
	"boom-bap":    "boom-bap",
	"hip hop":     "hip-hop",
	"hip-hop":     "hip-hop",
	"rap":         "hip-hop",
	"trap":        "trap",
	"drill":       "drill",
	"lofi":        "lo-fi",
	"lo-fi":       "lo-fi",
	"lo fi":       "lo-fi",
	"reggaeton":   "reggaeton",
	"salsa":       "salsa",
	"bachata":     "bachata",
	"merengue":    "merengue",
	"cumbia":      "cumbia",
	"latin":       "latin pop",
	"rock":        "rock",
	"metal":       "metal",
	"punk":        "punk",
	"indie":       "indie",
	"alternative": "alternative",
	"edm":         "electronic",
	"electronic":  "electronic",
	"house":       "house",
	"techno":      "techno",
	"dubstep":     "dubstep",
	"drum and bass": "drum & bass",
	"dnb":         "drum & bass",
	"synthwave":   "synthwave",
	"ambient":     "ambient",
	"r&b":         "r&b",
	"rnb":         "r&b",
	"soul":        "soul",
	"funk":        "funk",
	"blues":       "blues",
	"gospel":      "gospel",
	"jazz":        "jazz",
	"classical":   "classical",
	"orchestral":  "classical",
	"reggae":      "reggae",
	"dancehall":   "dancehall",
	"afrobeats":   "afrobeats",
	"afrobeat":    "afrobeats",
	"bossa nova":  "bossa nova",
	"folk":        "folk",
	"acoustic":    "folk",
	"country":     "country",
	"k-pop":       "k-pop",
	"kpop":        "k-pop",
	"disco":       "disco",
	"pop":         "pop",
}

// moodKeywords maps trigger words to canonical moods
var moodKeywords = map[string]string{
	"happy":       "happy",
	"upbeat":      "happy",
	"cheerful":    "happy",
	"sad":         "sad",
	"melancholic": "sad",
	"melancholy":  "sad",
	"heartbreak":  "sad",
	"dark":        "dark",
	"sinister":    "dark",
	"chill":       "chill",
	"relaxed":     "chill",
	"calm":        "chill",
	"energetic":   "energetic",
	"hype":        "energetic",
	"aggressive":  "aggressive",
	"angry":       "aggressive",
	"romantic":    "romantic",
	"love":        "romantic",
	"epic":        "epic",
	"cinematic":   "epic",
	"dreamy":      "dreamy",
	"ethereal":    "dreamy",
	"nostalgic":   "nostalgic",
	"mysterious":  "mysterious",
}

// voiceKeywords maps trigger words to voice presets
var voiceKeywords = map[string]string{
	"female voice": "female",
	"female":       "female",
	"woman":        "female",
	"male voice":   "male",
	"male":         "male",
	"man singing":  "male",
	"deep voice":   "deep",
	"soft voice":   "soft",
	"whisper":      "soft",
	"robotic":      "robotic",
	"robot voice":  "robotic",
}

var bpmPattern = regexp.MustCompile(`(\d{2,3})\s*bpm`)

// longestMatch returns the table value whose key is the longest phrase
// contained in text, so "boom bap" beats "pop" inside "boom bap pop-up".
func longestMatch(text string, table map[string]string) string {
	best := ""
	bestLen := 0
	for key, val := range table {
		if strings.Contains(text, key) && len(key) > bestLen {
			best = val
			bestLen = len(key)
		}
	}
	return best
}

// Parse reads genre, mood, voice, tempo and theme out of a message.
// Unrecognized aspects fall back to pop / chill / neutral and the genre's
// default tempo.
func Parse(message string) *ParsedPrompt {
	lower := strings.ToLower(message)

	genre := longestMatch(lower, genreKeywords)
	if genre == "" {
		genre = "pop"
	}
	mood := longestMatch(lower, moodKeywords)
	if mood == "" {
		mood = "chill"
	}
	voice := longestMatch(lower, voiceKeywords)
	if voice == "" {
		voice = "neutral"
	}

	bpm := 0
	if m := bpmPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 40 && n <= 300 {
			bpm = n
		}
	}
	if bpm == 0 {
		bpm = DefaultBPM(genre)
	}

	theme := extractTheme(message)

	p := &ParsedPrompt{
		Genre: genre,
		Mood:  mood,
		Voice: voice,
		Theme: theme,
		BPM:   bpm,
	}
	p.MusicPrompt = fmt.Sprintf("%s %s instrumental, %d bpm, high quality production", mood, genre, bpm)
	return p
}

// defaultBPMs mirrors the tempo table used by result normalization
var defaultBPMs = map[string]int{
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

// DefaultBPM returns the default tempo for a genre, 100 when unknown.
func DefaultBPM(genre string) int {
	if bpm, ok := defaultBPMs[strings.ToLower(genre)]; ok {
		return bpm
	}
	return 100
}

// fillerWords are stripped from the front of a message when deriving the
// theme the song should be about.
var fillerWords = []string{
	"write", "make", "create", "generate", "compose", "produce",
	"a", "an", "the", "me", "please", "song", "track", "about",
}

// extractTheme strips leading filler ("write me a song about ...") and
// returns the remaining subject, capped at a sentence-ish length.
func extractTheme(message string) string {
	words := strings.Fields(message)
	i := 0
	for i < len(words) {
		w := strings.ToLower(strings.Trim(words[i], ",.!?"))
		matched := false
		for _, f := range fillerWords {
			if w == f {
				matched = true
				break
			}
		}
		if !matched {
			break
		}
		i++
	}
	theme := strings.Join(words[i:], " ")
	theme = strings.Trim(theme, " ,.!?")
	if theme == "" {
		theme = "life"
	}
	if len(theme) > 120 {
		theme = theme[:120]
	}
	return theme
}
