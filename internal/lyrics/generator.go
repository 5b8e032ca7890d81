// Package lyrics renders song lyrics for the full song pipeline. It asks
// the text backend first and falls back to a template engine built on mood
// word banks, so the pipeline always gets usable lyrics.
package lyrics

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/secrethelper/api/internal/client"
	"github.com/secrethelper/api/internal/prompt"
)

// wordBank holds the vocabulary for one mood
type wordBank struct {
	nouns  []string
	verbs  []string
	images []string
}

var wordBanks = map[string]wordBank{
	"happy": {
		nouns:  []string{"sunlight", "morning", "laughter", "summer", "rhythm", "color"},
		verbs:  []string{"shine", "dance", "rise", "glow", "fly", "sing"},
		images: []string{"golden streets", "open windows", "warm horizon", "hands in the air"},
	},
	"sad": {
		nouns:  []string{"silence", "rain", "shadow", "echo", "distance", "winter"},
		verbs:  []string{"fade", "drift", "linger", "fall away", "remember", "let go"},
		images: []string{"grey morning light", "empty station", "cold coffee", "unsent letters"},
	},
	"dark": {
		nouns:  []string{"midnight", "smoke", "concrete", "static", "fever", "shadow"},
		verbs:  []string{"burn", "hunt", "crawl", "whisper", "break through", "descend"},
		images: []string{"neon in the gutter", "sirens far away", "cracked glass", "black water"},
	},
	"chill": {
		nouns:  []string{"evening", "breeze", "motion", "skyline", "tide", "glow"},
		verbs:  []string{"float", "breathe", "slow down", "wander", "unwind", "settle"},
		images: []string{"rooftop at dusk", "slow traffic lights", "warm radio hum", "long shadows"},
	},
	"energetic": {
		nouns:  []string{"engine", "voltage", "pulse", "fire", "momentum", "crowd"},
		verbs:  []string{"ignite", "accelerate", "jump", "charge", "explode", "run"},
		images: []string{"strobe lights flashing", "bassline shaking walls", "full speed ahead", "sparks on the floor"},
	},
	"romantic": {
		nouns:  []string{"evening", "touch", "promise", "dance", "candlelight", "heartbeat"},
		verbs:  []string{"hold", "stay", "fall", "wander", "belong", "return"},
		images: []string{"slow dance in the kitchen", "city lights below", "your name in the margins", "two glasses left out"},
	},
	"epic": {
		nouns:  []string{"thunder", "mountain", "banner", "horizon", "legend", "storm"},
		verbs:  []string{"rise", "conquer", "stand", "carry", "prevail", "ascend"},
		images: []string{"drums across the valley", "first light on the peaks", "a thousand voices", "the long road home"},
	},
	"dreamy": {
		nouns:  []string{"haze", "orbit", "mirror", "tide", "feather", "aurora"},
		verbs:  []string{"float", "dissolve", "shimmer", "drift", "unfold", "glide"},
		images: []string{"slow clouds over water", "half-remembered rooms", "light through curtains", "weightless falling"},
	},
}

var moodPhrases = map[string][]string{
	"happy":     {"nothing's gonna stop us now", "we found the brighter side"},
	"sad":       {"some things never find their way back", "I keep the lights on anyway"},
	"dark":      {"no one's coming down here", "the city keeps its secrets"},
	"chill":     {"no need to hurry anywhere", "let the evening carry us"},
	"energetic": {"turn it up and let it go", "we don't stop until the sunrise"},
	"romantic":  {"stay a little longer here", "I knew it from the start"},
	"epic":      {"we were built for more than this", "carry the fire over the hill"},
	"dreamy":    {"floating somewhere in between", "wake me when we get there"},
}

// Generator renders lyrics via the text backend, with a deterministic
// template path as fallback.
type Generator struct {
	ollama client.TextGenerator
}

// NewGenerator creates a lyrics generator
func NewGenerator(ollama client.TextGenerator) *Generator {
	return &Generator{ollama: ollama}
}

const lyricsSystemPrompt = `You are a professional songwriter. Write complete song lyrics with section headers in square brackets exactly matching the structure you are given. Concrete imagery, no clichés. Output the lyrics only, no commentary.`

// Generate writes lyrics for the parsed intent. A backend failure is
// logged and absorbed by the template fallback; Generate never errors.
func (g *Generator) Generate(ctx context.Context, p *prompt.ParsedPrompt, structure []string) string {
	if len(structure) == 0 {
		structure = []string{"[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]"}
	}

	if g.ollama != nil && g.ollama.IsConfigured() {
		userMsg := fmt.Sprintf(
			"Write %s lyrics about: %s\nMood: %s\nStructure (use these exact headers):\n%s",
			p.Genre, p.Theme, p.Mood, strings.Join(structure, "\n"))
		raw, err := g.ollama.Generate(ctx, lyricsSystemPrompt, userMsg)
		if err == nil && strings.Contains(raw, "[") {
			return strings.TrimSpace(raw)
		}
		if err != nil {
			log.Printf("[lyrics] backend generation failed, using template: %v", err)
		}
	}

	return g.fromTemplate(p, structure)
}

// fromTemplate assembles lyrics from the mood word bank. The chorus is
// generated once and repeated so it behaves like a real hook.
func (g *Generator) fromTemplate(p *prompt.ParsedPrompt, structure []string) string {
	bank, ok := wordBanks[p.Mood]
	if !ok {
		bank = wordBanks["chill"]
	}
	phrases := moodPhrases[p.Mood]
	if len(phrases) == 0 {
		phrases = moodPhrases["chill"]
	}

	rng := rand.New(rand.NewSource(int64(len(p.Theme))*31 + int64(p.BPM)))
	pick := func(list []string) string { return list[rng.Intn(len(list))] }

	chorus := fmt.Sprintf("%s\n%s like %s\n%s, %s\n%s",
		title(phrases[0]),
		title(pick(bank.verbs)), pick(bank.images),
		title(p.Theme), pick(bank.nouns),
		title(phrases[len(phrases)-1]))

	var b strings.Builder
	for _, header := range structure {
		b.WriteString(header)
		b.WriteString("\n")
		lower := strings.ToLower(header)
		switch {
		case strings.Contains(lower, "chorus"), strings.Contains(lower, "hook"), strings.Contains(lower, "coro"):
			b.WriteString(chorus)
		case strings.Contains(lower, "bridge"), strings.Contains(lower, "puente"):
			fmt.Fprintf(&b, "%s in the %s\nEverything can %s from here\n%s",
				title(pick(bank.images)), pick(bank.nouns), pick(bank.verbs), title(phrases[0]))
		case strings.Contains(lower, "intro"), strings.Contains(lower, "outro"), strings.Contains(lower, "final"):
			fmt.Fprintf(&b, "(%s)", pick(bank.images))
		default:
			fmt.Fprintf(&b, "%s over %s\n%s where the %s goes\nThinking about %s tonight\nWatch it %s, watch it %s",
				title(pick(bank.nouns)), pick(bank.images),
				title(pick(bank.verbs)), pick(bank.nouns),
				p.Theme, pick(bank.verbs), pick(bank.verbs))
		}
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// title uppercases the first letter of a phrase
func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
