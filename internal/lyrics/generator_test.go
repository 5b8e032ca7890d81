package lyrics

import (
	"context"
	"strings"
	"testing"

	"github.com/secrethelper/api/internal/client"
	"github.com/secrethelper/api/internal/config"
	"github.com/secrethelper/api/internal/prompt"
)

func TestGenerateTemplateFallback(t *testing.T) {
	// Unconfigured backend forces the template path
	g := NewGenerator(client.NewOllamaClient(&config.OllamaConfig{}))

	p := prompt.Parse("a sad song about empty train stations")
	structure := []string{"[Verse 1]", "[Chorus]", "[Verse 2]", "[Chorus]", "[Bridge]", "[Chorus]"}

	text := g.Generate(context.Background(), p, structure)

	for _, header := range []string{"[Verse 1]", "[Chorus]", "[Verse 2]", "[Bridge]"} {
		if !strings.Contains(text, header) {
			t.Errorf("lyrics missing section %s:\n%s", header, text)
		}
	}
	if !strings.Contains(text, p.Theme) {
		t.Errorf("lyrics should mention the theme %q", p.Theme)
	}
}

func TestGenerateChorusRepeats(t *testing.T) {
	g := NewGenerator(client.NewOllamaClient(&config.OllamaConfig{}))

	p := prompt.Parse("a happy song about summer mornings")
	text := g.Generate(context.Background(), p, []string{"[Chorus]", "[Verse 1]", "[Chorus]"})

	parts := strings.Split(text, "[Chorus]")
	if len(parts) != 3 {
		t.Fatalf("expected two chorus sections, got %d", len(parts)-1)
	}

	first := strings.TrimSpace(strings.Split(parts[1], "[Verse 1]")[0])
	second := strings.TrimSpace(parts[2])
	if first != second {
		t.Errorf("chorus should repeat identically\nfirst:  %q\nsecond: %q", first, second)
	}
}

func TestGenerateEmptyStructureGetsDefault(t *testing.T) {
	g := NewGenerator(client.NewOllamaClient(&config.OllamaConfig{}))

	p := prompt.Parse("anything at all")
	text := g.Generate(context.Background(), p, nil)
	if !strings.Contains(text, "[Verse 1]") {
		t.Error("default structure should include a first verse")
	}
}

func TestGenerateUnknownMoodFallsBack(t *testing.T) {
	g := NewGenerator(client.NewOllamaClient(&config.OllamaConfig{}))

	p := &prompt.ParsedPrompt{Genre: "pop", Mood: "nostalgic", Voice: "neutral", Theme: "old photographs", BPM: 100}
	text := g.Generate(context.Background(), p, []string{"[Verse 1]", "[Chorus]"})
	if text == "" {
		t.Fatal("unknown mood must still produce lyrics")
	}
}
