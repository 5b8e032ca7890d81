package helper

import (
	"strings"
	"testing"

	"github.com/secrethelper/api/internal/model"
)

func TestLyricsLanguage(t *testing.T) {
	tests := []struct {
		genre   string
		message string
		want    string
	}{
		{"pop", "write me a song", "English"},
		{"bachata", "write me a song", "Spanish"},
		{"bossa nova", "something smooth", "Portuguese"},
		{"k-pop", "idol anthem", "Korean"},
		{"pop", "a pop song in spanish please", "Spanish"},
		{"bachata", "a bachata but in english", "English"},
	}

	for _, tt := range tests {
		got := LyricsLanguage(tt.genre, tt.message)
		if got != tt.want {
			t.Errorf("LyricsLanguage(%q, %q) = %q, want %q", tt.genre, tt.message, got, tt.want)
		}
	}
}

func TestStructureForSmallTierTrims(t *testing.T) {
	full := StructureFor("k-pop", model.TierLarge)
	small := StructureFor("k-pop", model.TierSmall)

	if len(full) <= 6 {
		t.Fatalf("k-pop structure unexpectedly short: %d", len(full))
	}
	if len(small) != 6 {
		t.Errorf("small tier should trim to 6 sections, got %d", len(small))
	}
	if small[len(small)-1] != full[len(full)-1] {
		t.Error("small tier should keep the closing section")
	}
}

func TestStructureForUnknownGenre(t *testing.T) {
	got := StructureFor("yacht rock", model.TierMedium)
	if len(got) == 0 {
		t.Fatal("unknown genre should get the default structure")
	}
}

func TestBuildUserMessageIncludesSettings(t *testing.T) {
	msg := BuildUserMessage("make it faster", model.GenerationSettings{
		Voice: "female",
		Genre: "trap",
		BPM:   150,
	}, nil)

	for _, want := range []string{"make it faster", "female", "trap", "150", "lyrics_language:", "song_structure:"} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q:\n%s", want, msg)
		}
	}
}

func TestBuildUserMessageIncludesDraft(t *testing.T) {
	draft := Fallback()
	draft.Song.Title = "Rooftop"

	msg := BuildUserMessage("change the bridge", model.GenerationSettings{}, draft)
	if !strings.Contains(msg, "Rooftop") {
		t.Error("user message should embed the current draft")
	}
	if !strings.Contains(msg, "Current draft") {
		t.Error("user message should label the current draft")
	}
}

func TestSystemPromptForTier(t *testing.T) {
	if SystemPromptFor(model.TierSmall) == SystemPromptFor(model.TierLarge) {
		t.Error("small tier should get the condensed prompt")
	}
	if len(SystemPromptFor(model.TierSmall)) >= len(SystemPromptFor(model.TierLarge)) {
		t.Error("condensed prompt should be shorter")
	}
}

func TestRegenerateMessageCoversAllSections(t *testing.T) {
	for _, section := range model.ValidSections {
		msg := RegenerateMessage(section)
		if msg == "" {
			t.Errorf("section %s has no regenerate message", section)
		}
		if !strings.Contains(strings.ToLower(msg), "only") {
			t.Errorf("section %s message should scope the rewrite: %q", section, msg)
		}
	}
}
