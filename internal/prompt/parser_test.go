package prompt

import (
	"strings"
	"testing"
)

func TestParseGenreDetection(t *testing.T) {
	tests := []struct {
		message string
		genre   string
	}{
		{"write me a trap banger", "trap"},
		{"a boom bap track about the city", "boom-bap"},
		{"some lofi to study to", "lo-fi"},
		{"drum and bass all night", "drum & bass"},
		{"una bachata romantica", "bachata"},
		{"just a song about dogs", "pop"},
	}

	for _, tt := range tests {
		p := Parse(tt.message)
		if p.Genre != tt.genre {
			t.Errorf("Parse(%q).Genre = %q, want %q", tt.message, p.Genre, tt.genre)
		}
	}
}

func TestParseLongestKeywordWins(t *testing.T) {
	// "k-pop" contains "pop"; the longer phrase must win
	p := Parse("a k-pop song about summer")
	if p.Genre != "k-pop" {
		t.Errorf("got genre %q, want k-pop", p.Genre)
	}
}

func TestParseMoodAndVoice(t *testing.T) {
	p := Parse("a dark aggressive track with a deep voice")
	if p.Mood != "aggressive" && p.Mood != "dark" {
		t.Errorf("unexpected mood %q", p.Mood)
	}
	if p.Voice != "deep" {
		t.Errorf("got voice %q, want deep", p.Voice)
	}
}

func TestParseExplicitBPM(t *testing.T) {
	p := Parse("house track at 126 bpm")
	if p.BPM != 126 {
		t.Errorf("got bpm %d, want 126", p.BPM)
	}
}

func TestParseDefaultBPMFromGenre(t *testing.T) {
	p := Parse("write a techno track")
	if p.BPM != 138 {
		t.Errorf("got bpm %d, want techno default 138", p.BPM)
	}
}

func TestParseBPMOutOfRangeIgnored(t *testing.T) {
	p := Parse("a pop song at 999 bpm")
	if p.BPM != 120 {
		t.Errorf("out-of-range bpm should fall back to genre default, got %d", p.BPM)
	}
}

func TestParseThemeStripsFillers(t *testing.T) {
	p := Parse("write me a song about late night trains")
	if p.Theme != "late night trains" {
		t.Errorf("got theme %q", p.Theme)
	}
}

func TestParseEmptyTheme(t *testing.T) {
	p := Parse("write me a song")
	if p.Theme == "" {
		t.Error("theme must never be empty")
	}
}

func TestParseMusicPrompt(t *testing.T) {
	p := Parse("chill lofi beat")
	for _, want := range []string{"chill", "lo-fi", "instrumental", "bpm"} {
		if !strings.Contains(p.MusicPrompt, want) {
			t.Errorf("music prompt missing %q: %s", want, p.MusicPrompt)
		}
	}
}
