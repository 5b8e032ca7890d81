package helper

import (
	"context"
	"errors"
	"testing"
)

func TestRecoverDirectParse(t *testing.T) {
	raw := `{"assistant_message":"Here you go","song":{"title":"Night Drive","genre":"synthwave","bpm":110},"lyrics":{"structure":["Verse 1"],"text":"[Verse 1]\nchrome horizon"},"need_clarification":false}`

	res := Recover(context.Background(), raw, nil)
	if res.Song.Title != "Night Drive" {
		t.Errorf("expected title Night Drive, got %q", res.Song.Title)
	}
	if res.NeedClarification {
		t.Error("expected no clarification on valid input")
	}
}

func TestRecoverTruncated(t *testing.T) {
	// Cut off mid-string inside a nested object
	raw := `{"assistant_message":"ok","song":{"title":"Night Drive","genre":"synthwave","bpm":110,"sound_description":"neon pads and a steady puls`

	res := Recover(context.Background(), raw, nil)
	if res.NeedClarification {
		t.Fatal("truncated input should recover without clarification")
	}
	if res.Song.Title != "Night Drive" {
		t.Errorf("expected title Night Drive, got %q", res.Song.Title)
	}
}

func TestRecoverMissingClosingBrace(t *testing.T) {
	raw := `{"assistant_message":"ok","song":{"title":"Night Drive","genre":"synthwave","bpm":110},"lyrics":{"text":"[Verse 1]\nfast cars\nneon bars"},"production_notes":{},"need_clarification":false`

	res := Recover(context.Background(), raw, nil)
	if res.Song.Title != "Night Drive" {
		t.Errorf("title = %q", res.Song.Title)
	}
	if res.Song.BPM != 110 {
		t.Errorf("bpm = %d", res.Song.BPM)
	}
	if res.NeedClarification {
		t.Error("unexpected clarification")
	}
}

func TestRecoverEmbeddedBlock(t *testing.T) {
	raw := "Sure! Here is the song you asked for:\n```json\n" +
		`{"assistant_message":"done","song":{"title":"Rooftop","genre":"pop","bpm":118}}` +
		"\n```\nHope you like it!"

	res := Recover(context.Background(), raw, nil)
	if res.Song.Title != "Rooftop" {
		t.Errorf("expected embedded block extraction, got title %q", res.Song.Title)
	}
}

func TestRecoverModelAssistedRepair(t *testing.T) {
	calls := 0
	repair := func(ctx context.Context, prompt string) (string, error) {
		calls++
		return `{"assistant_message":"fixed","song":{"title":"Repaired","genre":"pop","bpm":120}}`, nil
	}

	res := Recover(context.Background(), "totally not json at all", repair)
	if calls != 1 {
		t.Errorf("expected exactly 1 repair call, got %d", calls)
	}
	if res.Song.Title != "Repaired" {
		t.Errorf("expected repaired result, got title %q", res.Song.Title)
	}
}

func TestRecoverFallbackClarification(t *testing.T) {
	repair := func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("backend down")
	}

	res := Recover(context.Background(), "garbage", repair)
	if !res.NeedClarification {
		t.Fatal("expected clarification fallback")
	}
	if res.ClarifyingQuestion != clarificationFallback {
		t.Errorf("unexpected clarifying question: %q", res.ClarifyingQuestion)
	}
	// The fallback must still be a fully valid result
	if res.Song.BPM <= 0 || res.Song.Genre == "" {
		t.Error("fallback result has invalid song defaults")
	}
}

func TestRecoverNonObjectJSON(t *testing.T) {
	// Valid JSON that is not an object must not pass the direct parse
	res := Recover(context.Background(), `"just a string"`, nil)
	if !res.NeedClarification {
		t.Error("bare JSON string should end in clarification fallback")
	}

	res = Recover(context.Background(), `[1,2,3]`, nil)
	if !res.NeedClarification {
		t.Error("JSON array should end in clarification fallback")
	}
}

func TestRecoverEmptyInput(t *testing.T) {
	res := Recover(context.Background(), "", nil)
	if !res.NeedClarification {
		t.Error("empty input should end in clarification fallback")
	}
}

func TestCloseTruncated(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"complete object untouched", `{"a":1}`, `{"a":1}`},
		{"open object", `{"a":1`, `{"a":1}`},
		{"open string", `{"a":"xy`, `{"a":"xy"}`},
		{"nested", `{"a":{"b":[1,2`, `{"a":{"b":[1,2]}}`},
		{"trailing comma dropped", `{"a":1,`, `{"a":1}`},
		{"escaped quote stays in string", `{"a":"x\"y`, `{"a":"x\"y"}`},
		{"brace inside string ignored", `{"a":"}{"`, `{"a":"}{"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CloseTruncated(tt.in)
			if got != tt.want {
				t.Errorf("CloseTruncated(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCloseTruncatedTrailingBackslash(t *testing.T) {
	// A dangling escape must not swallow the closing quote
	got := CloseTruncated(`{"a":"x\`)
	if got != `{"a":"x"}` {
		t.Errorf("got %q", got)
	}
}
