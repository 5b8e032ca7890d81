package helper

import (
	"context"
	"errors"
	"testing"

	"github.com/secrethelper/api/internal/model"
)

func cleanResult(lyricsText string) *model.StructuredResult {
	res := Fallback()
	res.Song.Title = "Test Song"
	res.Lyrics.Text = lyricsText
	return res
}

func TestLintCleanLyricsUntouched(t *testing.T) {
	calls := 0
	repair := func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", nil
	}

	res := cleanResult("[Verse 1]\nConcrete under sodium light")
	out := Lint(context.Background(), res, repair)

	if calls != 0 {
		t.Errorf("clean lyrics must not trigger a rewrite, got %d calls", calls)
	}
	if out != res {
		t.Error("clean lyrics should pass through unchanged")
	}
}

func TestLintRewritesBannedPhrases(t *testing.T) {
	repair := func(ctx context.Context, prompt string) (string, error) {
		return `{"assistant_message":"fixed","song":{"title":"Test Song","genre":"pop","bpm":120},"lyrics":{"structure":["Verse 1"],"text":"[Verse 1]\nSodium lamps on wet asphalt"}}`, nil
	}

	res := cleanResult("[Verse 1]\nMy Broken Heart as the sun sets")
	out := Lint(context.Background(), res, repair)

	if out.Lyrics.Text != "[Verse 1]\nSodium lamps on wet asphalt" {
		t.Errorf("expected rewritten lyrics, got %q", out.Lyrics.Text)
	}
}

func TestLintKeepsOriginalOnEmptyRewrite(t *testing.T) {
	repair := func(ctx context.Context, prompt string) (string, error) {
		// Rewrite parses fine but lost the lyrics
		return `{"assistant_message":"oops","song":{"title":"Test Song","genre":"pop","bpm":120},"lyrics":{"structure":["Verse 1"],"text":""}}`, nil
	}

	original := "[Verse 1]\ntears fall on the floor"
	res := cleanResult(original)
	out := Lint(context.Background(), res, repair)

	if out.Lyrics.Text != original {
		t.Errorf("empty rewrite must keep original lyrics, got %q", out.Lyrics.Text)
	}
}

func TestLintKeepsOriginalOnRepairError(t *testing.T) {
	repair := func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("backend down")
	}

	original := "[Hook]\nempty inside again"
	res := cleanResult(original)
	out := Lint(context.Background(), res, repair)

	if out.Lyrics.Text != original {
		t.Errorf("failed rewrite must keep original lyrics, got %q", out.Lyrics.Text)
	}
}

func TestFindBannedCaseInsensitive(t *testing.T) {
	found := FindBanned("When The Sun Sets and I feel EMPTY INSIDE")
	if len(found) != 2 {
		t.Fatalf("expected 2 banned phrases, got %v", found)
	}
}

func TestLintEmptyLyricsSkipped(t *testing.T) {
	res := cleanResult("")
	out := Lint(context.Background(), res, nil)
	if out != res {
		t.Error("empty lyrics should skip the lint pass")
	}
}
