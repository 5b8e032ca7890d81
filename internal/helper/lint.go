package helper

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/secrethelper/api/internal/model"
)

// BannedPhrases are clichés that trigger a lyric rewrite pass.
var BannedPhrases = []string{
	"sun sets",
	"broken heart",
	"tears fall",
	"ghosts of memories",
	"empty inside",
	"without you",
	"pain remains",
	"my world is cold",
}

// FindBanned returns the banned phrases present in text, case-insensitive.
func FindBanned(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, p := range BannedPhrases {
		if strings.Contains(lower, p) {
			found = append(found, p)
		}
	}
	return found
}

// Lint checks lyrics for clichés and asks the backend for one rewrite when
// any are found. The rewrite goes through the same recovery cascade as the
// original response. If the rewrite fails or comes back without lyrics the
// original result is kept; the lint pass only ever improves output.
func Lint(ctx context.Context, res *model.StructuredResult, repair RepairFunc) *model.StructuredResult {
	if res.Lyrics.Text == "" {
		return res
	}
	found := FindBanned(res.Lyrics.Text)
	if len(found) == 0 {
		return res
	}

	log.Printf("[helper] lint found banned phrases: %s", strings.Join(found, ", "))
	if repair == nil {
		return res
	}

	raw, err := repair(ctx, buildRewritePrompt(found, res))
	if err != nil {
		log.Printf("[helper] lint rewrite failed: %v", err)
		return res
	}

	fixed := Recover(ctx, raw, repair)
	if fixed.Lyrics.Text == "" {
		return res
	}
	return fixed
}

// buildRewritePrompt asks for the same song with the flagged clichés
// replaced by concrete, specific imagery.
func buildRewritePrompt(found []string, res *model.StructuredResult) string {
	current, _ := json.Marshal(res)
	return "Your lyrics contain these overused clichés: " + strings.Join(found, ", ") + ".\n" +
		"Rewrite ONLY the lyric lines that contain them, using concrete and specific imagery instead. " +
		"Keep the structure, rhyme scheme and everything else identical. " +
		"Return the complete updated JSON object in the same schema.\n\nCurrent song:\n" + string(current)
}
