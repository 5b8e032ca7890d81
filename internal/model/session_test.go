package model

import "testing"

func TestConversationAppend(t *testing.T) {
	var c Conversation
	c.Append(RoleUser, "make a song")
	c.Append(RoleAssistant, "Thinking")

	if len(c.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(c.Entries))
	}
	if c.Entries[0].Role != RoleUser || c.Entries[1].Role != RoleAssistant {
		t.Error("entries out of order")
	}
}

func TestConversationReplaceLast(t *testing.T) {
	var c Conversation
	c.Append(RoleUser, "make a song")
	c.Append(RoleAssistant, "Thinking ▪ ▫ ▫")

	c.ReplaceLast("Thinking ▫ ▪ ▫")
	c.ReplaceLast("Here's your draft.")

	if len(c.Entries) != 2 {
		t.Fatalf("ReplaceLast must not grow the transcript, got %d entries", len(c.Entries))
	}
	if c.Entries[1].Content != "Here's your draft." {
		t.Errorf("last entry = %q", c.Entries[1].Content)
	}
	if c.Entries[0].Content != "make a song" {
		t.Error("earlier entries must stay untouched")
	}
}

func TestConversationReplaceLastEmpty(t *testing.T) {
	var c Conversation
	c.ReplaceLast("nothing here") // must not panic

	if len(c.Entries) != 0 {
		t.Error("ReplaceLast on empty transcript must be a no-op")
	}
}

func TestConversationLast(t *testing.T) {
	var c Conversation
	if c.Last() != nil {
		t.Error("Last on empty transcript should be nil")
	}

	c.Append(RoleUser, "hello")
	last := c.Last()
	if last == nil || last.Content != "hello" {
		t.Errorf("Last = %+v", last)
	}
}

func TestHasSong(t *testing.T) {
	r := &StructuredResult{}
	if r.HasSong() {
		t.Error("empty result should not have a song")
	}

	r.Song.Title = "Night Drive"
	if !r.HasSong() {
		t.Error("titled result should have a song")
	}

	r.NeedClarification = true
	if r.HasSong() {
		t.Error("pending clarification should suppress the song")
	}
}
