package model

// StructuredResult is the canonical object exchanged with the generation
// backend. The wire shape is fixed: extra keys are tolerated on read but
// never emitted on write.
type StructuredResult struct {
	AssistantMessage   string          `json:"assistant_message"`
	Song               SongConcept     `json:"song"`
	Lyrics             LyricsBlock     `json:"lyrics"`
	ProductionNotes    ProductionNotes `json:"production_notes"`
	NeedClarification  bool            `json:"need_clarification"`
	ClarifyingQuestion string          `json:"clarifying_question"`
}

// SongConcept describes the song-level metadata of a result
type SongConcept struct {
	Title            string   `json:"title"`
	Voice            string   `json:"voice"`
	Genre            string   `json:"genre"`
	BPM              int      `json:"bpm"`
	MoodTags         []string `json:"mood_tags"`
	SoundDescription string   `json:"sound_description"`
}

// LyricsBlock holds the section list and the full lyric text
type LyricsBlock struct {
	Structure []string `json:"structure"`
	Text      string   `json:"text"`
}

// ProductionNotes holds arrangement and mixing guidance
type ProductionNotes struct {
	Arrangement string `json:"arrangement"`
	MixNotes    string `json:"mix_notes"`
}

// HasSong reports whether the result carries a usable song concept
// (a title and no pending clarification).
func (r *StructuredResult) HasSong() bool {
	return !r.NeedClarification && r.Song.Title != ""
}
