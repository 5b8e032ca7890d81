package model

// Entry is one transcript line of a session
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered transcript of a session. Entries are
// append-only, except that the most recent assistant entry may be replaced
// in place while its job is still running.
type Conversation struct {
	Entries []Entry `json:"entries"`
}

// Append adds a new entry at the end of the transcript.
func (c *Conversation) Append(role Role, content string) {
	c.Entries = append(c.Entries, Entry{Role: role, Content: content})
}

// ReplaceLast overwrites the content of the most recent entry. It is a
// no-op on an empty transcript.
func (c *Conversation) ReplaceLast(content string) {
	if len(c.Entries) == 0 {
		return
	}
	c.Entries[len(c.Entries)-1].Content = content
}

// Last returns the most recent entry, or nil on an empty transcript.
func (c *Conversation) Last() *Entry {
	if len(c.Entries) == 0 {
		return nil
	}
	return &c.Entries[len(c.Entries)-1]
}

// Session holds a conversation transcript plus the last structured result
// produced for it. Only workers mutate a session, through SessionService.
type Session struct {
	ID           string            `json:"id"`
	Conversation Conversation      `json:"conversation"`
	LastResult   *StructuredResult `json:"lastResult,omitempty"`
}
