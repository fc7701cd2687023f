package realtime

import "sync"

// Entry is one transcript line. A non-final entry keeps growing until the turn completes.
type Entry struct {
	ID      int     `json:"id"`
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
	Final   bool    `json:"final"`
}

// Transcript assembles fragments into entries in arrival order.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	open    map[Speaker]int
}

func NewTranscript() *Transcript {
	return &Transcript{open: make(map[Speaker]int)}
}

// Append adds text to the speaker's in-progress entry, starting one if needed,
// and returns a copy of the updated entry.
func (t *Transcript) Append(speaker Speaker, text string) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if idx, ok := t.open[speaker]; ok {
		t.entries[idx].Text += text
		return t.entries[idx]
	}

	e := Entry{ID: len(t.entries), Speaker: speaker, Text: text}
	t.entries = append(t.entries, e)
	t.open[speaker] = e.ID
	return e
}

// CompleteTurn finalizes every in-progress entry, including empty ones, and
// returns them in entry order.
func (t *Transcript) CompleteTurn() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	var done []Entry
	for i := range t.entries {
		if t.entries[i].Final {
			continue
		}
		if idx, ok := t.open[t.entries[i].Speaker]; !ok || idx != i {
			continue
		}
		t.entries[i].Final = true
		done = append(done, t.entries[i])
	}
	t.open = make(map[Speaker]int)
	return done
}

// Entries returns a snapshot.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Reset drops all entries.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	t.open = make(map[Speaker]int)
}
