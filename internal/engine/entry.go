// Package engine implements the keystroke event processing core:
// session state, the change processor, the run log, and the
// session controller.
package engine

import "time"

// ProgressState tracks the typing state of one source position.
type ProgressState uint8

// Progress states for a source position.
const (
	Untyped ProgressState = iota
	Correct
	Error
)

// TypedEntry records one accepted keystroke. Entries are immutable
// once created. Counters are the session counters after the entry
// was applied; Elapsed is seconds since the owning run started.
type TypedEntry struct {
	Seq         int
	Index       int
	Typed       rune
	Source      rune
	Errors      int
	Corrections int
	State       ProgressState
	Elapsed     float64
}

// Run is one contiguous typing attempt between start/resume and
// pause/stop/completion. Entries are stored chronologically; both
// orderings are part of the API so callers never reverse by hand.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	entries []TypedEntry
}

func (r *Run) append(e TypedEntry) {
	r.entries = append(r.entries, e)
}

// Len returns the number of entries in the run.
func (r *Run) Len() int {
	return len(r.entries)
}

// EntriesChronological returns the run's entries oldest-first.
func (r *Run) EntriesChronological() []TypedEntry {
	out := make([]TypedEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// EntriesRecentFirst returns the run's entries newest-first.
func (r *Run) EntriesRecentFirst() []TypedEntry {
	out := make([]TypedEntry, len(r.entries))
	for i, e := range r.entries {
		out[len(r.entries)-1-i] = e
	}
	return out
}

// LastEntry returns the most recent entry of the run.
func (r *Run) LastEntry() (TypedEntry, bool) {
	if len(r.entries) == 0 {
		return TypedEntry{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// RunFromEntries builds a sealed run from chronological entries,
// for rehydrating snapshots outside the controller.
func RunFromEntries(id string, entries []TypedEntry) Run {
	out := make([]TypedEntry, len(entries))
	copy(out, entries)
	return Run{ID: id, entries: out}
}

// Snapshot returns an immutable copy of a sealed run, safe to hand
// to a background renderer.
func (r *Run) Snapshot() Run {
	return Run{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		entries:    r.EntriesChronological(),
	}
}
