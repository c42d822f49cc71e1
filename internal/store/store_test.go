package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/avolkov/keystride/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "keystride.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertTestSession(t *testing.T, st *Store, id string, endedAt time.Time, words, transitions []string) {
	t.Helper()
	rec := model.SessionRecord{
		ID:          id,
		StartedAt:   endedAt.Add(-time.Minute),
		EndedAt:     endedAt,
		SourceLen:   7,
		Entries:     7,
		Errors:      1,
		Corrections: 1,
		Runs:        1,
		DurationMs:  60000,
		GrossWPM:    1.4,
		NetWPM:      1.2,
		Accuracy:    85.7,
	}
	runs := []model.RunSummary{
		{SessionID: id, RunID: id + "-run", Seq: 1, Chars: 7, Errors: 1, DurationMs: 60000, GrossWPM: 1.4, NetWPM: 1.2, Accuracy: 85.7},
	}
	if err := st.InsertSession(context.Background(), rec, runs, words, transitions); err != nil {
		t.Fatalf("insert session: %v", err)
	}
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Unix(0, 0)
	insertTestSession(t, st, "s1", base.Add(time.Minute), []string{"cat"}, []string{"th"})
	insertTestSession(t, st, "s2", base.Add(2*time.Minute), []string{"dog"}, nil)
	insertTestSession(t, st, "s3", base.Add(3*time.Minute), nil, []string{"qu"})

	sessions, err := st.ListSessions(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "s1" || sessions[2].ID != "s3" {
		t.Fatalf("expected oldest-first ordering: %+v", sessions)
	}
	if sessions[0].Entries != 7 || sessions[0].NetWPM != 1.2 {
		t.Fatalf("unexpected record round trip: %+v", sessions[0])
	}

	since := base.Add(90 * time.Second)
	sessions, err = st.ListSessions(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list sessions since: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions since cutoff, got %d", len(sessions))
	}

	sessions, err = st.ListSessions(ctx, model.HistoryConfig{Last: 1})
	if err != nil {
		t.Fatalf("list last session: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "s3" {
		t.Fatalf("expected only the latest session: %+v", sessions)
	}
}

func TestListMinedListsWindow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Unix(0, 0)
	insertTestSession(t, st, "s1", base.Add(time.Minute), []string{"cat"}, []string{"th"})
	insertTestSession(t, st, "s2", base.Add(2*time.Minute), []string{"dog", "fox"}, []string{"qu"})

	words, err := st.ListMistypedWords(ctx, 10)
	if err != nil {
		t.Fatalf("list words: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %v", words)
	}
	if words[0] != "dog" || words[1] != "fox" {
		t.Fatalf("expected newest session first: %v", words)
	}

	words, err = st.ListMistypedWords(ctx, 1)
	if err != nil {
		t.Fatalf("list words windowed: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected window to drop older session, got %v", words)
	}

	transitions, err := st.ListHardTransitions(ctx, 10)
	if err != nil {
		t.Fatalf("list transitions: %v", err)
	}
	if len(transitions) != 2 || transitions[0] != "qu" {
		t.Fatalf("unexpected transitions: %v", transitions)
	}
}
