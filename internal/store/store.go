// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avolkov/keystride/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data and mined practice
// lists.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			source_len INTEGER NOT NULL,
			entries INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			corrections INTEGER NOT NULL,
			runs INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			gross_wpm REAL NOT NULL,
			net_wpm REAL NOT NULL,
			accuracy REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_runs (
			session_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			chars INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			gross_wpm REAL NOT NULL,
			net_wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS mistyped_words (
			session_id TEXT NOT NULL,
			word TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS hard_transitions (
			session_id TEXT NOT NULL,
			pair TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_mistyped_words_session ON mistyped_words(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_hard_transitions_session ON hard_transitions(session_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a completed session, its per-run summaries,
// and the mined practice lists in one transaction.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord, runs []model.RunSummary, words, transitions []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, source_len, entries, errors, corrections, runs, duration_ms, gross_wpm, net_wpm, accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.SourceLen,
		rec.Entries,
		rec.Errors,
		rec.Corrections,
		rec.Runs,
		rec.DurationMs,
		rec.GrossWPM,
		rec.NetWPM,
		rec.Accuracy,
	)
	if err != nil {
		return err
	}

	for _, run := range runs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO session_runs (session_id, run_id, seq, chars, errors, duration_ms, gross_wpm, net_wpm, accuracy)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, run.RunID, run.Seq, run.Chars, run.Errors, run.DurationMs, run.GrossWPM, run.NetWPM, run.Accuracy,
		); err != nil {
			return err
		}
	}
	if err = s.insertList(ctx, tx, "mistyped_words", "word", rec.ID, words); err != nil {
		return err
	}
	if err = s.insertList(ctx, tx, "hard_transitions", "pair", rec.ID, transitions); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) insertList(ctx context.Context, tx *sql.Tx, table, column, sessionID string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (session_id, %s) VALUES (?, ?)`, table, column))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, sessionID, v); err != nil {
			return err
		}
	}
	return nil
}

// ListSessions returns persisted session records filtered by the
// history config, oldest-first.
func (s *Store) ListSessions(ctx context.Context, cfg model.HistoryConfig) ([]model.SessionRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, source_len, entries, errors, corrections, runs, duration_ms, gross_wpm, net_wpm, accuracy
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &rec.SourceLen, &rec.Entries, &rec.Errors, &rec.Corrections, &rec.Runs, &rec.DurationMs, &rec.GrossWPM, &rec.NetWPM, &rec.Accuracy); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return sessions, nil
}

// ListMistypedWords returns mined words across the most recent
// sessions, newest session first.
func (s *Store) ListMistypedWords(ctx context.Context, window int) ([]string, error) {
	return s.listMined(ctx, "mistyped_words", "word", window)
}

// ListHardTransitions returns mined transitions across the most
// recent sessions, newest session first.
func (s *Store) ListHardTransitions(ctx context.Context, window int) ([]string, error) {
	return s.listMined(ctx, "hard_transitions", "pair", window)
}

func (s *Store) listMined(ctx context.Context, table, column string, window int) ([]string, error) {
	if window <= 0 {
		window = 1
	}
	query := fmt.Sprintf(`WITH recent_sessions AS (
		SELECT id, ended_at FROM sessions
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT t.%s
	FROM %s t
	JOIN recent_sessions r ON r.id = t.session_id
	ORDER BY r.ended_at DESC, t.rowid ASC`, column, table)

	rows, err := s.db.QueryContext(ctx, query, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
