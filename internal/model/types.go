// Package model defines shared data structures.
package model

import "time"

// Options defines engine and practice settings.
type Options struct {
	NewlineAsSpace bool
	WordLength     float64
	RefreshEvery   int
	MinTransitions int
	DowncaseWords  bool
	IdleTimeout    time.Duration
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		NewlineAsSpace: true,
		WordLength:     5.0,
		RefreshEvery:   5,
		MinTransitions: 30,
		DowncaseWords:  false,
		IdleTimeout:    5 * time.Second,
	}
}

// SessionRecord captures a completed typing session for persistence.
type SessionRecord struct {
	ID          string
	StartedAt   time.Time
	EndedAt     time.Time
	SourceLen   int
	Entries     int
	Errors      int
	Corrections int
	Runs        int
	DurationMs  int64
	GrossWPM    float64
	NetWPM      float64
	Accuracy    float64
}

// RunSummary summarizes one run of a persisted session.
type RunSummary struct {
	SessionID  string
	RunID      string
	Seq        int
	Chars      int
	Errors     int
	DurationMs int64
	GrossWPM   float64
	NetWPM     float64
	Accuracy   float64
}

// HistoryConfig defines filters for the history listing.
type HistoryConfig struct {
	Since *time.Time
	Last  int
}
