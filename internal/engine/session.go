package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/keystride/internal/metrics"
	"github.com/avolkov/keystride/internal/model"
)

// Session lifecycle states.
type State int

// State machine: NotStarted -> Running -> {Paused, Finished};
// Paused -> Running; Finished is terminal.
const (
	StateNotStarted State = iota
	StateRunning
	StatePaused
	StateFinished
)

// Controller errors for edits delivered outside a running session.
var (
	ErrFinished = errors.New("session is finished")
	ErrPaused   = errors.New("session is paused")
)

// Session is the aggregate owning the source text, the per-position
// progress vector, the running counters, and the run log. All edit
// processing happens synchronously on the caller's event loop; the
// only background activity is the idle watchdog, which merely
// notifies the host.
type Session struct {
	opts   model.Options
	source []rune

	progress []ProgressState

	entries     int
	errors      int
	corrections int
	remaining   int
	inputSeq    int
	ignored     int

	state      State
	runs       []*Run
	current    *Run
	runStarted time.Time
	activeDur  time.Duration

	startedAt time.Time
	endedAt   time.Time

	dog    *watchdog
	onIdle func()

	now func() time.Time
}

// New creates a session over the given source text. Trailing
// whitespace is stripped; the text is otherwise taken verbatim.
func New(text string, opts model.Options) *Session {
	source := []rune(strings.TrimRight(text, " \t\n\r"))
	return &Session{
		opts:      opts,
		source:    source,
		progress:  make([]ProgressState, len(source)),
		remaining: len(source),
		now:       time.Now,
	}
}

// SetIdleFunc installs the callback invoked when the idle watchdog
// fires. The callback runs on the watchdog goroutine and must only
// signal the host; the host calls Pause on its own event loop.
func (s *Session) SetIdleFunc(fn func()) {
	s.onIdle = fn
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Len returns the source text length in runes.
func (s *Session) Len() int {
	return len(s.source)
}

// SourceRunes returns a copy of the source text runes.
func (s *Session) SourceRunes() []rune {
	out := make([]rune, len(s.source))
	copy(out, s.source)
	return out
}

// ProgressAt returns the typing state of a source position.
func (s *Session) ProgressAt(i int) ProgressState {
	if i < 0 || i >= len(s.progress) {
		return Untyped
	}
	return s.progress[i]
}

// Counters returns entries, errors, corrections, remaining.
func (s *Session) Counters() (entries, errCount, corrections, remaining int) {
	return s.entries, s.errors, s.corrections, s.remaining
}

// StartedAt returns the time of the first accepted edit.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// EndedAt returns the completion time, zero until finished.
func (s *Session) EndedAt() time.Time {
	return s.endedAt
}

// RunsChronological returns sealed runs oldest-first.
func (s *Session) RunsChronological() []*Run {
	out := make([]*Run, len(s.runs))
	copy(out, s.runs)
	return out
}

// RunsRecentFirst returns sealed runs newest-first.
func (s *Session) RunsRecentFirst() []*Run {
	out := make([]*Run, len(s.runs))
	for i, r := range s.runs {
		out[len(s.runs)-1-i] = r
	}
	return out
}

// Elapsed returns accumulated active typing time, excluding pauses.
func (s *Session) Elapsed() time.Duration {
	if s.state == StateRunning && s.current != nil {
		return s.activeDur + s.now().Sub(s.runStarted)
	}
	return s.activeDur
}

// Pause seals the current run and stops the clock. Counters persist
// for resume. Pausing a paused or finished session is a no-op.
func (s *Session) Pause() {
	if s.state != StateRunning {
		return
	}
	s.sealRun()
	s.state = StatePaused
	s.stopWatchdog()
}

// Resume re-enables editing after a pause. Counters are kept; a
// fresh run opens at the next accepted edit. No-op unless paused.
func (s *Session) Resume() {
	if s.state != StatePaused {
		return
	}
	s.state = StateRunning
}

// Stop ends the session permanently, sealing any open run.
// Idempotent once finished.
func (s *Session) Stop() {
	if s.state == StateFinished {
		return
	}
	s.complete()
}

// Close releases the watchdog on session teardown.
func (s *Session) Close() {
	s.stopWatchdog()
}

// Status is the live read model for a status-line consumer.
type Status struct {
	GrossWPM    float64
	NetWPM      float64
	SpeedOK     bool
	Accuracy    float64
	AccuracyOK  bool
	Elapsed     time.Duration
	Words       float64
	Errors      int
	Corrections int
	Progress    float64
}

// Status computes the current read model from the live counters.
// Speed figures are flagged unavailable until time has elapsed.
func (s *Session) Status() Status {
	elapsed := s.Elapsed()
	seconds := elapsed.Seconds()
	st := Status{
		Elapsed:     elapsed,
		Words:       metrics.Words(s.entries, s.opts.WordLength),
		Errors:      s.errors,
		Corrections: s.corrections,
	}
	if len(s.source) > 0 {
		st.Progress = float64(s.entries) / float64(len(s.source))
	}
	if seconds > 0 && s.entries > 0 {
		st.GrossWPM = metrics.GrossWPM(s.entries, seconds, s.opts.WordLength)
		st.NetWPM = metrics.NetWPM(s.entries, s.errors, seconds, s.opts.WordLength)
		st.SpeedOK = true
	}
	st.Accuracy, st.AccuracyOK = metrics.Accuracy(s.entries, s.entries-s.errors, s.corrections)
	return st
}

// beginRun opens a run at the first accepted edit after start or
// resume and arms the idle watchdog.
func (s *Session) beginRun() {
	now := s.now()
	if s.startedAt.IsZero() {
		s.startedAt = now
	}
	s.current = &Run{ID: uuid.NewString(), StartedAt: now}
	s.runStarted = now
	s.state = StateRunning
	if s.onIdle != nil && s.opts.IdleTimeout > 0 {
		s.dog = newWatchdog(s.opts.IdleTimeout, s.onIdle)
		s.dog.start()
	}
}

// sealRun closes the current run into the run log. A pause with no
// keystroke since resume still records an empty run.
func (s *Session) sealRun() {
	now := s.now()
	if s.current == nil {
		s.current = &Run{ID: uuid.NewString(), StartedAt: now}
	} else {
		s.activeDur += now.Sub(s.runStarted)
	}
	s.current.FinishedAt = now
	s.runs = append(s.runs, s.current)
	s.current = nil
}

func (s *Session) complete() {
	if s.state == StateRunning || s.current != nil {
		s.sealRun()
	}
	s.state = StateFinished
	s.endedAt = s.now()
	s.stopWatchdog()
}

func (s *Session) stopWatchdog() {
	if s.dog != nil {
		s.dog.stop()
		s.dog = nil
	}
}

func (s *Session) runElapsed() float64 {
	return s.now().Sub(s.runStarted).Seconds()
}
