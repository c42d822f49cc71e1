package engine

import (
	"testing"
	"time"

	"github.com/avolkov/keystride/internal/model"
)

func TestPauseResumeKeepsCounters(t *testing.T) {
	s, cur := newTestSession("cat dog")
	typeRune(t, s, 0, 'x')
	deleteRune(t, s, 0)
	typeRune(t, s, 0, 'c')
	typeRune(t, s, 1, 'a')

	*cur = cur.Add(10 * time.Second)
	s.Pause()
	if s.State() != StatePaused {
		t.Fatalf("expected paused state")
	}
	s.Pause() // re-entrant pause is a no-op
	if got := len(s.RunsChronological()); got != 1 {
		t.Fatalf("expected 1 sealed run, got %d", got)
	}

	s.Resume()
	if s.State() != StateRunning {
		t.Fatalf("expected running state after resume")
	}
	entries, errCount, corrections, remaining := s.Counters()
	if entries != 2 || errCount != 0 || corrections != 1 || remaining != 5 {
		t.Fatalf("counters reset across resume: %d %d %d %d", entries, errCount, corrections, remaining)
	}

	typeRune(t, s, 2, 't')
	if got := len(s.RunsChronological()); got != 1 {
		t.Fatalf("new run should stay open until sealed, got %d sealed", got)
	}
	s.Pause()
	runs := s.RunsChronological()
	if len(runs) != 2 {
		t.Fatalf("expected 2 sealed runs, got %d", len(runs))
	}
	if runs[1].Len() != 1 {
		t.Fatalf("expected 1 entry in second run, got %d", runs[1].Len())
	}
}

func TestPauseWithoutKeystrokeRecordsEmptyRun(t *testing.T) {
	s, _ := newTestSession("cat")
	typeRune(t, s, 0, 'c')
	s.Pause()
	s.Resume()
	s.Pause()
	runs := s.RunsChronological()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[1].Len() != 0 {
		t.Fatalf("expected empty second run, got %d entries", runs[1].Len())
	}
}

func TestElapsedExcludesPauses(t *testing.T) {
	s, cur := newTestSession("cat dog")
	typeRune(t, s, 0, 'c')
	*cur = cur.Add(4 * time.Second)
	s.Pause()
	*cur = cur.Add(time.Hour)
	s.Resume()
	typeRune(t, s, 1, 'a')
	*cur = cur.Add(6 * time.Second)
	if got := s.Elapsed(); got != 10*time.Second {
		t.Fatalf("expected 10s active time, got %v", got)
	}
}

func TestStopIsTerminalAndIdempotent(t *testing.T) {
	s, _ := newTestSession("cat")
	typeRune(t, s, 0, 'c')
	s.Stop()
	if s.State() != StateFinished {
		t.Fatalf("expected finished state")
	}
	runsBefore := len(s.RunsChronological())
	s.Stop()
	s.Pause()
	s.Resume()
	if s.State() != StateFinished {
		t.Fatalf("finished state must be terminal")
	}
	if got := len(s.RunsChronological()); got != runsBefore {
		t.Fatalf("terminal no-ops must not add runs: %d != %d", got, runsBefore)
	}
}

func TestStatusReadModel(t *testing.T) {
	s, cur := newTestSession("cat dog")
	for i, r := range "cat" {
		typeRune(t, s, i, r)
	}
	*cur = cur.Add(60 * time.Second)
	st := s.Status()
	if !st.SpeedOK {
		t.Fatalf("expected speed figures available")
	}
	if st.GrossWPM < 0.59 || st.GrossWPM > 0.61 {
		t.Fatalf("expected gross wpm ~0.6, got %f", st.GrossWPM)
	}
	if !st.AccuracyOK || st.Accuracy != 100.0 {
		t.Fatalf("expected 100%% accuracy, got %f (ok=%v)", st.Accuracy, st.AccuracyOK)
	}
	if st.Errors != 0 || st.Corrections != 0 {
		t.Fatalf("unexpected error counters")
	}
}

func TestStatusUnavailableBeforeTyping(t *testing.T) {
	s, _ := newTestSession("cat")
	st := s.Status()
	if st.SpeedOK || st.AccuracyOK {
		t.Fatalf("expected unavailable figures before typing")
	}
}

func TestIdleWatchdogFiresAndIsCanceled(t *testing.T) {
	opts := model.DefaultOptions()
	opts.IdleTimeout = 20 * time.Millisecond
	s := New("cat dog", opts)
	fired := make(chan struct{}, 1)
	s.SetIdleFunc(func() { fired <- struct{}{} })

	typeRune(t, s, 0, 'c')
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("watchdog did not fire")
	}
	// The host delivers the pause.
	s.Pause()
	if s.dog != nil {
		t.Fatalf("watchdog must be released on pause")
	}

	s.Resume()
	typeRune(t, s, 1, 'a')
	typeRune(t, s, 2, 't')
	typeRune(t, s, 3, ' ')
	typeRune(t, s, 4, 'd')
	typeRune(t, s, 5, 'o')
	typeRune(t, s, 6, 'g')
	if s.State() != StateFinished {
		t.Fatalf("expected completion")
	}
	if s.dog != nil {
		t.Fatalf("watchdog must be released on completion")
	}
}
