// Package report builds the final session report: per-run and
// aggregate metrics plus the annotated replays.
package report

import (
	"github.com/avolkov/keystride/internal/engine"
	"github.com/avolkov/keystride/internal/metrics"
)

// ComputeRuns derives per-run figures. Each run reports the delta of
// its final entry counters against the previous run's final entry;
// the first run uses absolute counters. Elapsed is run-local, so no
// delta is needed for time. Empty runs are skipped.
func ComputeRuns(runs []*engine.Run, wordLength float64) []metrics.RunMetrics {
	var out []metrics.RunMetrics
	prevSeq, prevErrors, prevCorrections := 0, 0, 0
	for _, run := range runs {
		last, ok := run.LastEntry()
		if !ok {
			continue
		}
		chars := last.Seq - prevSeq
		uncorrected := last.Errors - prevErrors
		if uncorrected < 0 {
			uncorrected = 0
		}
		corrections := last.Corrections - prevCorrections
		out = append(out, metrics.Compute(chars, uncorrected, corrections, last.Elapsed, wordLength))
		prevSeq, prevErrors, prevCorrections = last.Seq, last.Errors, last.Corrections
	}
	return out
}

// ComputeOverall derives cumulative session figures: the sum of
// every run's final elapsed seconds with the absolute counters of
// the very last entry.
func ComputeOverall(runs []*engine.Run, wordLength float64) metrics.RunMetrics {
	var seconds float64
	var last engine.TypedEntry
	found := false
	for _, run := range runs {
		if e, ok := run.LastEntry(); ok {
			seconds += e.Elapsed
			last = e
			found = true
		}
	}
	if !found {
		return metrics.RunMetrics{}
	}
	return metrics.Compute(last.Seq, last.Errors, last.Corrections, seconds, wordLength)
}
