// Package metrics computes typing speed and accuracy figures. All
// functions are pure; unavailable values are reported through an
// explicit ok flag, never a panic.
package metrics

// DefaultWordLength is the fixed characters-per-word convention.
const DefaultWordLength = 5.0

// Words converts a character count into words using the fixed
// word-length divisor, not real word boundaries.
func Words(chars int, wordLength float64) float64 {
	if wordLength <= 0 {
		wordLength = DefaultWordLength
	}
	return float64(chars) / wordLength
}

// GrossWPM returns words per minute ignoring errors.
func GrossWPM(chars int, seconds, wordLength float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return Words(chars, wordLength) / (seconds / 60.0)
}

// GrossCPM returns characters per minute ignoring errors.
func GrossCPM(chars int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(chars) / (seconds / 60.0)
}

// NetWPM returns words per minute with the uncorrected-error rate
// subtracted, clamped at zero.
func NetWPM(chars, uncorrected int, seconds, wordLength float64) float64 {
	if seconds <= 0 {
		return 0
	}
	net := GrossWPM(chars, seconds, wordLength) - float64(uncorrected)/(seconds/60.0)
	if net < 0 {
		return 0
	}
	return net
}

// NetCPM returns characters per minute with the uncorrected-error
// rate subtracted, clamped at zero.
func NetCPM(chars, uncorrected int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	net := GrossCPM(chars, seconds) - float64(uncorrected)/(seconds/60.0)
	if net < 0 {
		return 0
	}
	return net
}

// Accuracy returns the percentage of cleanly typed characters.
// Corrections discount otherwise-correct characters; the result is
// clamped at zero. ok is false when no characters were typed.
func Accuracy(chars, correct, corrections int) (float64, bool) {
	if chars <= 0 {
		return 0, false
	}
	clean := correct - corrections
	if clean < 0 {
		clean = 0
	}
	return float64(clean) / float64(chars) * 100.0, true
}

// RunMetrics aggregates the figures for one run or for a whole
// session.
type RunMetrics struct {
	Chars       int
	Errors      int
	Corrections int
	Seconds     float64
	GrossWPM    float64
	GrossCPM    float64
	NetWPM      float64
	NetCPM      float64
	SpeedOK     bool
	Accuracy    float64
	AccuracyOK  bool
}

// Compute derives the full figure set from raw counters. uncorrected
// is the number of positions still in error at the end of the span.
func Compute(chars, uncorrected, corrections int, seconds, wordLength float64) RunMetrics {
	m := RunMetrics{
		Chars:       chars,
		Errors:      uncorrected,
		Corrections: corrections,
		Seconds:     seconds,
	}
	if seconds > 0 {
		m.GrossWPM = GrossWPM(chars, seconds, wordLength)
		m.GrossCPM = GrossCPM(chars, seconds)
		m.NetWPM = NetWPM(chars, uncorrected, seconds, wordLength)
		m.NetCPM = NetCPM(chars, uncorrected, seconds)
		m.SpeedOK = true
	}
	m.Accuracy, m.AccuracyOK = Accuracy(chars, chars-uncorrected, corrections)
	return m
}
