// Package practice turns mined session material into new practice
// texts.
package practice

import (
	"errors"
	"math/rand"
	"strings"
	"time"
)

// ErrNothingToPractice reports an empty mined list. Callers surface
// it as an informational message, not a fault.
var ErrNothingToPractice = errors.New("no errors to practice")

// NewRand returns a shuffle source seeded with the current time.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// MistypedWords joins mined words into a practice text. Internal
// whitespace from multi-word captures is removed; downcase folds
// case.
func MistypedWords(words []string, downcase bool) (string, error) {
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Join(strings.Fields(w), "")
		if w == "" {
			continue
		}
		if downcase {
			w = strings.ToLower(w)
		}
		cleaned = append(cleaned, w)
	}
	if len(cleaned) == 0 {
		return "", ErrNothingToPractice
	}
	return strings.Join(cleaned, " "), nil
}

// HardTransitions expands the mined transitions to at least min
// items, shuffles them, and joins them into a practice text.
func HardTransitions(transitions []string, min int, rnd *rand.Rand) (string, error) {
	if len(transitions) == 0 {
		return "", ErrNothingToPractice
	}
	reps := 1
	if min > len(transitions) {
		reps = (min + len(transitions) - 1) / len(transitions)
	}
	expanded := make([]string, 0, reps*len(transitions))
	for i := 0; i < reps; i++ {
		expanded = append(expanded, transitions...)
	}
	rnd.Shuffle(len(expanded), func(i, j int) {
		expanded[i], expanded[j] = expanded[j], expanded[i]
	})
	return strings.Join(expanded, " "), nil
}
