package engine

import "unicode"

// Edit is a single-region change of the typing surface in 0-based
// rune offsets: [Start, End) was freshly typed, Replaced runes were
// removed at Start. PlainKeystroke marks edits precipitated by an
// ordinary character key, which is what arms the debounce rule for
// input methods that emit a phantom delete-then-reinsert pair.
type Edit struct {
	Start          int
	End            int
	Replaced       int
	PlainKeystroke bool
}

// EditResult reports how an edit was handled.
type EditResult int

// Edit outcomes. Suppressed edits still update session state; only
// the run log entry is withheld.
const (
	EditAccepted EditResult = iota
	EditSuppressed
	EditCompleted
)

// ProcessEdit consumes one edit event and updates session state, the
// progress vector, and the run log. It must not interleave with
// another edit; the host's input loop serializes calls. Typing past
// the end of the source is the completion signal, not a fault.
func (s *Session) ProcessEdit(ev Edit, typed []rune) (EditResult, error) {
	switch s.state {
	case StateFinished:
		return EditSuppressed, ErrFinished
	case StatePaused:
		return EditSuppressed, ErrPaused
	}
	if s.current == nil {
		s.beginRun()
	}
	if s.dog != nil {
		s.dog.reset()
	}

	if ev.End > len(s.source) {
		s.complete()
		return EditCompleted, nil
	}

	for p := ev.Start; p < ev.Start+ev.Replaced && p < len(s.source); p++ {
		s.rollback(p)
	}

	admitted := true
	if ev.End == ev.Start && ev.PlainKeystroke {
		// Swallow the matching phantom reinsert edits.
		s.ignored = ev.Replaced
		admitted = false
	} else if s.ignored > 0 {
		s.ignored--
		admitted = false
	}

	if ev.End > ev.Start {
		elapsed := s.runElapsed()
		for i := 0; i < ev.End-ev.Start && i < len(typed); i++ {
			idx := ev.Start + i
			if s.progress[idx] != Untyped {
				s.rollback(idx)
			}
			state := Correct
			if !s.same(typed[i], s.source[idx]) {
				state = Error
				s.errors++
			}
			s.progress[idx] = state
			s.entries++
			s.remaining--
			if admitted {
				s.inputSeq++
				s.current.append(TypedEntry{
					Seq:         s.inputSeq,
					Index:       idx,
					Typed:       typed[i],
					Source:      s.source[idx],
					Errors:      s.errors,
					Corrections: s.corrections,
					State:       state,
					Elapsed:     elapsed,
				})
			}
		}
	}

	if s.remaining == 0 {
		s.complete()
		return EditCompleted, nil
	}
	if !admitted {
		return EditSuppressed, nil
	}
	return EditAccepted, nil
}

// rollback undoes a settled position. Deleting an error counts as a
// correction attempt; deleting a correct character does not.
func (s *Session) rollback(idx int) {
	switch s.progress[idx] {
	case Correct:
		s.entries--
		s.remaining++
	case Error:
		s.entries--
		s.remaining++
		s.errors--
		s.corrections++
	default:
		return
	}
	s.progress[idx] = Untyped
}

// same reports whether a typed rune matches the source rune, with
// optional whitespace-class equivalence for newlines.
func (s *Session) same(typed, source rune) bool {
	if typed == source {
		return true
	}
	if s.opts.NewlineAsSpace {
		return unicode.IsSpace(typed) && unicode.IsSpace(source)
	}
	return false
}
