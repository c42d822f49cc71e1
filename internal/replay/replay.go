// Package replay reconstructs an annotated rendering of a sealed run
// and mines it for mistyped words and hard key transitions.
package replay

import (
	"strings"
	"unicode"

	"github.com/avolkov/keystride/internal/engine"
)

// Visible stand-ins for characters that would otherwise not render.
const (
	ReturnGlyph = "⏎"
	SpaceGlyph  = "·"
)

// Kind classifies a rendered segment.
type Kind int

// Segment kinds. Skipped source spans render as plain text;
// correction kinds mark the discarded tries of a corrected position.
const (
	KindPlain Kind = iota
	KindCorrect
	KindError
	KindFixCorrect
	KindFixError
)

// Segment is one styled piece of the reconstructed run.
type Segment struct {
	Kind Kind
	Text string
}

// Result is the reconstruction of one run plus what it mined.
type Result struct {
	Segments    []Segment
	Words       []string
	Transitions []string
}

// Build reconstructs a sealed run. It operates on an immutable run
// snapshot and is safe to call from a background worker.
func Build(run engine.Run, source []rune) Result {
	entries := run.EntriesChronological()
	wordAt := wordIndex(source)

	var res Result
	res.Segments = append(res.Segments, Segment{Kind: KindPlain, Text: "\n"})

	cursor := 0
	for i := 0; i < len(entries); {
		j := i
		for j+1 < len(entries) && entries[j+1].Index == entries[i].Index {
			j++
		}
		group := entries[i : j+1]
		settled := group[len(group)-1]
		idx := settled.Index

		// Splice back source characters the typer jumped over.
		if idx > cursor {
			res.Segments = append(res.Segments, Segment{Kind: KindPlain, Text: string(source[cursor:idx])})
		}
		if idx >= cursor {
			cursor = idx + 1
		}

		kind := KindCorrect
		if settled.State == engine.Error {
			kind = KindError
		}
		res.Segments = append(res.Segments, Segment{Kind: kind, Text: displayGlyph(settled)})

		if len(group) > 1 {
			for _, try := range group[:len(group)-1] {
				fixKind := KindFixCorrect
				if try.State == engine.Error {
					fixKind = KindFixError
				}
				res.Segments = append(res.Segments, Segment{Kind: fixKind, Text: displayGlyph(try)})
			}
			// A correction counts as a mistake even when the
			// position settled correctly.
			if word, ok := wordAt[idx]; ok {
				res.Words = append(res.Words, word)
			}
		} else if settled.State == engine.Error && !unicode.IsSpace(settled.Source) {
			if word, ok := wordAt[idx]; ok {
				res.Words = append(res.Words, word)
			}
			if idx >= 2 {
				a, b := source[idx-2], source[idx-1]
				if !unicode.IsSpace(a) && !unicode.IsSpace(b) {
					res.Transitions = append(res.Transitions, string([]rune{a, b}))
				}
			}
		}
		i = j + 1
	}

	res.Segments = append(res.Segments, Segment{Kind: KindPlain, Text: "\n"})
	return res
}

// displayGlyph substitutes visible glyphs for characters that would
// otherwise render invisibly or misleadingly.
func displayGlyph(e engine.TypedEntry) string {
	if e.State == engine.Correct {
		if e.Source == '\n' {
			return ReturnGlyph + "\n"
		}
		return string(e.Typed)
	}
	switch e.Typed {
	case ' ':
		return SpaceGlyph
	case '\n':
		return ReturnGlyph
	default:
		return string(e.Typed)
	}
}

// Plain flattens segments into the unstyled reconstruction.
func Plain(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Render flattens segments, styling each through the provided
// function.
func Render(segments []Segment, style func(Kind, string) string) string {
	if style == nil {
		return Plain(segments)
	}
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(style(seg.Kind, seg.Text))
	}
	return b.String()
}

// wordIndex maps every non-whitespace source position to its
// enclosing word, splitting on spaces and newlines only.
func wordIndex(source []rune) map[int]string {
	out := map[int]string{}
	start := -1
	flush := func(end int) {
		if start == -1 {
			return
		}
		word := string(source[start:end])
		for i := start; i < end; i++ {
			out[i] = word
		}
		start = -1
	}
	for i, r := range source {
		if r == ' ' || r == '\n' {
			flush(i)
			continue
		}
		if start == -1 {
			start = i
		}
	}
	flush(len(source))
	return out
}
