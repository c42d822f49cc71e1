package replay

import (
	"strings"
	"testing"

	"github.com/avolkov/keystride/internal/engine"
)

func entry(seq, idx int, typed, source rune, state engine.ProgressState) engine.TypedEntry {
	return engine.TypedEntry{Seq: seq, Index: idx, Typed: typed, Source: source, State: state}
}

func cleanEntries(text string) []engine.TypedEntry {
	entries := make([]engine.TypedEntry, 0, len(text))
	for i, r := range []rune(text) {
		entries = append(entries, entry(i+1, i, r, r, engine.Correct))
	}
	return entries
}

func TestCleanRunReproducesSource(t *testing.T) {
	source := []rune("cat dog")
	run := engine.RunFromEntries("r1", cleanEntries("cat dog"))
	res := Build(run, source)
	if got := Plain(res.Segments); got != "\ncat dog\n" {
		t.Fatalf("unexpected reconstruction: %q", got)
	}
	for _, seg := range res.Segments {
		if seg.Kind == KindError || seg.Kind == KindFixCorrect || seg.Kind == KindFixError {
			t.Fatalf("clean run must not contain error styling: %+v", seg)
		}
	}
	if len(res.Words) != 0 || len(res.Transitions) != 0 {
		t.Fatalf("clean run must mine nothing: %v %v", res.Words, res.Transitions)
	}
}

func TestCorrectionGroupMinesWord(t *testing.T) {
	source := []rune("cat dog")
	entries := []engine.TypedEntry{
		entry(1, 0, 'x', 'c', engine.Error),
		entry(2, 0, 'c', 'c', engine.Correct),
		entry(3, 1, 'a', 'a', engine.Correct),
		entry(4, 2, 't', 't', engine.Correct),
	}
	res := Build(engine.RunFromEntries("r1", entries), source)

	if len(res.Words) != 1 || res.Words[0] != "cat" {
		t.Fatalf("expected mined word cat, got %v", res.Words)
	}
	var kinds []Kind
	for _, seg := range res.Segments {
		kinds = append(kinds, seg.Kind)
	}
	// Settled correct glyph followed by the discarded error try.
	want := []Kind{KindPlain, KindCorrect, KindFixError, KindCorrect, KindCorrect, KindPlain}
	if len(kinds) != len(want) {
		t.Fatalf("unexpected segment count: %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("segment %d: expected kind %v, got %v", i, want[i], kinds[i])
		}
	}
}

func TestSkippedSpanIsSpliced(t *testing.T) {
	source := []rune("cat dog")
	entries := []engine.TypedEntry{
		entry(1, 0, 'c', 'c', engine.Correct),
		entry(2, 1, 'a', 'a', engine.Correct),
		entry(3, 2, 't', 't', engine.Correct),
		// Position 3 (the space) never generated an entry.
		entry(4, 4, 'd', 'd', engine.Correct),
		entry(5, 5, 'o', 'o', engine.Correct),
	}
	res := Build(engine.RunFromEntries("r1", entries), source)
	if got := Plain(res.Segments); got != "\ncat do\n" {
		t.Fatalf("unexpected reconstruction with skip: %q", got)
	}
	// The spliced space is unannotated plain text.
	found := false
	for _, seg := range res.Segments {
		if seg.Kind == KindPlain && seg.Text == " " {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected spliced plain-space segment: %+v", res.Segments)
	}
}

func TestUncorrectedErrorMinesWordAndTransition(t *testing.T) {
	source := []rune("the cat")
	entries := []engine.TypedEntry{
		entry(1, 0, 't', 't', engine.Correct),
		entry(2, 1, 'h', 'h', engine.Correct),
		entry(3, 2, 'x', 'e', engine.Error),
	}
	res := Build(engine.RunFromEntries("r1", entries), source)
	if len(res.Words) != 1 || res.Words[0] != "the" {
		t.Fatalf("expected mined word the, got %v", res.Words)
	}
	if len(res.Transitions) != 1 || res.Transitions[0] != "th" {
		t.Fatalf("expected transition th, got %v", res.Transitions)
	}
}

func TestNoTransitionNearStartOrWhitespace(t *testing.T) {
	source := []rune("the cat")
	// Error within the first two characters: no transition.
	res := Build(engine.RunFromEntries("r1", []engine.TypedEntry{
		entry(1, 1, 'x', 'h', engine.Error),
	}), source)
	if len(res.Transitions) != 0 {
		t.Fatalf("expected no transition near text start, got %v", res.Transitions)
	}
	// Preceding pair spans a space: no transition.
	res = Build(engine.RunFromEntries("r1", []engine.TypedEntry{
		entry(1, 4, 'x', 'c', engine.Error),
	}), source)
	if len(res.Transitions) != 0 {
		t.Fatalf("expected no transition across whitespace, got %v", res.Transitions)
	}
	if len(res.Words) != 1 || res.Words[0] != "cat" {
		t.Fatalf("expected mined word cat, got %v", res.Words)
	}
}

func TestErrorOnWhitespaceMinesNothing(t *testing.T) {
	source := []rune("cat dog")
	res := Build(engine.RunFromEntries("r1", []engine.TypedEntry{
		entry(1, 3, 'x', ' ', engine.Error),
	}), source)
	if len(res.Words) != 0 || len(res.Transitions) != 0 {
		t.Fatalf("whitespace error must mine nothing: %v %v", res.Words, res.Transitions)
	}
}

func TestDisplayGlyphs(t *testing.T) {
	if got := displayGlyph(entry(1, 0, '\n', '\n', engine.Correct)); got != ReturnGlyph+"\n" {
		t.Fatalf("matched newline glyph: %q", got)
	}
	if got := displayGlyph(entry(1, 0, ' ', 'a', engine.Error)); got != SpaceGlyph {
		t.Fatalf("errored space glyph: %q", got)
	}
	if got := displayGlyph(entry(1, 0, '\n', 'a', engine.Error)); got != ReturnGlyph {
		t.Fatalf("errored newline glyph: %q", got)
	}
	if got := displayGlyph(entry(1, 0, 'x', 'a', engine.Error)); got != "x" {
		t.Fatalf("errored char renders as typed: %q", got)
	}
}

func TestRenderStylesSegments(t *testing.T) {
	segs := []Segment{
		{Kind: KindPlain, Text: "a"},
		{Kind: KindError, Text: "b"},
	}
	out := Render(segs, func(k Kind, s string) string {
		if k == KindError {
			return "[" + s + "]"
		}
		return s
	})
	if out != "a[b]" {
		t.Fatalf("unexpected styled output: %q", out)
	}
	if Plain(segs) != "ab" {
		t.Fatalf("unexpected plain output")
	}
}

func TestWordIndexSplitsOnSpacesAndNewlines(t *testing.T) {
	idx := wordIndex([]rune("ab\ncd ef"))
	if idx[0] != "ab" || idx[1] != "ab" {
		t.Fatalf("unexpected word for first span: %v", idx)
	}
	if idx[3] != "cd" || idx[6] != "ef" {
		t.Fatalf("unexpected words: %v", idx)
	}
	if _, ok := idx[2]; ok {
		t.Fatalf("newline position must not map to a word")
	}
}

func TestMinerAccumulatesAcrossRuns(t *testing.T) {
	var m Miner
	m.Absorb(Result{Words: []string{"cat"}, Transitions: []string{"th"}})
	m.Absorb(Result{Words: []string{"dog"}})
	if strings.Join(m.Words, ",") != "cat,dog" {
		t.Fatalf("unexpected words: %v", m.Words)
	}
	if len(m.Transitions) != 1 {
		t.Fatalf("unexpected transitions: %v", m.Transitions)
	}
}
