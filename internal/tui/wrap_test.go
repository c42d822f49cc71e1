package tui

import (
	"strings"
	"testing"

	"github.com/avolkov/keystride/internal/engine"
)

func plainRunes(text string) []styledRune {
	out := make([]styledRune, 0, len(text))
	for _, r := range text {
		item := styledRune{s: string(r), width: 1, isSpace: r == ' '}
		if r == '\n' {
			item.s = "⏎"
			item.hardBreak = true
		}
		out = append(out, item)
	}
	return out
}

func stripNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", "")
}

func TestWrapBreaksAtLastSpace(t *testing.T) {
	out := wrapStyledRunes(plainRunes("cat dog"), 5)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || lines[0] != "cat" || lines[1] != "dog" {
		t.Fatalf("unexpected wrap: %q", out)
	}
}

func TestWrapHardBreakFlushesLine(t *testing.T) {
	out := wrapStyledRunes(plainRunes("ab\ncd"), 80)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || lines[0] != "ab⏎" || lines[1] != "cd" {
		t.Fatalf("unexpected hard-break wrap: %q", out)
	}
}

func TestWrapLongWordBreaksMidWord(t *testing.T) {
	out := wrapStyledRunes(plainRunes("abcdefgh"), 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	if stripNewlines(out) != "abcdefgh" {
		t.Fatalf("wrap must not drop characters: %q", out)
	}
}

func TestWrapNonPositiveWidthKeepsSingleLine(t *testing.T) {
	out := wrapStyledRunes(plainRunes("cat dog"), 0)
	if strings.Contains(out, "\n") {
		t.Fatalf("expected no wrapping: %q", out)
	}
}

func TestBuildStyledRunesFlags(t *testing.T) {
	source := []rune("ab \ncd")
	states := map[int]engine.ProgressState{
		0: engine.Correct,
		1: engine.Error,
		2: engine.Error,
		3: engine.Correct,
	}
	stateAt := func(i int) engine.ProgressState {
		return states[i]
	}
	runes := buildStyledRunes(source, stateAt, 4)
	if len(runes) != len(source) {
		t.Fatalf("expected %d styled runes, got %d", len(source), len(runes))
	}
	if !runes[2].isSpace {
		t.Fatalf("space position must be flagged")
	}
	if !strings.Contains(runes[2].s, "·") {
		t.Fatalf("errored space must render as middle dot: %q", runes[2].s)
	}
	if !runes[3].hardBreak {
		t.Fatalf("newline must force a hard break")
	}
	if !strings.Contains(runes[3].s, "⏎") {
		t.Fatalf("newline must render as return glyph: %q", runes[3].s)
	}
	for i, item := range runes {
		if item.width != 1 {
			t.Fatalf("unexpected width at %d: %d", i, item.width)
		}
	}
}

func TestFindWords(t *testing.T) {
	words := findWords([]rune("ab\ncd ef"))
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %v", words)
	}
	if words[0].start != 0 || words[0].end != 2 {
		t.Fatalf("unexpected first word range: %v", words[0])
	}
	if words[2].start != 6 || words[2].end != 8 {
		t.Fatalf("unexpected last word range: %v", words[2])
	}
}

func TestWordForCursor(t *testing.T) {
	words := findWords([]rune("ab cd"))
	if w := wordForCursor(words, 1); w == nil || w.start != 0 {
		t.Fatalf("cursor inside word must pick it: %v", w)
	}
	if w := wordForCursor(words, 2); w == nil || w.start != 3 {
		t.Fatalf("cursor on space must pick the next word: %v", w)
	}
	if w := wordForCursor(words, 99); w == nil || w.start != 3 {
		t.Fatalf("cursor past end must pick the last word: %v", w)
	}
	if wordForCursor(nil, 0) != nil {
		t.Fatalf("no words must yield nil")
	}
}
