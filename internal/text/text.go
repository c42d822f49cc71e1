// Package text loads and normalizes practice source texts.
package text

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads a practice text from the provided file path and
// normalizes it: per-line trailing whitespace and the trailing
// newline run are stripped.
func Load(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only text.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), " \t"))
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	out := strings.TrimRight(strings.Join(lines, "\n"), " \t\n\r")
	if out == "" {
		return "", fmt.Errorf("text file is empty")
	}
	return out, nil
}

// Reflow collapses all whitespace and re-wraps the text to the given
// column width. A non-positive width returns a single line.
func Reflow(s string, width int) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	if width <= 0 {
		return strings.Join(fields, " ")
	}
	var b strings.Builder
	lineLen := 0
	for i, f := range fields {
		if i > 0 {
			if lineLen+1+len([]rune(f)) > width {
				b.WriteByte('\n')
				lineLen = 0
			} else {
				b.WriteByte(' ')
				lineLen++
			}
		}
		b.WriteString(f)
		lineLen += len([]rune(f))
	}
	return b.String()
}
