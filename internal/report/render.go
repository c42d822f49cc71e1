package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/avolkov/keystride/internal/metrics"
)

// Data is everything the final report is rendered from.
type Data struct {
	Runs        []metrics.RunMetrics
	Overall     metrics.RunMetrics
	Replays     []string
	Words       []string
	Transitions []string
}

// Render writes the final session report: per-run table, aggregate
// line, a WPM sparkline across runs, the annotated replays, and the
// mined practice lists.
func Render(w io.Writer, data Data) error {
	if _, err := fmt.Fprintln(w, "Results"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	headers := []string{"Run", "Time", "Gross WPM", "Net WPM", "Accuracy", "Errors", "Corrections"}
	rows := make([][]string, 0, len(data.Runs))
	for i, m := range data.Runs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			FormatSeconds(m.Seconds),
			speedCell(m.GrossWPM, m.SpeedOK),
			speedCell(m.NetWPM, m.SpeedOK),
			accuracyCell(m),
			fmt.Sprintf("%d", m.Errors),
			fmt.Sprintf("%d", m.Corrections),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	o := data.Overall
	if _, err := fmt.Fprintf(w, "Overall %s · Gross %s WPM · Net %s WPM · Accuracy %s\n",
		FormatSeconds(o.Seconds),
		speedCell(o.GrossWPM, o.SpeedOK),
		speedCell(o.NetWPM, o.SpeedOK),
		accuracyCell(o),
	); err != nil {
		return err
	}
	if len(data.Runs) > 1 {
		wpms := make([]float64, len(data.Runs))
		for i, m := range data.Runs {
			wpms[i] = m.NetWPM
		}
		if _, err := fmt.Fprintf(w, "Net WPM by run: %s\n", Sparkline(wpms)); err != nil {
			return err
		}
	}

	for _, rep := range data.Replays {
		if _, err := fmt.Fprint(w, rep); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if len(data.Words) > 0 {
		if _, err := fmt.Fprintf(w, "Mistyped words: %s\n", strings.Join(data.Words, " ")); err != nil {
			return err
		}
	}
	if len(data.Transitions) > 0 {
		if _, err := fmt.Fprintf(w, "Hard transitions: %s\n", strings.Join(data.Transitions, " ")); err != nil {
			return err
		}
	}
	return nil
}

// FormatSeconds renders elapsed seconds as mm:ss.
func FormatSeconds(seconds float64) string {
	total := int(seconds + 0.5)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func speedCell(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}

func accuracyCell(m metrics.RunMetrics) string {
	if !m.AccuracyOK {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", m.Accuracy)
}
