package report

import (
	"fmt"
	"io"

	"github.com/avolkov/keystride/internal/model"
)

// RenderHistory prints past sessions as a table with a net-WPM
// sparkline sized to the terminal width.
func RenderHistory(w io.Writer, sessions []model.SessionRecord, width int) error {
	headers := []string{"Ended", "Chars", "Runs", "Time", "Gross WPM", "Net WPM", "Accuracy"}
	rows := make([][]string, 0, len(sessions))
	wpms := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.EndedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", s.Entries),
			fmt.Sprintf("%d", s.Runs),
			FormatSeconds(float64(s.DurationMs) / 1000.0),
			fmt.Sprintf("%.1f", s.GrossWPM),
			fmt.Sprintf("%.1f", s.NetWPM),
			fmt.Sprintf("%.1f%%", s.Accuracy),
		})
		wpms = append(wpms, s.NetWPM)
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(wpms) > 1 {
		spark := wpms
		if width > 0 && len(spark) > width-12 && width > 12 {
			spark = spark[len(spark)-(width-12):]
		}
		if _, err := fmt.Fprintf(w, "\nNet WPM: %s\n", Sparkline(spark)); err != nil {
			return err
		}
	}
	return nil
}
