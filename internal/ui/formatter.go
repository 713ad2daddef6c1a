package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/ryo246912/gh-issue-csv/internal/service"
)

func PadRight(str string, width int) string {
	w := runewidth.StringWidth(str)
	if w < width {
		return str + strings.Repeat(" ", width-w)
	}
	return str
}

// FormatSummary renders the import outcome: one line per resource kind,
// followed by an aligned table
func FormatSummary(s service.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Created %d issues, and had %d failures.\n", s.Issues.Success, s.Issues.Failure)
	fmt.Fprintf(&b, "Created %d comments, and had %d failures.\n", s.Comments.Success, s.Comments.Failure)

	rows := [][]string{
		{"KIND", "CREATED", "FAILED"},
		{"issues", fmt.Sprint(s.Issues.Success), fmt.Sprint(s.Issues.Failure)},
		{"comments", fmt.Sprint(s.Comments.Success), fmt.Sprint(s.Comments.Failure)},
	}
	if s.Skipped > 0 {
		rows = append(rows, []string{"skipped", fmt.Sprint(s.Skipped), "-"})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	b.WriteString("\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = PadRight(cell, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteString("\n")
	}
	return b.String()
}
