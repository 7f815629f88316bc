package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one text table column. MaxWidth of zero means unbounded.
type column struct {
	Header     string
	RightAlign bool
	MaxWidth   int
}

// formatTable lays rows out under cols, one string per line including the header.
// Cells wider than their column's MaxWidth are cut with "...".
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	cells := make([][]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	cells = append(cells, header)
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			if i < len(row) {
				line[i] = truncate(row[i], c.MaxWidth)
			}
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(cols))
	for _, line := range cells {
		for i, cell := range line {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	out := make([]string, 0, len(cells))
	for _, line := range cells {
		var b strings.Builder
		for i, cell := range line {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(padCell(cell, widths[i], cols[i].RightAlign))
		}
		out = append(out, strings.TrimRight(b.String(), " "))
	}
	return out
}

func padCell(value string, width int, rightAlign bool) string {
	gap := width - displayWidth(value)
	if gap <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", gap) + value
	}
	return value + strings.Repeat(" ", gap)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}

// truncate shortens value to at most width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	return runewidth.Truncate(value, width, "...")
}
