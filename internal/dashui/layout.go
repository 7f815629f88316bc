package dashui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	modalMinWidth = 40
	modalMaxWidth = 80
	// border plus horizontal padding of modalStyle
	modalChrome = 6
)

func modalWidth(width int) int {
	return max(modalMinWidth, min(width-4, modalMaxWidth))
}

func modalInnerWidth(width int) int {
	return max(10, modalWidth(width)-modalChrome)
}

// fitLines pads every line of s to width cells and clips or extends the
// block to exactly height lines. A non-positive height keeps the line count.
func fitLines(s string, width, height int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		for len(lines) < height {
			lines = append(lines, "")
		}
		lines = lines[:height]
	}
	blank := strings.Repeat(" ", width)
	for i, line := range lines {
		if gap := width - lipgloss.Width(line); gap > 0 {
			lines[i] = line + blank[:gap]
		}
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
