package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/oradash/internal/model"
)

const (
	barFull     = "█"
	maxBarLabel = 24
)

// partial blocks for the fractional end of a bar, in eighths.
var barEighths = []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

// BarChart renders buckets as horizontal bars, one line per bucket.
// When maxRows > 0 only the first maxRows buckets are drawn.
func BarChart(w io.Writer, title string, buckets []model.Bucket, width, maxRows int, forceColor bool) error {
	if len(buckets) == 0 {
		return nil
	}
	if maxRows > 0 && len(buckets) > maxRows {
		buckets = buckets[:maxRows]
	}
	if width <= 0 {
		width = terminalWidth()
	}

	labelWidth := 0
	countWidth := 0
	maxCount := 0
	for _, b := range buckets {
		if lw := displayWidth(truncate(b.Key, maxBarLabel)); lw > labelWidth {
			labelWidth = lw
		}
		if cw := len(strconv.Itoa(b.Count)); cw > countWidth {
			countWidth = cw
		}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	barWidth := width - labelWidth - countWidth - displayWidth(axisSeparator) - 1
	if barWidth < minPlotWidth {
		barWidth = minPlotWidth
	}

	useColor := shouldUseColor(w, forceColor)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, b := range buckets {
		bar := renderBar(b.Count, maxCount, barWidth)
		if useColor {
			bar = barColor + bar + colorReset
		}
		label := padCell(truncate(b.Key, maxBarLabel), labelWidth, false)
		if _, err := fmt.Fprintf(w, "%s%s%s %*d\n", label, axisSeparator, bar, countWidth, b.Count); err != nil {
			return err
		}
	}
	return nil
}

func renderBar(count, maxCount, width int) string {
	if maxCount <= 0 || count <= 0 {
		return ""
	}
	eighths := count * width * 8 / maxCount
	if eighths == 0 {
		eighths = 1
	}
	return strings.Repeat(barFull, eighths/8) + barEighths[eighths%8]
}
