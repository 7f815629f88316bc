// Package stats contains aggregation of error events and text reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/oradash/internal/model"
)

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	lineColor           = "\x1b[36m"
	barColor            = "\x1b[33m"
	terminalWidthBackup = 80
)

// LineChart renders buckets as a braille line plot with a count axis.
func LineChart(w io.Writer, title string, buckets []model.Bucket, width, height int, forceColor bool) error {
	if len(buckets) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	maxCount := maxBucketCount(buckets)
	axisWidth := len(strconv.Itoa(maxCount))
	if width <= 0 {
		width = PlotWidthFor(terminalWidth(), axisWidth)
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = float64(b.Count)
	}
	resampled := resampleSeries(values, width)
	top := float64(maxCount)
	if top <= 0 {
		top = 1
	}

	cells := makeCells(height, width)
	prevX, prevY := -1, -1
	for x, v := range resampled {
		px := x * 2
		py := valueToRow(v, 0, top, height*4)
		if prevX >= 0 {
			drawLine(prevX, prevY, px, py, func(dx, dy int) {
				setBrailleDot(cells, dx, dy)
			})
		} else {
			setBrailleDot(cells, px, py)
		}
		prevX, prevY = px, py
	}

	useColor := shouldUseColor(w, forceColor)
	labels := makeAxisLabels(height, maxCount)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", axisWidth, labels[y], axisSeparator))
		if useColor {
			row.WriteString(lineColor)
		}
		for x := 0; x < width; x++ {
			row.WriteRune(brailleFromMask(cells[y][x]))
		}
		if useColor {
			row.WriteString(colorReset)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, xAxisLine(buckets, axisWidth, width)); err != nil {
		return err
	}
	return nil
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth, axisWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisWidth - displayWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func xAxisLine(buckets []model.Bucket, axisWidth, width int) string {
	first := buckets[0].Key
	last := buckets[len(buckets)-1].Key
	pad := strings.Repeat(" ", axisWidth+displayWidth(axisSeparator))
	if len(buckets) == 1 {
		return pad + truncate(first, width)
	}
	gap := width - displayWidth(first) - displayWidth(last)
	if gap < 1 {
		return pad + truncate(first+" .. "+last, width)
	}
	return pad + first + strings.Repeat(" ", gap) + last
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height, maxCount int) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = strconv.Itoa(maxCount)
	if height > 2 {
		labels[height/2] = strconv.Itoa(maxCount / 2)
	}
	if height > 1 {
		labels[height-1] = "0"
	}
	return labels
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// resampleSeries stretches or averages values to exactly width points.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	if len(values) >= width {
		for i := 0; i < width; i++ {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	if len(values) == 1 || width == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := 0; i < width; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		idx := int(math.Floor(pos))
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 || maxVal <= minVal {
		return height - 1
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

// drawLine walks a Bresenham line between two dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

// Dot bits follow the Unicode braille layout: columns of 1-2-3-7 and 4-5-6-8.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func brailleDotMask(x, y int) uint8 {
	if x < 0 || x > 1 || y < 0 || y > 3 {
		return 0
	}
	return brailleBits[x][y]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
