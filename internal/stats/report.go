// Package stats contains aggregation of error events and text reporting.
package stats

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/verte-zerg/oradash/internal/model"
)

const maxMessageWidth = 60

// ChartOptions controls text chart rendering. Width is the full line width
// including axis labels; zero means the terminal width.
type ChartOptions struct {
	Width      int
	Height     int
	MaxBars    int
	ForceColor bool
}

// RenderChart draws buckets for a chart view. Error-code charts are ordered by count.
func RenderChart(w io.Writer, title string, def model.ViewDefinition, buckets []model.Bucket, opts ChartOptions) error {
	if def.Dimension == model.DimensionErrorCode {
		buckets = SortByCount(buckets)
	}
	switch def.Chart {
	case model.ChartLine:
		plotWidth := 0
		if opts.Width > 0 {
			plotWidth = PlotWidthFor(opts.Width, len(strconv.Itoa(maxBucketCount(buckets))))
		}
		return LineChart(w, title, buckets, plotWidth, opts.Height, opts.ForceColor)
	default:
		return BarChart(w, title, buckets, opts.Width, opts.MaxBars, opts.ForceColor)
	}
}

func maxBucketCount(buckets []model.Bucket) int {
	maxCount := 0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	return maxCount
}

// TopErrorHeaders are the column captions for top error tables.
var TopErrorHeaders = []string{"Code", "Most Frequent Description", "Occurrences"}

var topErrorColumns = []column{
	{Header: TopErrorHeaders[0]},
	{Header: TopErrorHeaders[1], MaxWidth: maxMessageWidth},
	{Header: TopErrorHeaders[2], RightAlign: true},
}

var historyColumns = []column{
	{Header: "Loaded At"},
	{Header: "Events", RightAlign: true},
	{Header: "Skipped", RightAlign: true},
	{Header: "Status", MaxWidth: 40},
	{Header: "Path"},
}

// RenderTopErrors prints a top-K error table.
func RenderTopErrors(w io.Writer, title string, rows []model.ErrorSummary) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No errors found.")
		return err
	}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Code,
			r.Message,
			strconv.Itoa(r.Count),
		})
	}
	for _, line := range formatTable(topErrorColumns, tableRows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints previously loaded log files, newest first.
func RenderHistory(w io.Writer, loads []model.LoadRecord) error {
	if len(loads) == 0 {
		_, err := fmt.Fprintln(w, "No logs loaded yet.")
		return err
	}
	rows := make([][]string, 0, len(loads))
	for _, l := range loads {
		status := "ok"
		if l.Error != "" {
			status = "failed: " + l.Error
		}
		rows = append(rows, []string{
			l.LoadedAt.Local().Format(time.DateTime),
			strconv.Itoa(l.Events),
			strconv.Itoa(l.SkippedLines),
			status,
			l.Path,
		})
	}
	for _, line := range formatTable(historyColumns, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
