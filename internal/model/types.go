// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Config defines dashboard settings.
type Config struct {
	RotationPeriod time.Duration
	TickInterval   time.Duration
	TopK           int
}

// ErrorEvent is a single error extracted from a log line.
type ErrorEvent struct {
	Timestamp time.Time
	Code      string
	Message   string
}

// EnrichedEvent carries calendar fields derived from the event timestamp.
type EnrichedEvent struct {
	ErrorEvent
	Date       Date
	Year       int
	MonthLabel string
}

// Date is a civil calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Compare returns -1, 0 or 1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.Compare(o) < 0
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return DateOf(t)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// ViewKind selects how a view is presented.
type ViewKind int

const (
	KindChart ViewKind = iota
	KindTable
)

func (k ViewKind) String() string {
	switch k {
	case KindChart:
		return "chart"
	case KindTable:
		return "table"
	default:
		return fmt.Sprintf("ViewKind(%d)", int(k))
	}
}

// FilterKind selects which events a view considers.
type FilterKind int

const (
	FilterRecent FilterKind = iota
	FilterAll
)

func (f FilterKind) String() string {
	switch f {
	case FilterRecent:
		return "recent"
	case FilterAll:
		return "all"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(f))
	}
}

// Dimension names the field a chart groups by.
type Dimension string

const (
	DimensionDate      Dimension = "date"
	DimensionYear      Dimension = "year"
	DimensionMonth     Dimension = "month"
	DimensionErrorCode Dimension = "error_code"
)

// ChartKind selects the chart style.
type ChartKind int

const (
	ChartBar ChartKind = iota
	ChartLine
)

func (c ChartKind) String() string {
	switch c {
	case ChartBar:
		return "bar"
	case ChartLine:
		return "line"
	default:
		return fmt.Sprintf("ChartKind(%d)", int(c))
	}
}

// ViewDefinition describes one entry of the rotating view catalog.
// Dimension and Chart are meaningful only for chart views.
type ViewDefinition struct {
	ID        int
	Kind      ViewKind
	Filter    FilterKind
	Dimension Dimension
	Chart     ChartKind
	Title     string
}

// RotationState is the mutable cursor of the rotation scheduler.
type RotationState struct {
	Index       int
	LastAdvance time.Time
}

// Bucket is one group of a count series.
type Bucket struct {
	Key   string
	Count int
}

// ErrorSummary is one row of a top-K error table.
type ErrorSummary struct {
	Code    string
	Message string
	Count   int
}

// LoadRecord describes one attempt to load a log file.
type LoadRecord struct {
	ID           int64
	Path         string
	LoadedAt     time.Time
	TotalLines   int
	Events       int
	SkippedLines int
	Error        string
}
