// Package stats contains aggregation of error events and text reporting.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/verte-zerg/oradash/internal/enrich"
	"github.com/verte-zerg/oradash/internal/model"
)

// ErrEmptyGroup is returned when aggregation is asked to group zero events.
var ErrEmptyGroup = errors.New("no events to aggregate")

// UnrecognizedDimensionError reports a grouping dimension outside the supported set.
type UnrecognizedDimensionError struct {
	Dimension model.Dimension
}

func (e *UnrecognizedDimensionError) Error() string {
	return fmt.Sprintf("unrecognized dimension %q", string(e.Dimension))
}

// KnownDimension reports whether d can be aggregated.
func KnownDimension(d model.Dimension) bool {
	switch d {
	case model.DimensionDate, model.DimensionYear, model.DimensionMonth, model.DimensionErrorCode:
		return true
	default:
		return false
	}
}

// Filter returns the events selected by kind. Recent keeps events dated on or after cutoff.
func Filter(events []model.EnrichedEvent, kind model.FilterKind, cutoff model.Date) []model.EnrichedEvent {
	if kind != model.FilterRecent {
		return events
	}
	out := make([]model.EnrichedEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Date.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out
}

// Aggregate counts events per value of dim.
// Dates and years come back in natural order, months in calendar order and
// error codes in ascending code order.
func Aggregate(events []model.EnrichedEvent, dim model.Dimension) ([]model.Bucket, error) {
	if !KnownDimension(dim) {
		return nil, &UnrecognizedDimensionError{Dimension: dim}
	}
	if len(events) == 0 {
		return nil, ErrEmptyGroup
	}

	type group struct {
		key   string
		order int
		count int
	}
	groups := map[string]*group{}
	for _, ev := range events {
		key, order := groupKey(ev, dim)
		g, ok := groups[key]
		if !ok {
			g = &group{key: key, order: order}
			groups[key] = g
		}
		g.count++
	}

	sorted := make([]*group, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].order == sorted[j].order {
			return sorted[i].key < sorted[j].key
		}
		return sorted[i].order < sorted[j].order
	})

	out := make([]model.Bucket, 0, len(sorted))
	for _, g := range sorted {
		out = append(out, model.Bucket{Key: g.key, Count: g.count})
	}
	return out, nil
}

// groupKey returns the label of ev under dim and a rank used for ordering.
// Keys sharing a rank are ordered lexically.
func groupKey(ev model.EnrichedEvent, dim model.Dimension) (string, int) {
	switch dim {
	case model.DimensionDate:
		return ev.Date.String(), ev.Date.Year*10000 + int(ev.Date.Month)*100 + ev.Date.Day
	case model.DimensionYear:
		return strconv.Itoa(ev.Year), ev.Year
	case model.DimensionMonth:
		idx, _ := enrich.MonthIndex(ev.MonthLabel)
		return ev.MonthLabel, idx
	default:
		return ev.Code, 0
	}
}

// SortByCount returns a copy of buckets ordered by count descending, ties by key.
func SortByCount(buckets []model.Bucket) []model.Bucket {
	out := append([]model.Bucket(nil), buckets...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Key < out[j].Key
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// Total sums the bucket counts.
func Total(buckets []model.Bucket) int {
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	return total
}
