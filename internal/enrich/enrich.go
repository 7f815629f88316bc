// Package enrich derives calendar fields from error event timestamps.
package enrich

import (
	"errors"
	"time"

	"github.com/verte-zerg/oradash/internal/model"
)

// ErrEmptyInput is returned when there are no events to enrich.
var ErrEmptyInput = errors.New("no events to enrich")

// MonthLabels holds the localized month abbreviations, January first.
var MonthLabels = [12]string{
	"Jan", "Fev", "Mar", "Abr", "Mai", "Jun",
	"Jul", "Ago", "Set", "Out", "Nov", "Dez",
}

// MonthLabel returns the localized abbreviation for m.
func MonthLabel(m time.Month) string {
	return MonthLabels[int(m)-1]
}

// MonthIndex returns the zero-based calendar position of a month label.
func MonthIndex(label string) (int, bool) {
	for i, l := range MonthLabels {
		if l == label {
			return i, true
		}
	}
	return 0, false
}

// Enrich derives date, year and month label for every event, preserving order.
func Enrich(events []model.ErrorEvent) ([]model.EnrichedEvent, error) {
	if len(events) == 0 {
		return nil, ErrEmptyInput
	}
	out := make([]model.EnrichedEvent, len(events))
	for i, ev := range events {
		out[i] = Event(ev)
	}
	return out, nil
}

// Event enriches a single event.
func Event(ev model.ErrorEvent) model.EnrichedEvent {
	return model.EnrichedEvent{
		ErrorEvent: ev,
		Date:       model.DateOf(ev.Timestamp),
		Year:       ev.Timestamp.Year(),
		MonthLabel: MonthLabel(ev.Timestamp.Month()),
	}
}
