// Package extract turns raw database error logs into structured error events.
package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/verte-zerg/oradash/internal/model"
)

// TimestampLayout is the fixed timestamp format expected at the start of an event line.
const TimestampLayout = "2006-01-02 15:04:05"

var linePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}).*?([A-Z]{3}-\d{5}):\s+(\S.*)`)

// MalformedLogError reports a line that looks like an event but whose timestamp cannot be parsed.
type MalformedLogError struct {
	Line int
	Text string
	Err  error
}

func (e *MalformedLogError) Error() string {
	return fmt.Sprintf("malformed log line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *MalformedLogError) Unwrap() error {
	return e.Err
}

// Stats counts how the lines of an input were classified.
type Stats struct {
	TotalLines   int
	Events       int
	SkippedLines int
}

// Extract returns the error events found in raw, in line order.
// Lines that do not match the event pattern are skipped.
func Extract(raw string) ([]model.ErrorEvent, error) {
	events, _, err := ExtractWithStats(raw)
	return events, err
}

// ExtractWithStats is Extract that also reports line counts.
func ExtractWithStats(raw string) ([]model.ErrorEvent, Stats, error) {
	var st Stats
	events := []model.ErrorEvent{}
	if raw == "" {
		return events, st, nil
	}
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		st.TotalLines++
		ev, ok, err := parseLine(line)
		if err != nil {
			return nil, st, &MalformedLogError{Line: i + 1, Text: line, Err: err}
		}
		if !ok {
			st.SkippedLines++
			continue
		}
		events = append(events, ev)
	}
	st.Events = len(events)
	return events, st, nil
}

// ExtractFile reads the file at path and extracts its events.
func ExtractFile(path string) ([]model.ErrorEvent, Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read log: %w", err)
	}
	return ExtractWithStats(string(data))
}

func parseLine(line string) (model.ErrorEvent, bool, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return model.ErrorEvent{}, false, nil
	}
	message := strings.TrimSpace(m[3])
	if message == "" {
		return model.ErrorEvent{}, false, nil
	}
	ts, err := time.Parse(TimestampLayout, m[1])
	if err != nil {
		return model.ErrorEvent{}, false, err
	}
	return model.ErrorEvent{
		Timestamp: ts,
		Code:      m[2],
		Message:   message,
	}, true, nil
}
