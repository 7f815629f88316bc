// Package stats contains aggregation of error events and text reporting.
package stats

import (
	"fmt"
	"sort"

	"github.com/verte-zerg/oradash/internal/model"
)

// TopErrors returns the k most frequent error codes with their most common message.
// When several messages are equally frequent, the one seen first in events wins.
func TopErrors(events []model.EnrichedEvent, k int) ([]model.ErrorSummary, error) {
	if k < 1 {
		return nil, fmt.Errorf("top-k must be >= 1, got %d", k)
	}
	if len(events) == 0 {
		return nil, ErrEmptyGroup
	}

	type message struct {
		text  string
		first int
		count int
	}
	type item struct {
		code     string
		total    int
		messages map[string]*message
	}
	items := map[string]*item{}
	for i, ev := range events {
		it, ok := items[ev.Code]
		if !ok {
			it = &item{code: ev.Code, messages: map[string]*message{}}
			items[ev.Code] = it
		}
		it.total++
		msg, ok := it.messages[ev.Message]
		if !ok {
			msg = &message{text: ev.Message, first: i}
			it.messages[ev.Message] = msg
		}
		msg.count++
	}

	out := make([]model.ErrorSummary, 0, len(items))
	for _, it := range items {
		var best *message
		for _, msg := range it.messages {
			if best == nil || msg.count > best.count || (msg.count == best.count && msg.first < best.first) {
				best = msg
			}
		}
		out = append(out, model.ErrorSummary{
			Code:    it.code,
			Message: best.text,
			Count:   it.total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Code < out[j].Code
		}
		return out[i].Count > out[j].Count
	})
	if k > len(out) {
		k = len(out)
	}
	return out[:k], nil
}
