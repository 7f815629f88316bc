package stats

import (
	"errors"
	"testing"
)

func TestTopErrorsSample(t *testing.T) {
	events := sampleEvents()
	top, err := TopErrors(events, 1)
	if err != nil {
		t.Fatalf("top errors: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("expected 1 row, got %d", len(top))
	}
	if top[0].Code != "ORA-00942" || top[0].Count != 2 || top[0].Message != "table or view does not exist" {
		t.Fatalf("unexpected row: %+v", top[0])
	}
}

func TestTopErrorsModeTieBreaksOnFirstSeen(t *testing.T) {
	events := []struct{ code, msg string }{
		{"ORA-00001", "first"},
		{"ORA-00001", "second"},
		{"ORA-00001", "second"},
		{"ORA-00001", "first"},
		{"ORA-00002", "only"},
	}
	data := make([]testEvent, 0, len(events))
	for _, e := range events {
		data = append(data, testEvent{day: "2024-01-01", code: e.code, msg: e.msg})
	}
	top, err := TopErrors(buildEvents(t, data), 5)
	if err != nil {
		t.Fatalf("top errors: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(top))
	}
	if top[0].Message != "first" {
		t.Fatalf("expected first-seen message on tie, got %q", top[0].Message)
	}
}

func TestTopErrorsBoundary(t *testing.T) {
	events := sampleEvents()
	for k := 1; k <= 4; k++ {
		top, err := TopErrors(events, k)
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		want := k
		if want > 2 {
			want = 2
		}
		if len(top) != want {
			t.Fatalf("k=%d: expected %d rows, got %d", k, want, len(top))
		}
		for i := 1; i < len(top); i++ {
			if top[i].Count > top[i-1].Count {
				t.Fatalf("k=%d: counts increase at %d: %+v", k, i, top)
			}
		}
	}
}

func TestTopErrorsRejectsBadInput(t *testing.T) {
	if _, err := TopErrors(nil, 3); !errors.Is(err, ErrEmptyGroup) {
		t.Fatalf("expected ErrEmptyGroup, got %v", err)
	}
	if _, err := TopErrors(sampleEvents(), 0); err == nil {
		t.Fatalf("expected error for k=0")
	}
}
