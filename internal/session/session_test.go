package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/oradash/internal/enrich"
	"github.com/verte-zerg/oradash/internal/extract"
	"github.com/verte-zerg/oradash/internal/model"
	"github.com/verte-zerg/oradash/internal/rotation"
	"github.com/verte-zerg/oradash/internal/stats"
)

const sampleLog = `2024-01-05 10:00:00 foo ORA-00942: table or view does not exist
2024-01-05 10:05:00 bar ORA-00942: table or view does not exist
garbage not a log line
2024-02-01 09:00:00 baz ORA-01017: invalid username/password
`

var start = time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC)

func testConfig() model.Config {
	return model.Config{
		RotationPeriod: 30 * time.Second,
		TickInterval:   300 * time.Millisecond,
		TopK:           10,
	}
}

func newTestContext(opts ...Option) *Context {
	opts = append([]Option{WithToday(model.DateOf)}, opts...)
	return New(testConfig(), opts...)
}

func TestTickIdleWithoutUpload(t *testing.T) {
	c := newTestContext()
	in := c.Tick(start)
	if in.Phase != rotation.Idle || in.Notice == "" {
		t.Fatalf("expected idle instruction with notice, got %+v", in)
	}
}

func TestTickParsesOnceAndRenders(t *testing.T) {
	loads := 0
	c := newTestContext(WithLoadHook(func(LoadResult) { loads++ }))
	c.SetUpload(Upload{Name: "alert.log", Content: sampleLog})

	in := c.Tick(start)
	if in.Phase != rotation.Displaying || in.Index != 0 {
		t.Fatalf("unexpected instruction: %+v", in)
	}
	if in.Events != 3 {
		t.Fatalf("expected 3 events, got %d", in.Events)
	}
	if in.Remaining != 30*time.Second || in.Total != 30*time.Second {
		t.Fatalf("unexpected timer: %v/%v", in.Remaining, in.Total)
	}
	if want := (model.Date{Year: 2024, Month: time.January, Day: 11}); in.Cutoff != want {
		t.Fatalf("expected cutoff %v, got %v", want, in.Cutoff)
	}
	// Only the February event is within 30 days of Feb 10.
	if len(in.Buckets) != 1 || in.Buckets[0].Key != "2024-02-01" {
		t.Fatalf("unexpected recent buckets: %+v", in.Buckets)
	}

	c.Tick(start.Add(time.Second))
	c.Tick(start.Add(2 * time.Second))
	if loads != 1 {
		t.Fatalf("expected a single parse, got %d", loads)
	}
}

func TestTickRotatesThroughAllViews(t *testing.T) {
	c := newTestContext()
	c.SetUpload(Upload{Name: "alert.log", Content: sampleLog})
	now := start
	c.Tick(now)
	seen := map[int]bool{0: true}
	for i := 0; i < 10; i++ {
		now = now.Add(30 * time.Second)
		in := c.Tick(now)
		if !in.Advanced {
			t.Fatalf("step %d: expected advance", i)
		}
		seen[in.Index] = true
		if in.Err != nil {
			t.Fatalf("step %d (view %d): unexpected error %v", i, in.Index, in.Err)
		}
		if in.View.Kind == model.KindTable && len(in.Rows) == 0 {
			t.Fatalf("view %d: expected table rows", in.Index)
		}
	}
	if len(seen) != 10 {
		t.Fatalf("expected all views visited, got %v", seen)
	}
	if in := c.Tick(now); in.Index != 0 {
		t.Fatalf("expected cycle to close at view 0, got %d", in.Index)
	}
}

func TestRenderMatchesSampleAggregates(t *testing.T) {
	c := newTestContext()
	c.SetUpload(Upload{Name: "alert.log", Content: sampleLog})

	in := c.Render(7, start)
	if len(in.Buckets) != 2 || in.Buckets[0].Count+in.Buckets[1].Count != 3 {
		t.Fatalf("unexpected code buckets: %+v", in.Buckets)
	}
	in = c.Render(5, start)
	if len(in.Buckets) != 2 || in.Buckets[0].Key != "Jan" || in.Buckets[1].Key != "Fev" {
		t.Fatalf("unexpected month buckets: %+v", in.Buckets)
	}
	in = c.Render(9, start)
	if in.Heading != "10. Top 10 Historical Errors" {
		t.Fatalf("unexpected heading %q", in.Heading)
	}
	if len(in.Rows) != 2 || in.Rows[0].Code != "ORA-00942" || in.Rows[0].Count != 2 {
		t.Fatalf("unexpected rows: %+v", in.Rows)
	}
}

func TestEmptyRecentWindowIsNotice(t *testing.T) {
	c := newTestContext()
	c.SetUpload(Upload{Name: "alert.log", Content: sampleLog})
	in := c.Render(0, start.AddDate(1, 0, 0))
	if !errors.Is(in.Err, stats.ErrEmptyGroup) {
		t.Fatalf("expected ErrEmptyGroup, got %v", in.Err)
	}
	if !strings.Contains(in.Notice, "30 days") {
		t.Fatalf("unexpected notice %q", in.Notice)
	}
}

func TestMalformedUploadFailsEveryTick(t *testing.T) {
	loads := 0
	c := newTestContext(WithLoadHook(func(LoadResult) { loads++ }))
	c.SetUpload(Upload{Name: "bad.log", Content: "2024-13-01 00:00:00 ORA-00001: bad month\n"})
	for i := 0; i < 3; i++ {
		in := c.Tick(start.Add(time.Duration(i) * time.Second))
		var mErr *extract.MalformedLogError
		if !errors.As(in.Err, &mErr) {
			t.Fatalf("tick %d: expected MalformedLogError, got %v", i, in.Err)
		}
		if in.Phase != rotation.Idle || in.HasData() {
			t.Fatalf("tick %d: expected idle without data", i)
		}
	}
	if loads != 1 {
		t.Fatalf("expected failure to be cached, parsed %d times", loads)
	}

	c.SetUpload(Upload{Name: "good.log", Content: sampleLog})
	if in := c.Tick(start); in.Err != nil || in.Phase != rotation.Displaying {
		t.Fatalf("expected replacement upload to load: %+v", in)
	}
}

func TestUploadWithoutEventsReportsNoData(t *testing.T) {
	c := newTestContext()
	c.SetUpload(Upload{Name: "empty.log", Content: "nothing here\n"})
	in := c.Tick(start)
	if !errors.Is(in.Err, enrich.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", in.Err)
	}
	res, ok := c.LastLoad()
	if !ok || res.Stats.SkippedLines != 2 {
		t.Fatalf("unexpected load result: %+v", res)
	}
}

func TestNewUploadRestartsRotation(t *testing.T) {
	c := newTestContext()
	c.SetUpload(Upload{Name: "a.log", Content: sampleLog})
	c.Tick(start)
	c.Tick(start.Add(30 * time.Second))
	c.SetUpload(Upload{Name: "b.log", Content: sampleLog})
	in := c.Tick(start.Add(31 * time.Second))
	if in.Index != 0 || in.Source != "b.log" {
		t.Fatalf("expected rotation restart on new upload: %+v", in)
	}
}

func TestManualNavigation(t *testing.T) {
	c := newTestContext()
	c.SetUpload(Upload{Name: "a.log", Content: sampleLog})
	c.Tick(start)
	c.Prev(start.Add(time.Second))
	if in := c.Tick(start.Add(2 * time.Second)); in.Index != 9 || in.Remaining != 29*time.Second {
		t.Fatalf("unexpected instruction after prev: index=%d remaining=%v", in.Index, in.Remaining)
	}
}
