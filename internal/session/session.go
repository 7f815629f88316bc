// Package session holds the per-session dashboard state and produces one
// render instruction per tick.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/verte-zerg/oradash/internal/enrich"
	"github.com/verte-zerg/oradash/internal/extract"
	"github.com/verte-zerg/oradash/internal/model"
	"github.com/verte-zerg/oradash/internal/rotation"
	"github.com/verte-zerg/oradash/internal/stats"
	"github.com/verte-zerg/oradash/internal/views"
)

// Upload is the raw content of a log file handed to the session.
type Upload struct {
	Name    string
	Content string
}

// Instruction is everything the renderer needs for one tick.
type Instruction struct {
	Phase     rotation.Phase
	Index     int
	View      model.ViewDefinition
	Heading   string
	Buckets   []model.Bucket
	Rows      []model.ErrorSummary
	Remaining time.Duration
	Total     time.Duration
	Advanced  bool
	Source    string
	Events    int
	Cutoff    model.Date
	Notice    string
	Err       error
}

// HasData reports whether the instruction carries an aggregated result.
func (in Instruction) HasData() bool {
	return len(in.Buckets) > 0 || len(in.Rows) > 0
}

// LoadResult describes the outcome of parsing an upload.
type LoadResult struct {
	Source string
	Stats  extract.Stats
	Err    error
}

// Context is the state of one dashboard session.
type Context struct {
	cfg   model.Config
	sched *rotation.Scheduler
	today func(time.Time) model.Date

	upload   *Upload
	parsed   bool
	loadErr  error
	dataset  []model.EnrichedEvent
	cutoff   model.Date
	lastLoad *LoadResult
	onLoad   func(LoadResult)
}

// Option customizes a Context.
type Option func(*Context)

// WithLoadHook registers fn to be called after every parse attempt.
func WithLoadHook(fn func(LoadResult)) Option {
	return func(c *Context) {
		c.onLoad = fn
	}
}

// WithToday overrides how the load day is derived from the current time.
func WithToday(fn func(time.Time) model.Date) Option {
	return func(c *Context) {
		c.today = fn
	}
}

// New creates an idle session.
func New(cfg model.Config, opts ...Option) *Context {
	c := &Context{
		cfg:   cfg,
		sched: rotation.New(cfg.RotationPeriod, views.Len()),
		today: func(now time.Time) model.Date {
			return model.DateOf(now.Local())
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the session configuration.
func (c *Context) Config() model.Config {
	return c.cfg
}

// SetUpload replaces the current upload. The dataset is rebuilt on the next tick.
func (c *Context) SetUpload(u Upload) {
	c.upload = &u
	c.parsed = false
	c.loadErr = nil
	c.dataset = nil
	c.cutoff = model.Date{}
	c.lastLoad = nil
	c.sched.Stop()
}

// Dataset returns the parsed events, or nil when nothing is loaded.
func (c *Context) Dataset() []model.EnrichedEvent {
	return c.dataset
}

// Cutoff returns the first day counted as recent.
func (c *Context) Cutoff() model.Date {
	return c.cutoff
}

// LastLoad returns the outcome of the most recent parse, if any.
func (c *Context) LastLoad() (LoadResult, bool) {
	if c.lastLoad == nil {
		return LoadResult{}, false
	}
	return *c.lastLoad, true
}

// Next moves to the following view immediately.
func (c *Context) Next(now time.Time) {
	c.sched.Next(now)
}

// Prev moves to the previous view immediately.
func (c *Context) Prev(now time.Time) {
	c.sched.Prev(now)
}

// Tick parses the upload if needed, advances rotation and aggregates the current view.
func (c *Context) Tick(now time.Time) Instruction {
	if c.upload == nil {
		return Instruction{Phase: rotation.Idle, Total: c.cfg.RotationPeriod, Notice: "Load a log file to begin."}
	}
	if err := c.ensureDataset(now); err != nil {
		return c.failure(err)
	}
	st := c.sched.Tick(now)
	in := c.render(st.Index)
	in.Phase = st.Phase
	in.Remaining = st.Remaining
	in.Advanced = st.Advanced
	return in
}

// Render builds the instruction for view index without touching rotation.
func (c *Context) Render(index int, now time.Time) Instruction {
	if c.upload == nil {
		return Instruction{Phase: rotation.Idle, Total: c.cfg.RotationPeriod, Notice: "Load a log file to begin."}
	}
	if err := c.ensureDataset(now); err != nil {
		return c.failure(err)
	}
	in := c.render(index)
	in.Phase = c.sched.Phase()
	in.Remaining = c.sched.Remaining(now)
	return in
}

func (c *Context) ensureDataset(now time.Time) error {
	if c.parsed {
		return c.loadErr
	}
	c.parsed = true
	events, st, err := extract.ExtractWithStats(c.upload.Content)
	if err == nil {
		c.dataset, err = enrich.Enrich(events)
	}
	c.loadErr = err
	result := LoadResult{Source: c.upload.Name, Stats: st, Err: err}
	c.lastLoad = &result
	if c.onLoad != nil {
		c.onLoad(result)
	}
	if err != nil {
		c.dataset = nil
		slog.Warn("log load failed", "source", c.upload.Name, "err", err)
		return err
	}
	c.cutoff = c.today(now).AddDays(-views.RecentWindowDays)
	c.sched.Start(now)
	slog.Info("log loaded",
		"source", c.upload.Name,
		"events", st.Events,
		"lines", st.TotalLines,
		"skipped", st.SkippedLines,
		"cutoff", c.cutoff.String())
	return nil
}

func (c *Context) render(index int) Instruction {
	in := Instruction{
		Index:  index,
		Total:  c.cfg.RotationPeriod,
		Source: c.upload.Name,
		Events: len(c.dataset),
		Cutoff: c.cutoff,
	}
	def, err := views.Get(index)
	if err != nil {
		in.Err = err
		in.Notice = err.Error()
		return in
	}
	in.View = def
	in.Heading = views.Heading(def, c.cfg.TopK)

	filtered := stats.Filter(c.dataset, def.Filter, c.cutoff)
	switch def.Kind {
	case model.KindTable:
		in.Rows, err = stats.TopErrors(filtered, c.cfg.TopK)
	default:
		in.Buckets, err = stats.Aggregate(filtered, def.Dimension)
	}
	if err != nil {
		in.Err = err
		in.Notice = noticeFor(err, def)
	}
	return in
}

func (c *Context) failure(err error) Instruction {
	return Instruction{
		Phase:  rotation.Idle,
		Total:  c.cfg.RotationPeriod,
		Source: c.upload.Name,
		Err:    err,
		Notice: noticeFor(err, model.ViewDefinition{}),
	}
}

func noticeFor(err error, def model.ViewDefinition) string {
	var malformed *extract.MalformedLogError
	var dimErr *stats.UnrecognizedDimensionError
	switch {
	case errors.As(err, &malformed):
		return fmt.Sprintf("Parsing failed at line %d: %v", malformed.Line, malformed.Err)
	case errors.Is(err, enrich.ErrEmptyInput):
		return "No error events found in this log."
	case errors.Is(err, stats.ErrEmptyGroup):
		if def.Filter == model.FilterRecent {
			return fmt.Sprintf("No errors in the last %d days.", views.RecentWindowDays)
		}
		return "No errors to display."
	case errors.As(err, &dimErr):
		return fmt.Sprintf("Rendering failed: %v", dimErr)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
