// Package rotation implements the timed view rotation state machine.
//
// The scheduler never sleeps. The caller supplies the current time on every
// call and decides how often to call; the scheduler only decides whether an
// advance is due.
package rotation

import (
	"time"

	"github.com/verte-zerg/oradash/internal/model"
)

// Phase is the scheduler state.
type Phase int

const (
	Idle Phase = iota
	Displaying
)

func (p Phase) String() string {
	if p == Displaying {
		return "displaying"
	}
	return "idle"
}

// Status is the result of a tick.
type Status struct {
	Phase     Phase
	Index     int
	Remaining time.Duration
	Period    time.Duration
	Advanced  bool
}

// Scheduler cycles through count views, spending period on each.
type Scheduler struct {
	period time.Duration
	count  int
	phase  Phase
	state  model.RotationState
}

// New returns an idle scheduler. Count below one is treated as one.
func New(period time.Duration, count int) *Scheduler {
	if count < 1 {
		count = 1
	}
	return &Scheduler{period: period, count: count}
}

// Period returns the configured rotation period.
func (s *Scheduler) Period() time.Duration {
	return s.period
}

// Phase returns the current phase.
func (s *Scheduler) Phase() Phase {
	return s.phase
}

// State returns a copy of the rotation cursor.
func (s *Scheduler) State() model.RotationState {
	return s.state
}

// Start moves an idle scheduler to the first view. It is a no-op once displaying.
func (s *Scheduler) Start(now time.Time) {
	if s.phase == Displaying {
		return
	}
	s.Reset(now)
}

// Reset shows the first view and restarts the countdown.
func (s *Scheduler) Reset(now time.Time) {
	s.phase = Displaying
	s.state = model.RotationState{Index: 0, LastAdvance: now}
}

// Stop returns the scheduler to idle.
func (s *Scheduler) Stop() {
	s.phase = Idle
	s.state = model.RotationState{}
}

// Tick advances to the next view when at least one period has elapsed since
// the last advance. At most one step is taken per call.
func (s *Scheduler) Tick(now time.Time) Status {
	if s.phase == Idle {
		return Status{Phase: Idle, Period: s.period}
	}
	advanced := false
	if now.Sub(s.state.LastAdvance) >= s.period {
		s.state.Index = (s.state.Index + 1) % s.count
		s.state.LastAdvance = now
		advanced = true
	}
	return Status{
		Phase:     Displaying,
		Index:     s.state.Index,
		Remaining: s.Remaining(now),
		Period:    s.period,
		Advanced:  advanced,
	}
}

// Remaining returns the time left on the current view, within [0, period].
func (s *Scheduler) Remaining(now time.Time) time.Duration {
	if s.phase == Idle {
		return 0
	}
	left := s.period - now.Sub(s.state.LastAdvance)
	if left < 0 {
		return 0
	}
	if left > s.period {
		return s.period
	}
	return left
}

// Next jumps to the following view and restarts the countdown.
func (s *Scheduler) Next(now time.Time) {
	s.jump(1, now)
}

// Prev jumps to the previous view and restarts the countdown.
func (s *Scheduler) Prev(now time.Time) {
	s.jump(-1, now)
}

func (s *Scheduler) jump(delta int, now time.Time) {
	if s.phase == Idle {
		return
	}
	s.state.Index = ((s.state.Index+delta)%s.count + s.count) % s.count
	s.state.LastAdvance = now
}
