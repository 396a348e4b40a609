// Package scheduler drives the time-based side of the assistant: it fires
// interval jobs (obligation ticks, due reminders, calendar lookahead) and
// local clock-time jobs (morning summary, medication and wellness rounds).
// The runner owns the loop and re-entry guards; the jobs themselves live in
// jobs.go and are plain context functions, testable with a pinned clock.
package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

// resolution is how often the runner re-evaluates what is due. Clock-time
// jobs tolerate firing up to one resolution late.
const resolution = 30 * time.Second

type jobFunc func(ctx context.Context) error

type entry struct {
	name string
	fn   jobFunc

	every    time.Duration // interval jobs
	at       string        // "15:04", clock jobs
	weekday  time.Weekday
	weekly   bool
	lastRun  time.Time
	firedDay string // last local day a clock job fired

	inFlight atomic.Bool
}

type Runner struct {
	mu      sync.Mutex
	entries []*entry
	loc     *time.Location
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(loc *time.Location, opts ...Option) *Runner {
	r := &Runner{
		loc:    loc,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Every registers an interval job. The first run happens one interval after
// Run starts, not immediately.
func (r *Runner) Every(name string, interval time.Duration, fn jobFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, &entry{name: name, fn: fn, every: interval, lastRun: r.now()})
}

// Daily registers a job that fires once per local day at the given "15:04"
// clock time. A time already past at registration counts as done for today,
// so restarts never replay missed rounds.
func (r *Runner) Daily(name, at string, fn jobFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &entry{name: name, fn: fn, at: at}
	if now := r.now().In(r.loc); now.Format("15:04") >= at {
		e.firedDay = now.Format("2006-01-02")
	}
	r.entries = append(r.entries, e)
}

// Weekly registers a job that fires once per week on the given weekday at the
// given clock time.
func (r *Runner) Weekly(name string, weekday time.Weekday, at string, fn jobFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &entry{name: name, fn: fn, at: at, weekday: weekday, weekly: true}
	if now := r.now().In(r.loc); now.Weekday() == weekday && now.Format("15:04") >= at {
		e.firedDay = now.Format("2006-01-02")
	}
	r.entries = append(r.entries, e)
}

// Run evaluates due jobs every resolution until ctx is cancelled. Each due
// job runs in its own goroutine; a job still in flight from the previous
// evaluation is skipped, never stacked.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one evaluation pass at the current clock. Exported so tests can
// step the scheduler without the loop.
func (r *Runner) Sweep(ctx context.Context) {
	now := r.now().In(r.loc)

	r.mu.Lock()
	var due []*entry
	for _, e := range r.entries {
		if r.isDue(e, now) {
			r.markFired(e, now)
			due = append(due, e)
		}
	}
	r.mu.Unlock()

	for _, e := range due {
		if !e.inFlight.CompareAndSwap(false, true) {
			r.logger.WarnContext(ctx, "job still running, skipping", "job", e.name)
			continue
		}
		go func(e *entry) {
			defer e.inFlight.Store(false)
			jobCtx := requestcontext.WithTime(ctx, now)
			if err := e.fn(jobCtx); err != nil {
				r.logger.ErrorContext(jobCtx, "scheduled job failed", "job", e.name, "error", err)
			}
		}(e)
	}
}

func (r *Runner) isDue(e *entry, now time.Time) bool {
	if e.every > 0 {
		return now.Sub(e.lastRun) >= e.every
	}
	if e.weekly && now.Weekday() != e.weekday {
		return false
	}
	day := now.Format("2006-01-02")
	if e.firedDay == day {
		return false
	}
	return now.Format("15:04") >= e.at
}

func (r *Runner) markFired(e *entry, now time.Time) {
	if e.every > 0 {
		e.lastRun = now
		return
	}
	e.firedDay = now.Format("2006-01-02")
}
