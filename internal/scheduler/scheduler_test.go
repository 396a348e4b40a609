package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestEveryFiresAfterInterval(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	r := NewRunner(time.UTC, WithClock(clock.Now))

	var runs atomic.Int32
	r.Every("tick", time.Minute, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	r.Sweep(context.Background())
	assert.Equal(t, int32(0), runs.Load())

	clock.Set(clock.Now().Add(61 * time.Second))
	r.Sweep(context.Background())
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)

	// same clock, not due again
	r.Sweep(context.Background())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestDailyFiresOncePerDay(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)}
	r := NewRunner(time.UTC, WithClock(clock.Now))

	var runs atomic.Int32
	r.Daily("summary", "08:45", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	r.Sweep(context.Background())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load(), "before the clock time")

	clock.Set(time.Date(2026, 5, 4, 8, 45, 10, 0, time.UTC))
	r.Sweep(context.Background())
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)

	clock.Set(time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC))
	r.Sweep(context.Background())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "already fired today")

	clock.Set(time.Date(2026, 5, 5, 8, 46, 0, 0, time.UTC))
	r.Sweep(context.Background())
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
}

func TestDailyRegisteredAfterTimeSkipsToday(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)}
	r := NewRunner(time.UTC, WithClock(clock.Now))

	var runs atomic.Int32
	r.Daily("summary", "08:45", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	r.Sweep(context.Background())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load(), "a restart must not replay the missed round")

	clock.Set(time.Date(2026, 5, 5, 8, 45, 0, 0, time.UTC))
	r.Sweep(context.Background())
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
}

func TestWeeklyFiresOnWeekdayOnly(t *testing.T) {
	// 2026-05-04 is a Monday
	clock := &fakeClock{now: time.Date(2026, 5, 4, 19, 0, 0, 0, time.UTC)}
	r := NewRunner(time.UTC, WithClock(clock.Now))

	var runs atomic.Int32
	r.Weekly("report", time.Sunday, "20:00", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	clock.Set(time.Date(2026, 5, 4, 20, 30, 0, 0, time.UTC))
	r.Sweep(context.Background())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load(), "Monday is not report day")

	clock.Set(time.Date(2026, 5, 10, 20, 0, 30, 0, time.UTC)) // Sunday
	r.Sweep(context.Background())
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
}

func TestInFlightJobIsNotStacked(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	r := NewRunner(time.UTC, WithClock(clock.Now))

	release := make(chan struct{})
	var starts atomic.Int32
	r.Every("slow", time.Minute, func(ctx context.Context) error {
		starts.Add(1)
		<-release
		return nil
	})

	clock.Set(clock.Now().Add(2 * time.Minute))
	r.Sweep(context.Background())
	require.Eventually(t, func() bool { return starts.Load() == 1 }, time.Second, time.Millisecond)

	clock.Set(clock.Now().Add(2 * time.Minute))
	r.Sweep(context.Background())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), starts.Load(), "second sweep must skip the running job")

	close(release)
}
