package retention

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/couchbase/tools-logstore/types/timeprovider"
)

func TestTickerSchedulerRegisterInvalid(t *testing.T) {
	scheduler := NewTickerScheduler(timeprovider.NewFakeTimeProvider(testNow), nil)
	defer scheduler.Stop()

	task := func(_ ...any) {}

	require.Error(t, scheduler.RegisterRecurringTask("", task, testNow, time.Hour))
	require.Error(t, scheduler.RegisterRecurringTask("event", nil, testNow, time.Hour))
	require.Error(t, scheduler.RegisterRecurringTask("event", task, testNow, 0))
	require.False(t, scheduler.Scheduled("event"))
}

func TestTickerSchedulerRunsAtFirstRunThenEveryFrequency(t *testing.T) {
	var (
		clock     = timeprovider.NewFakeTimeProvider(testNow)
		scheduler = NewTickerScheduler(clock, nil)
		runs      atomic.Int64
		received  atomic.Value
	)

	defer scheduler.Stop()

	task := func(args ...any) {
		received.Store(args)
		runs.Add(1)
	}

	err := scheduler.RegisterRecurringTask("event", task, testNow.Add(time.Hour), day, "arg")
	require.NoError(t, err)
	require.True(t, scheduler.Scheduled("event"))

	clock.AdvanceTimeBy(30 * time.Minute)
	require.Zero(t, runs.Load())

	clock.AdvanceTimeBy(30 * time.Minute)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
	require.Equal(t, []any{"arg"}, received.Load())

	clock.AdvanceTimeBy(day - time.Minute)
	require.Equal(t, int64(1), runs.Load())

	clock.AdvanceTimeBy(time.Minute)
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
}

func TestTickerSchedulerFirstRunInPast(t *testing.T) {
	var (
		clock     = timeprovider.NewFakeTimeProvider(testNow)
		scheduler = NewTickerScheduler(clock, nil)
		runs      atomic.Int64
	)

	defer scheduler.Stop()

	err := scheduler.RegisterRecurringTask("event", func(_ ...any) { runs.Add(1) }, testNow.Add(-time.Hour), day)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)

	clock.AdvanceTimeBy(day)
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
}

func TestTickerSchedulerDuplicateIsNoop(t *testing.T) {
	var (
		clock     = timeprovider.NewFakeTimeProvider(testNow)
		scheduler = NewTickerScheduler(clock, nil)
		task      = func(_ ...any) {}
	)

	defer scheduler.Stop()

	require.NoError(t, scheduler.RegisterRecurringTask("event", task, testNow.Add(day), day))
	require.NoError(t, scheduler.RegisterRecurringTask("event", task, testNow.Add(time.Hour), time.Hour))
	require.Len(t, clock.Tickers(), 1)
}

func TestTickerSchedulerSurvivesPanic(t *testing.T) {
	var (
		clock     = timeprovider.NewFakeTimeProvider(testNow)
		scheduler = NewTickerScheduler(clock, nil)
		runs      atomic.Int64
	)

	defer scheduler.Stop()

	task := func(_ ...any) {
		if runs.Add(1) == 1 {
			panic("first run")
		}
	}

	require.NoError(t, scheduler.RegisterRecurringTask("event", task, testNow.Add(-time.Second), time.Hour))
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)

	clock.AdvanceTimeBy(time.Hour)
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
}

func TestTickerSchedulerStop(t *testing.T) {
	var (
		clock     = timeprovider.NewFakeTimeProvider(testNow)
		scheduler = NewTickerScheduler(clock, nil)
		task      = func(_ ...any) {}
	)

	require.NoError(t, scheduler.RegisterRecurringTask("event", task, testNow.Add(day), day))

	scheduler.Stop()
	scheduler.Stop()

	for _, ticker := range clock.Tickers() {
		require.False(t, ticker.Running())
	}

	require.ErrorIs(t, scheduler.RegisterRecurringTask("other", task, testNow.Add(day), day), ErrSchedulerStopped)
}

// gatedTicker holds back its channel until the gate is closed, allowing a tick to be pending when the scheduler stops.
type gatedTicker struct {
	gate   chan struct{}
	ticks  chan time.Time
	starts atomic.Int64
}

func (g *gatedTicker) Start(_ time.Duration) { g.starts.Add(1) }

func (g *gatedTicker) Channel() <-chan time.Time {
	<-g.gate
	return g.ticks
}

func (g *gatedTicker) Stop() {}

type gatedTimeProvider struct {
	ticker *gatedTicker
}

func (g gatedTimeProvider) Now() time.Time { return testNow }

func (g gatedTimeProvider) Ticker() timeprovider.Ticker { return g.ticker }

func TestTickerSchedulerStopWithPendingTick(t *testing.T) {
	for i := 0; i < 20; i++ {
		var (
			ticker    = &gatedTicker{gate: make(chan struct{}), ticks: make(chan time.Time, 1)}
			scheduler = NewTickerScheduler(gatedTimeProvider{ticker: ticker}, nil)
			runs      atomic.Int64
		)

		ticker.ticks <- testNow

		err := scheduler.RegisterRecurringTask("event", func(_ ...any) { runs.Add(1) }, testNow.Add(day), day)
		require.NoError(t, err)

		done := scheduler.tasks["event"].done

		stopped := make(chan struct{})

		go func() {
			scheduler.Stop()
			close(stopped)
		}()

		require.Eventually(t, func() bool {
			select {
			case <-done:
				return true
			default:
				return false
			}
		}, time.Second, time.Millisecond)

		close(ticker.gate)
		<-stopped

		require.Equal(t, int64(1), ticker.starts.Load())
		require.Zero(t, runs.Load())
	}
}

func TestTickerSchedulerDrivesJob(t *testing.T) {
	var (
		clock     = timeprovider.NewFakeTimeProvider(testNow)
		tbl       = newTestTable(t, clock)
		scheduler = NewTickerScheduler(clock, nil)
	)

	defer scheduler.Stop()

	logAt(t, tbl, testNow.Add(-99*day), "expires after two days")
	logAt(t, tbl, testNow, "recent")

	job, err := NewJob(tbl, DefaultPolicy(), JobOptions{TimeProvider: clock})
	require.NoError(t, err)
	require.NoError(t, job.Schedule(scheduler))

	// The first run is a day after scheduling, the entry is exactly 100 days old so it's kept
	clock.AdvanceTimeBy(day)
	require.Never(t, func() bool { return len(readMessages(t, tbl)) != 2 }, 50*time.Millisecond, 5*time.Millisecond)

	clock.AdvanceTimeBy(day)
	require.Eventually(t, func() bool { return len(readMessages(t, tbl)) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, []string{"recent"}, readMessages(t, tbl))
}
