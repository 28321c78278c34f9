package retention

//go:generate mockery --all --case underscore --inpackage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/couchbase/tools-logstore/core/log"
	"github.com/couchbase/tools-logstore/types/timeprovider"
)

// ErrSchedulerStopped is returned when registering a task with a scheduler which has been stopped.
var ErrSchedulerStopped = errors.New("scheduler has been stopped")

// TaskFunc is a recurring task, it's run with the arguments it was registered with.
type TaskFunc func(args ...any)

// Scheduler runs recurring tasks.
type Scheduler interface {
	// RegisterRecurringTask runs the given task at 'firstRun' then every 'frequency'. Registering an event which is
	// already scheduled is a no-op.
	RegisterRecurringTask(event string, task TaskFunc, firstRun time.Time, frequency time.Duration, args ...any) error
}

// TickerScheduler is a 'Scheduler' which runs each task in its own goroutine, driven by a ticker. Each firing of a task
// runs to completion before the next is considered.
type TickerScheduler struct {
	clock  timeprovider.TimeProvider
	logger log.WrappedLogger

	lock    sync.Mutex
	tasks   map[string]*scheduledTask
	stopped bool
	wg      sync.WaitGroup
}

type scheduledTask struct {
	ticker timeprovider.Ticker
	done   chan struct{}
}

var _ Scheduler = (*TickerScheduler)(nil)

// NewTickerScheduler returns a new scheduler, a <nil> time provider uses the current time.
func NewTickerScheduler(clock timeprovider.TimeProvider, logger log.Logger) *TickerScheduler {
	if clock == nil {
		clock = timeprovider.CurrentTimeProvider{}
	}

	return &TickerScheduler{
		clock:  clock,
		logger: log.NewWrappedLogger(logger),
		tasks:  make(map[string]*scheduledTask),
	}
}

// RegisterRecurringTask implements the 'Scheduler' interface. A first run in the past runs the task immediately.
func (t *TickerScheduler) RegisterRecurringTask(
	event string, task TaskFunc, firstRun time.Time, frequency time.Duration, args ...any,
) error {
	if event == "" {
		return errors.New("event name is required")
	}

	if task == nil {
		return fmt.Errorf("no task provided for event '%s'", event)
	}

	if frequency <= 0 {
		return fmt.Errorf("invalid frequency %s for event '%s'", frequency, event)
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.stopped {
		return ErrSchedulerStopped
	}

	if _, ok := t.tasks[event]; ok {
		t.logger.Debugf("(Scheduler) Event '%s' is already scheduled", event)
		return nil
	}

	var (
		scheduled = &scheduledTask{ticker: t.clock.Ticker(), done: make(chan struct{})}
		delay     = firstRun.Sub(t.clock.Now())
		immediate = delay <= 0
	)

	// The ticker is started before the goroutine, so time advancing after we return is always observed
	if immediate {
		scheduled.ticker.Start(frequency)
	} else {
		scheduled.ticker.Start(delay)
	}

	t.tasks[event] = scheduled

	t.wg.Add(1)

	go t.run(event, scheduled, task, immediate, frequency, args)

	t.logger.Infof("(Scheduler) Scheduled event '%s' to first run at %s and then every %s", event,
		firstRun.Format(time.RFC3339), frequency)

	return nil
}

func (t *TickerScheduler) run(
	event string, scheduled *scheduledTask, task TaskFunc, immediate bool, frequency time.Duration, args []any,
) {
	defer t.wg.Done()

	if immediate {
		t.fire(event, task, args)
	}

	for {
		select {
		case <-scheduled.done:
			return
		case <-scheduled.ticker.Channel():
			// A tick may still be pending when the scheduler is stopped, the ticker must not be re-armed
			select {
			case <-scheduled.done:
				return
			default:
			}

			scheduled.ticker.Start(frequency)
			t.fire(event, task, args)
		}
	}
}

// fire runs a single firing of the task, a panicking task doesn't stop future firings.
func (t *TickerScheduler) fire(event string, task TaskFunc, args []any) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Errorf("(Scheduler) Task for event '%s' panicked: %v", event, r)
		}
	}()

	task(args...)
}

// Scheduled returns a boolean indicating whether the given event has been registered.
func (t *TickerScheduler) Scheduled(event string) bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	_, ok := t.tasks[event]

	return ok
}

// Stop stops every task, waiting for any running task to complete. Stopping is permanent.
func (t *TickerScheduler) Stop() {
	t.lock.Lock()

	if t.stopped {
		t.lock.Unlock()
		return
	}

	t.stopped = true

	for _, scheduled := range t.tasks {
		scheduled.ticker.Stop()
		close(scheduled.done)
	}

	t.lock.Unlock()

	t.wg.Wait()
}
