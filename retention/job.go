package retention

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/couchbase/tools-logstore/core/log"
	"github.com/couchbase/tools-logstore/table"
	"github.com/couchbase/tools-logstore/types/timeprovider"
)

// JobOptions encapsulates the options available when creating a 'Job'.
type JobOptions struct {
	// Reporters are notified with the result of every run.
	Reporters []Reporter

	// Logger is the host's operational logger.
	Logger log.Logger

	// TimeProvider is used to timestamp runs and compute the first run, defaults to the current time.
	TimeProvider timeprovider.TimeProvider

	// LockPath, when set, is a file locked for the duration of each run so that only one process sharing the table
	// purges it at a time.
	LockPath string

	// Args are passed to the scheduler when the job is registered.
	Args []any
}

// Job purges entries older than the policy's maximum age from a table.
//
// NOTE: Failures are reported but never retried, the next firing acts as the retry.
type Job struct {
	table     table.Table
	policy    Policy
	frequency time.Duration
	reporters []Reporter
	clock     timeprovider.TimeProvider
	logger    log.WrappedLogger
	lock      *flock.Flock
	args      []any
	running   atomic.Bool
}

// NewJob returns a new job purging the given table according to the given policy.
func NewJob(tbl table.Table, policy Policy, options JobOptions) (*Job, error) {
	if tbl == nil {
		return nil, table.ErrStorageUnavailable
	}

	err := policy.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid retention policy: %w", err)
	}

	frequency, _ := policy.Frequency.Duration()

	if options.TimeProvider == nil {
		options.TimeProvider = timeprovider.CurrentTimeProvider{}
	}

	job := &Job{
		table:     tbl,
		policy:    policy,
		frequency: frequency,
		reporters: options.Reporters,
		clock:     options.TimeProvider,
		logger:    log.NewWrappedLogger(options.Logger),
		args:      options.Args,
	}

	if options.LockPath != "" {
		job.lock = flock.New(options.LockPath)
	}

	return job, nil
}

// Policy returns the policy the job enforces.
func (j *Job) Policy() Policy {
	return j.policy
}

// Run purges every entry strictly older than the maximum age. Running is idempotent, a second run with no time passing
// deletes nothing.
func (j *Job) Run() Result {
	result := j.run()

	for _, reporter := range j.reporters {
		reporter.Report(result)
	}

	return result
}

func (j *Job) run() Result {
	result := Result{RunID: uuid.New(), Started: j.clock.Now()}

	if !j.running.CompareAndSwap(false, true) {
		result.Skipped = true
		result.Finished = j.clock.Now()

		return result
	}

	defer j.running.Store(false)

	if j.lock != nil {
		locked, err := j.lock.TryLock()
		if err != nil {
			result.Err = fmt.Errorf("failed to lock '%s': %w", j.lock.Path(), err)
			result.Finished = j.clock.Now()

			return result
		}

		if !locked {
			result.Skipped = true
			result.Finished = j.clock.Now()

			return result
		}

		defer j.unlock()
	}

	j.logger.Debugf("(Retention) Purging entries older than %d days", j.policy.MaxAgeDays)

	result.Deleted, result.Err = j.table.DeleteWhere(table.Where{OlderThan: j.policy.MaxAge()})
	result.Finished = j.clock.Now()

	return result
}

func (j *Job) unlock() {
	err := j.lock.Unlock()
	if err != nil {
		j.logger.Warnf("(Retention) Failed to unlock '%s': %v", j.lock.Path(), err)
	}
}

// Schedule registers the job with the given scheduler under 'EventName'.
func (j *Job) Schedule(scheduler Scheduler) error {
	firstRun := j.policy.FirstRun
	if firstRun.IsZero() {
		firstRun = j.clock.Now().Add(DefaultFirstRunDelay)
	}

	err := scheduler.RegisterRecurringTask(EventName, func(_ ...any) { j.Run() }, firstRun, j.frequency, j.args...)
	if err != nil {
		return fmt.Errorf("failed to schedule retention: %w", err)
	}

	return nil
}
