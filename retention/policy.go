// Package retention implements the periodic job which purges log entries older than a configured age, and the
// scheduler used to drive it.
package retention

import (
	"fmt"
	"strings"
	"time"
)

const (
	// EventName is the name the retention job is registered under with a 'Scheduler'.
	EventName = "logstore_truncate_logs"

	// DefaultMaxAgeDays is the age, in days, after which entries are purged.
	DefaultMaxAgeDays = 100

	// DefaultFrequency is how often the retention job runs.
	DefaultFrequency = FrequencyDaily

	// DefaultFirstRunDelay is how long after being scheduled the retention job first runs.
	DefaultFirstRunDelay = 24 * time.Hour
)

// Frequency is how often a recurring task runs, either one of the named frequencies or a Go duration string e.g. "6h".
type Frequency string

const (
	FrequencyHourly     Frequency = "hourly"
	FrequencyTwiceDaily Frequency = "twicedaily"
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
)

var namedFrequencies = map[Frequency]time.Duration{
	FrequencyHourly:     time.Hour,
	FrequencyTwiceDaily: 12 * time.Hour,
	FrequencyDaily:      24 * time.Hour,
	FrequencyWeekly:     7 * 24 * time.Hour,
}

// ParseFrequency parses and validates the given frequency.
func ParseFrequency(s string) (Frequency, error) {
	frequency := Frequency(strings.ToLower(strings.TrimSpace(s)))

	_, err := frequency.Duration()
	if err != nil {
		return "", err
	}

	return frequency, nil
}

// Duration returns the interval between runs.
func (f Frequency) Duration() (time.Duration, error) {
	if duration, ok := namedFrequencies[f]; ok {
		return duration, nil
	}

	duration, err := time.ParseDuration(string(f))
	if err != nil {
		return 0, fmt.Errorf("invalid frequency '%s'", f)
	}

	if duration <= 0 {
		return 0, fmt.Errorf("invalid frequency '%s', must be positive", f)
	}

	return duration, nil
}

// Policy controls which entries are purged and when.
type Policy struct {
	// MaxAgeDays is the age in days after which entries are purged, entries aged exactly this many days are kept.
	MaxAgeDays int

	// Frequency is how often the job runs.
	Frequency Frequency

	// FirstRun is when the job first runs, when zero the job first runs 'DefaultFirstRunDelay' after being scheduled.
	FirstRun time.Time
}

// DefaultPolicy returns the default retention policy.
func DefaultPolicy() Policy {
	return Policy{MaxAgeDays: DefaultMaxAgeDays, Frequency: DefaultFrequency}
}

// Validate returns an error if the policy can't be used to build a job.
func (p Policy) Validate() error {
	if p.MaxAgeDays <= 0 {
		return fmt.Errorf("invalid max age of %d days, must be positive", p.MaxAgeDays)
	}

	_, err := p.Frequency.Duration()

	return err
}

// MaxAge returns the maximum age of an entry as a duration.
func (p Policy) MaxAge() time.Duration {
	return time.Duration(p.MaxAgeDays) * 24 * time.Hour
}
