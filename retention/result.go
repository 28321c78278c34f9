package retention

import (
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// Result describes a single run of the retention job.
type Result struct {
	// RunID uniquely identifies the run, allowing reports to be correlated.
	RunID uuid.UUID

	Started  time.Time
	Finished time.Time

	// Deleted is the number of entries purged.
	Deleted int64

	// Skipped indicates that the run didn't purge anything because another run held the lock.
	Skipped bool

	// Err is the reason the run failed, failures are reported but never escalated.
	Err error
}

// Duration returns how long the run took.
func (r Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

type resultJSON struct {
	RunID    uuid.UUID `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Deleted  int64     `json:"deleted"`
	Skipped  bool      `json:"skipped,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// MarshalJSON implements 'json.Marshaler', the error is encoded as its message.
func (r Result) MarshalJSON() ([]byte, error) {
	encoded := resultJSON{
		RunID:    r.RunID,
		Started:  r.Started,
		Finished: r.Finished,
		Deleted:  r.Deleted,
		Skipped:  r.Skipped,
	}

	if r.Err != nil {
		encoded.Error = r.Err.Error()
	}

	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(encoded)
}
