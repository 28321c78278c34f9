package logstore

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchbase/tools-logstore/core/log"
)

// DefaultFailureInterval is the minimum interval between write failures being reported to the host's logger.
const DefaultFailureInterval = time.Minute

// fallback reports failures to write log entries to the host's operational logger. Reports are rate limited so that a
// dead backend doesn't flood the host log, failures which aren't reported are counted and summarized in the next report.
type fallback struct {
	logger     log.WrappedLogger
	limiter    *rate.Limiter
	suppressed atomic.Int64
}

func newFallback(logger log.Logger, interval time.Duration) *fallback {
	if interval <= 0 {
		interval = DefaultFailureInterval
	}

	return &fallback{
		logger:  log.NewWrappedLogger(logger),
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (f *fallback) report(err error) {
	if !f.limiter.Allow() {
		f.suppressed.Add(1)
		return
	}

	suppressed := f.suppressed.Swap(0)
	if suppressed == 0 {
		f.logger.Warnf("(Log Store) Failed to write log entry: %v", err)
		return
	}

	f.logger.Warnf("(Log Store) Failed to write log entry: %v (%d similar failures suppressed)", err, suppressed)
}
