package retention

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"

	"github.com/couchbase/tools-logstore/core/log"
)

// Reporter is notified with the result of every retention run.
type Reporter interface {
	Report(result Result)
}

// LogReporter reports results to the host's operational logger.
type LogReporter struct {
	logger log.WrappedLogger
}

var _ Reporter = (*LogReporter)(nil)

// NewLogReporter returns a reporter which logs results to the given logger.
func NewLogReporter(logger log.Logger) *LogReporter {
	return &LogReporter{logger: log.NewWrappedLogger(logger)}
}

func (l *LogReporter) Report(result Result) {
	switch {
	case result.Err != nil:
		l.logger.Errorf("(Retention) Run %s failed after %s: %v", result.RunID, result.Duration(), result.Err)
	case result.Skipped:
		l.logger.Infof("(Retention) Run %s skipped, another run is in progress", result.RunID)
	default:
		l.logger.Infof("(Retention) Run %s purged %d entries in %s", result.RunID, result.Deleted, result.Duration())
	}
}

// Publisher publishes a message to a subject, satisfied by '*nats.Conn'.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// NATSReporter publishes JSON encoded results to a NATS subject so that other processes can observe retention.
type NATSReporter struct {
	publisher Publisher
	subject   string
	logger    log.WrappedLogger
}

var _ Reporter = (*NATSReporter)(nil)

// NewNATSReporter returns a reporter which publishes results to the given subject, publish failures are logged to the
// given logger.
func NewNATSReporter(publisher Publisher, subject string, logger log.Logger) *NATSReporter {
	return &NATSReporter{publisher: publisher, subject: subject, logger: log.NewWrappedLogger(logger)}
}

func (n *NATSReporter) Report(result Result) {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(result)
	if err != nil {
		n.logger.Warnf("(Retention) Failed to encode result of run %s: %v", result.RunID, err)
		return
	}

	err = n.publisher.Publish(n.subject, data)
	if err != nil {
		n.logger.Warnf("(Retention) Failed to publish result of run %s to '%s': %v", result.RunID, n.subject, err)
	}
}
