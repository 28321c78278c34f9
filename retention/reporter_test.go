package retention

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/couchbase/tools-logstore/core/log"
)

type recordingLogger struct {
	lock     sync.Mutex
	messages []string
}

func (r *recordingLogger) Log(level log.Level, format string, args ...any) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.messages = append(r.messages, fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...)))
}

func testResult() Result {
	return Result{
		RunID:    uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427"),
		Started:  testNow,
		Finished: testNow.Add(time.Second),
		Deleted:  5,
	}
}

func TestLogReporter(t *testing.T) {
	logger := &recordingLogger{}
	reporter := NewLogReporter(logger)

	result := testResult()
	reporter.Report(result)

	result.Skipped = true
	reporter.Report(result)

	result.Skipped = false
	result.Err = assert.AnError
	reporter.Report(result)

	require.Len(t, logger.messages, 3)
	require.Equal(t, "info: (Retention) Run 1b4e28ba-2fa1-11d2-883f-0016d3cca427 purged 5 entries in 1s",
		logger.messages[0])
	require.True(t, strings.HasPrefix(logger.messages[1], "info: "))
	require.Contains(t, logger.messages[1], "skipped")
	require.True(t, strings.HasPrefix(logger.messages[2], "error: "))
	require.Contains(t, logger.messages[2], assert.AnError.Error())
}

func TestResultMarshalJSON(t *testing.T) {
	result := testResult()
	result.Err = assert.AnError

	data, err := jsoniter.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, jsoniter.Unmarshal(data, &decoded))

	require.Equal(t, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", decoded["run_id"])
	require.Equal(t, float64(5), decoded["deleted"])
	require.Equal(t, assert.AnError.Error(), decoded["error"])
	require.NotContains(t, decoded, "skipped")
}

func TestNATSReporter(t *testing.T) {
	publisher := NewMockPublisher(t)

	publisher.On("Publish", "logstore.retention", mock.MatchedBy(func(data []byte) bool {
		var decoded map[string]any
		return jsoniter.Unmarshal(data, &decoded) == nil && decoded["deleted"] == float64(5)
	})).Return(nil).Once()

	NewNATSReporter(publisher, "logstore.retention", nil).Report(testResult())
}

func TestNATSReporterPublishFailure(t *testing.T) {
	var (
		publisher = NewMockPublisher(t)
		logger    = &recordingLogger{}
	)

	publisher.On("Publish", "logstore.retention", mock.Anything).Return(assert.AnError).Once()

	NewNATSReporter(publisher, "logstore.retention", logger).Report(testResult())

	require.Len(t, logger.messages, 1)
	require.Contains(t, logger.messages[0], "Failed to publish")
}
