package timeprovider

import "time"

// TimeProvider is the source of "now" and of tickers for everything which depends on wall clock time; entry dates,
// retention cutoffs and the retention scheduler. Tests supply a 'FakeTimeProvider'.
type TimeProvider interface {
	Now() time.Time
	Ticker() Ticker
}

type CurrentTimeProvider struct{}

var _ TimeProvider = (*CurrentTimeProvider)(nil)

func (tp CurrentTimeProvider) Now() time.Time {
	return time.Now()
}

func (tp CurrentTimeProvider) Ticker() Ticker {
	return NewRealTicker()
}
