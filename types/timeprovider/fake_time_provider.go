/**
 * Copyright (C) Couchbase, Inc 2025 - All Rights Reserved
 * Unauthorized copying of this file, via any medium is strictly prohibited
 * Proprietary and confidential
 */

package timeprovider

import (
	"sync"
	"time"
)

// FakeTimeProvider implements 'TimeProvider' and allows the time to be advanced. When this happens and a ticker has
// elapsed it is ticked.
//
// NOTE: Safe for concurrent use, the retention scheduler reads the time from its own goroutines.
type FakeTimeProvider struct {
	lock    sync.RWMutex
	time    time.Time
	tickers []*FakeTicker
}

var _ TimeProvider = &FakeTimeProvider{}

func NewFakeTimeProvider(start time.Time) *FakeTimeProvider {
	return &FakeTimeProvider{time: start, tickers: make([]*FakeTicker, 0)}
}

func (f *FakeTimeProvider) Now() time.Time {
	f.lock.RLock()
	defer f.lock.RUnlock()

	return f.time
}

func (f *FakeTimeProvider) Ticker() Ticker {
	ticker := NewFakeTicker(f)

	f.lock.Lock()
	f.tickers = append(f.tickers, ticker)
	f.lock.Unlock()

	return ticker
}

// Tickers returns every ticker created by this provider, in creation order.
func (f *FakeTimeProvider) Tickers() []*FakeTicker {
	f.lock.RLock()
	defer f.lock.RUnlock()

	return append([]*FakeTicker(nil), f.tickers...)
}

// AdvanceTimeTo sets the time to 't', ticking any tickers that have elapsed.
func (f *FakeTimeProvider) AdvanceTimeTo(t time.Time) {
	f.lock.Lock()
	f.time = t
	f.lock.Unlock()

	for _, ticker := range f.Tickers() {
		ticker.TickIfElapsed()
	}
}

// AdvanceTimeBy advances the time by 'd', ticking any tickers that have elapsed.
func (f *FakeTimeProvider) AdvanceTimeBy(d time.Duration) {
	f.AdvanceTimeTo(f.Now().Add(d))
}
