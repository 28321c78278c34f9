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

// Ticker is an interface for a timer that can be started, stopped, and queried for ticks, like 'time.Ticker'. We
// define this interface so that we can use a fake ticker in tests.
//
// NOTE: Calling 'Start' on a running ticker resets it, the next tick will be 'duration' after the call.
type Ticker interface {
	Start(duration time.Duration)
	Channel() <-chan time.Time
	Stop()
}

var (
	_ Ticker = (*RealTicker)(nil)
	_ Ticker = (*FakeTicker)(nil)
)

// RealTicker is a wrapper around 'time.Ticker' that implements the 'Ticker' interface.
type RealTicker struct {
	lock   sync.Mutex
	ticker *time.Ticker
	ch     chan time.Time
}

func NewRealTicker() *RealTicker {
	return &RealTicker{}
}

func (r *RealTicker) Start(duration time.Duration) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.ticker == nil {
		r.ticker = time.NewTicker(duration)
		return
	}

	r.ticker.Reset(duration)
}

func (r *RealTicker) Channel() <-chan time.Time {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.ticker == nil {
		// Not started, return a channel which never fires rather than a nil channel from a nil ticker.
		if r.ch == nil {
			r.ch = make(chan time.Time)
		}

		return r.ch
	}

	return r.ticker.C
}

func (r *RealTicker) Stop() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.ticker != nil {
		r.ticker.Stop()
	}
}

// FakeTicker is a fake implementation of the 'Ticker' interface that can be used in tests. Whenever we want to run an
// interaction 'ForceTick' or 'TickIfElapsed' can be called.
type FakeTicker struct {
	provider TimeProvider
	ch       chan time.Time

	lock     sync.Mutex
	dur      time.Duration
	lastTick time.Time
}

func NewFakeTicker(provider TimeProvider) *FakeTicker {
	return &FakeTicker{ch: make(chan time.Time), provider: provider, lastTick: provider.Now()}
}

// ForceTick sends the current time to the channel, blocking until it's received.
//
// NOTE: The lock is not held whilst sending, the receiver is free to 'Start'/'Stop' the ticker in response.
func (f *FakeTicker) ForceTick() {
	now := f.provider.Now()

	f.lock.Lock()
	f.lastTick = now
	f.lock.Unlock()

	f.ch <- now
}

// TickIfElapsed sends the current time to the channel if the timer has elapsed.
func (f *FakeTicker) TickIfElapsed() {
	f.lock.Lock()

	if f.dur == 0 {
		f.lock.Unlock()
		return
	}

	var (
		nextTick = f.lastTick.Add(f.dur)
		now      = f.provider.Now()
	)

	f.lock.Unlock()

	if !nextTick.After(now) {
		f.ForceTick()
	}
}

// Start begins the ticker. As this is a fake, we just record 'dur' and the current time, allowing us to check whether
// we have elapsed.
func (f *FakeTicker) Start(dur time.Duration) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.lastTick = f.provider.Now()
	f.dur = dur
}

func (f *FakeTicker) Channel() <-chan time.Time {
	return f.ch
}

func (f *FakeTicker) Stop() {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.dur = 0
}

// Running returns a boolean indicating whether the ticker has been started (and not stopped).
func (f *FakeTicker) Running() bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.dur != 0
}
