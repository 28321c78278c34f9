/**
 * Copyright (C) Couchbase, Inc 2025 - All Rights Reserved
 * Unauthorized copying of this file, via any medium is strictly prohibited
 * Proprietary and confidential
 */

package timeprovider

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeTimeProviderAdvanceBy(t *testing.T) {
	provider := NewFakeTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	var (
		durs = []time.Duration{5 * time.Millisecond, 25 * time.Millisecond, 125 * time.Millisecond}

		increments atomic.Uint64
		wg         sync.WaitGroup
	)

	for _, dur := range durs {
		wg.Add(1)

		ticker := provider.Ticker()
		ticker.Start(dur)

		go func(ticker Ticker) {
			defer wg.Done()

			for {
				_, ok := <-ticker.Channel()
				if !ok {
					return
				}

				increments.Add(1)
			}
		}(ticker)
	}

	for i := 0; i < 125; i++ {
		provider.AdvanceTimeBy(time.Millisecond)
	}

	for _, ticker := range provider.Tickers() {
		close(ticker.ch)
	}

	wg.Wait()

	require.Equal(t, uint64(25+5+1), increments.Load())
}

func TestFakeTickerStartResets(t *testing.T) {
	var (
		start    = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		provider = NewFakeTimeProvider(start)
		ticker   = provider.Ticker().(*FakeTicker)
		ticks    = make(chan time.Time, 1)
	)

	go func() {
		for tick := range ticker.Channel() {
			ticks <- tick
		}
	}()

	ticker.Start(time.Hour)
	require.True(t, ticker.Running())

	provider.AdvanceTimeBy(30 * time.Minute)
	ticker.Start(time.Hour)

	provider.AdvanceTimeBy(45 * time.Minute)
	require.Empty(t, ticks)

	provider.AdvanceTimeBy(15 * time.Minute)
	require.Equal(t, start.Add(90*time.Minute), <-ticks)

	ticker.Stop()
	require.False(t, ticker.Running())

	provider.AdvanceTimeBy(24 * time.Hour)
	require.Empty(t, ticks)

	close(ticker.ch)
}

func TestCurrentTimeProvider(t *testing.T) {
	var provider CurrentTimeProvider

	require.WithinDuration(t, time.Now(), provider.Now(), time.Second)

	ticker := provider.Ticker()
	ticker.Start(time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.Channel():
	case <-time.After(5 * time.Second):
		t.Fatal("expected real ticker to fire")
	}
}
