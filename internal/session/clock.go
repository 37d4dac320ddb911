package session

import (
	"sync"
	"time"
)

// Clock schedules the session timer. Every calls fn every d until stop is
// called. fn may still run once after stop returns.
type Clock interface {
	Every(d time.Duration, fn func()) (stop func())
}

type realClock struct{}

// RealClock ticks on a [time.Ticker].
func RealClock() Clock {
	return realClock{}
}

func (realClock) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
