package httpcore

import "time"

// Sleeper abstracts wall-clock waiting so the pool's idle sweeper and the
// timeout layers can be driven by a fake clock in tests instead of
// time.Timer/time.Sleep directly.
type Sleeper interface {
	// Sleep returns a channel that receives once after d has elapsed.
	Sleep(d time.Duration) <-chan time.Time
	// SleepUntil returns a channel that receives once at t.
	SleepUntil(t time.Time) <-chan time.Time
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) <-chan time.Time      { return time.After(d) }
func (realSleeper) SleepUntil(t time.Time) <-chan time.Time     { return time.After(time.Until(t)) }

// DefaultSleeper is backed by the time package.
var DefaultSleeper Sleeper = realSleeper{}
