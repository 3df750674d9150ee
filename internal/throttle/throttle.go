package throttle

import (
	"context"
	"sync"
	"time"
)

// maxSleepSlice bounds each sleep inside Wait so callers stay responsive
// to context cancellation.
const maxSleepSlice = 100 * time.Millisecond

// Limiter is a sliding-window admission controller. Each key keeps an
// ordered list of recent call timestamps; entries older than the window
// are evicted lazily on every check.
type Limiter struct {
	maxCalls int
	window   time.Duration

	mu    sync.Mutex
	calls map[string][]time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewLimiter creates a limiter admitting at most maxCalls per window for
// each key.
func NewLimiter(maxCalls int, window time.Duration) *Limiter {
	return &Limiter{
		maxCalls: maxCalls,
		window:   window,
		calls:    make(map[string][]time.Time),
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// evict drops timestamps older than the window. Caller holds l.mu.
func (l *Limiter) evict(key string, now time.Time) []time.Time {
	times := l.calls[key]
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	if i > 0 {
		times = times[i:]
		l.calls[key] = times
	}
	return times
}

// Allow reports whether a call under key is admitted right now, and
// records it if so. A denied call is never recorded.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	times := l.evict(key, now)
	if len(times) >= l.maxCalls {
		return false
	}
	l.calls[key] = append(times, now)
	return true
}

// Remaining returns how many more calls key may make within the current
// window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	times := l.evict(key, l.now())
	if r := l.maxCalls - len(times); r > 0 {
		return r
	}
	return 0
}

// Wait blocks until a call under key is admitted, the timeout elapses, or
// ctx is done. It sleeps in bounded slices towards the moment the oldest
// recorded call expires. Returns true once admitted.
func (l *Limiter) Wait(ctx context.Context, key string, timeout time.Duration) bool {
	deadline := l.now().Add(timeout)

	for !l.Allow(key) {
		now := l.now()
		if !now.Before(deadline) {
			return false
		}
		if ctx.Err() != nil {
			return false
		}

		wait := l.oldestExpiry(key).Sub(now)
		if wait <= 0 {
			// Between Allow and here the window drained; retry at once.
			continue
		}
		if wait > maxSleepSlice {
			wait = maxSleepSlice
		}
		if remaining := deadline.Sub(now); wait > remaining {
			wait = remaining
		}
		l.sleep(wait)
	}
	return true
}

// oldestExpiry returns when the oldest recorded call for key leaves the
// window. With no recorded calls it returns the zero time.
func (l *Limiter) oldestExpiry(key string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	times := l.calls[key]
	if len(times) == 0 {
		return time.Time{}
	}
	return times[0].Add(l.window)
}
