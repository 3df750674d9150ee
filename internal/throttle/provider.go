package throttle

import (
	"context"
	"time"
)

// providerKey is the shared key for the per-provider minute window; every
// resource type draws from the same minute budget.
const providerKey = "provider"

// Stats is a point-in-time view of throttle headroom.
type Stats struct {
	MinuteRemaining int
	MinuteLimit     int
}

// ProviderThrottle composes two admission tiers over the same sliding
// window primitive: a global per-provider minute window and a per-resource
// daily quota. A call must pass both tiers before it may proceed.
type ProviderThrottle struct {
	minute *Limiter
	daily  *Limiter

	minuteLimit int
}

// NewProviderThrottle creates the two-tier throttle. minuteCap bounds all
// provider calls per rolling 60s; dailyCap bounds each resource type per
// rolling 24h (the quota epoch is wall-clock, not exchange-calendar).
func NewProviderThrottle(minuteCap, dailyCap int) *ProviderThrottle {
	return &ProviderThrottle{
		minute:      NewLimiter(minuteCap, time.Minute),
		daily:       NewLimiter(dailyCap, 24*time.Hour),
		minuteLimit: minuteCap,
	}
}

// Acquire waits for admission on both tiers, minute window first. Returns
// false if either tier cannot admit within the timeout.
func (t *ProviderThrottle) Acquire(ctx context.Context, resource string, timeout time.Duration) bool {
	if !t.minute.Wait(ctx, providerKey, timeout) {
		return false
	}
	return t.daily.Wait(ctx, resource, timeout)
}

// DailyRemaining returns today's remaining quota for one resource type.
func (t *ProviderThrottle) DailyRemaining(resource string) int {
	return t.daily.Remaining(resource)
}

// Stats reports remaining minute-window headroom.
func (t *ProviderThrottle) Stats() Stats {
	return Stats{
		MinuteRemaining: t.minute.Remaining(providerKey),
		MinuteLimit:     t.minuteLimit,
	}
}
