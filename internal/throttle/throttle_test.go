package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a Limiter deterministically; sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) sleep(d time.Duration)   { c.t = c.t.Add(d) }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(maxCalls int, window time.Duration) (*Limiter, *fakeClock) {
	clk := newFakeClock()
	l := NewLimiter(maxCalls, window)
	l.now = clk.now
	l.sleep = clk.sleep
	return l, clk
}

func TestAllow_ExactCapacityThenDenied(t *testing.T) {
	l, clk := newTestLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("tushare"), "call %d should be admitted", i)
	}
	assert.False(t, l.Allow("tushare"), "call beyond capacity must be denied")
	assert.Equal(t, 0, l.Remaining("tushare"))

	// After the window passes, the key admits again.
	clk.advance(time.Minute + time.Second)
	assert.True(t, l.Allow("tushare"))
}

func TestAllow_DeniedCallNotRecorded(t *testing.T) {
	l, clk := newTestLimiter(2, time.Minute)

	require.True(t, l.Allow("k"))
	clk.advance(10 * time.Second)
	require.True(t, l.Allow("k"))
	require.False(t, l.Allow("k"))
	require.False(t, l.Allow("k"))

	// Only the first admitted call has expired; exactly one slot opens.
	clk.advance(51 * time.Second)
	assert.Equal(t, 1, l.Remaining("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
}

func TestAllow_KeysIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	assert.True(t, l.Allow("daily"))
	assert.False(t, l.Allow("daily"))
	assert.True(t, l.Allow("news"))
}

func TestRemaining_EvictsBeforeCounting(t *testing.T) {
	l, clk := newTestLimiter(3, time.Minute)

	l.Allow("k")
	l.Allow("k")
	assert.Equal(t, 1, l.Remaining("k"))

	clk.advance(2 * time.Minute)
	assert.Equal(t, 3, l.Remaining("k"))
}

func TestWait_AdmitsOnceWindowDrains(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	require.True(t, l.Allow("k"))
	// The fake sleep advances time, so Wait progresses through the window.
	assert.True(t, l.Wait(context.Background(), "k", 2*time.Minute))
}

func TestWait_TimesOut(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	require.True(t, l.Allow("k"))
	assert.False(t, l.Wait(context.Background(), "k", 10*time.Second))
}

func TestWait_RespectsContext(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	require.True(t, l.Allow("k"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, l.Wait(ctx, "k", time.Minute))
}

func TestProviderThrottle_BothTiersMustAdmit(t *testing.T) {
	pt := NewProviderThrottle(10, 1)

	require.True(t, pt.Acquire(context.Background(), "daily", 50*time.Millisecond))
	assert.Equal(t, 0, pt.DailyRemaining("daily"))

	// Daily quota for "daily" is spent; a different resource still passes.
	assert.False(t, pt.Acquire(context.Background(), "daily", 20*time.Millisecond))
	assert.True(t, pt.Acquire(context.Background(), "news", 50*time.Millisecond))
}

func TestProviderThrottle_Stats(t *testing.T) {
	pt := NewProviderThrottle(5, 100)
	pt.Acquire(context.Background(), "daily", 50*time.Millisecond)
	pt.Acquire(context.Background(), "news", 50*time.Millisecond)

	st := pt.Stats()
	assert.Equal(t, 5, st.MinuteLimit)
	assert.Equal(t, 3, st.MinuteRemaining)
}
