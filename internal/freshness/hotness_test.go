package freshness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"StockRadar/internal/model"
)

type stubStats struct {
	bars  []model.DailyBar
	err   error
	calls int
}

func (s *stubStats) RecentDaily(_ context.Context, _ string, _ int) ([]model.DailyBar, error) {
	s.calls++
	return s.bars, s.err
}

// quietBars returns five sessions of a sleepy large cap.
func quietBars() []model.DailyBar {
	bars := make([]model.DailyBar, 5)
	for i := range bars {
		bars[i] = model.DailyBar{
			PctChange:    0.4,
			Amount:       5e4, // 5亿
			TurnoverRate: 0.8,
			VolumeRatio:  0.9,
			TotalMV:      2000,
		}
	}
	return bars
}

func TestIsHot_QuietStockIsNotHot(t *testing.T) {
	c := NewClassifier(&stubStats{bars: quietBars()}, zerolog.Nop())
	assert.False(t, c.IsHot(context.Background(), "600000.SH"))
}

func TestIsHot_SingleConditionQualifies(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]model.DailyBar)
	}{
		{"high traded value", func(b []model.DailyBar) {
			for i := range b {
				b[i].Amount = 12e4 // 12亿 avg, mid-cap bucket
			}
		}},
		{"high turnover", func(b []model.DailyBar) {
			for i := range b {
				b[i].TurnoverRate = 3.5
			}
		}},
		{"volume surge", func(b []model.DailyBar) {
			b[0].VolumeRatio = 2.2
		}},
		{"wide average swings", func(b []model.DailyBar) {
			for i := range b {
				b[i].PctChange = -2.6
			}
		}},
		{"three consecutive big moves", func(b []model.DailyBar) {
			b[0].PctChange = 3.1
			b[1].PctChange = -2.4
			b[2].PctChange = 2.8
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := quietBars()
			tt.mutate(bars)
			c := NewClassifier(&stubStats{bars: bars}, zerolog.Nop())
			assert.True(t, c.IsHot(context.Background(), "000001.SZ"))
		})
	}
}

func TestIsHot_FetchFailureMeansNotHot(t *testing.T) {
	c := NewClassifier(&stubStats{err: errors.New("rate limited")}, zerolog.Nop())
	assert.False(t, c.IsHot(context.Background(), "600519.SH"))
}

func TestIsHot_VerdictIsCached(t *testing.T) {
	src := &stubStats{bars: quietBars()}
	c := NewClassifier(src, zerolog.Nop())

	c.IsHot(context.Background(), "600000.SH")
	c.IsHot(context.Background(), "600000.SH")
	assert.Equal(t, 1, src.calls, "second lookup must hit the cache")
}

func TestSweep_DropsExpiredVerdicts(t *testing.T) {
	src := &stubStats{bars: quietBars()}
	c := NewClassifier(src, zerolog.Nop())

	now := time.Now()
	c.now = func() time.Time { return now }
	c.IsHot(context.Background(), "600000.SH")

	c.now = func() time.Time { return now.Add(2 * time.Hour) }
	assert.Equal(t, 1, c.Sweep())
	assert.Empty(t, c.cache)
}

func TestMonitor_RefreshAndThreshold(t *testing.T) {
	calm := &stubStats{bars: quietBars()}
	m := NewMonitor(indexSource{calm}, "000001.SH", 0.7, zerolog.Nop())

	assert.NoError(t, m.Refresh(context.Background()))
	assert.False(t, m.Volatile())

	wild := quietBars()
	for i := range wild {
		wild[i].PctChange = 2.8
	}
	calm.bars = wild
	assert.NoError(t, m.Refresh(context.Background()))
	assert.True(t, m.Volatile())
	assert.InDelta(t, 0.93, m.Gauge(), 0.01)
}

func TestMonitor_KeepsGaugeOnError(t *testing.T) {
	src := &stubStats{bars: quietBars()}
	m := NewMonitor(indexSource{src}, "000001.SH", 0.7, zerolog.Nop())
	assert.NoError(t, m.Refresh(context.Background()))
	before := m.Gauge()

	src.err = errors.New("boom")
	assert.Error(t, m.Refresh(context.Background()))
	assert.Equal(t, before, m.Gauge())
}

// indexSource adapts stubStats to the IndexSource interface.
type indexSource struct{ s *stubStats }

func (a indexSource) IndexDaily(ctx context.Context, code string, n int) ([]model.DailyBar, error) {
	return a.s.RecentDaily(ctx, code, n)
}
