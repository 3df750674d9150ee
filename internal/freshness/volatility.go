package freshness

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"StockRadar/internal/model"
)

// IndexSource supplies recent daily bars for a benchmark index,
// most recent first.
type IndexSource interface {
	IndexDaily(ctx context.Context, code string, n int) ([]model.DailyBar, error)
}

// Monitor tracks market-wide volatility as a 0..1 gauge derived from a
// benchmark index. Refresh is driven by the scheduler; readers only see
// the last computed gauge.
type Monitor struct {
	source    IndexSource
	benchmark string
	threshold float64
	log       zerolog.Logger

	mu    sync.RWMutex
	gauge float64
}

// NewMonitor creates a volatility monitor over the benchmark index code.
// A gauge above threshold marks the market volatile.
func NewMonitor(source IndexSource, benchmark string, threshold float64, log zerolog.Logger) *Monitor {
	return &Monitor{
		source:    source,
		benchmark: benchmark,
		threshold: threshold,
		log:       log.With().Str("component", "volatility").Logger(),
		gauge:     0.5, // assume normal until first refresh
	}
}

// Refresh recomputes the gauge from the benchmark's last five sessions.
// On fetch failure the previous gauge is kept.
func (m *Monitor) Refresh(ctx context.Context) error {
	bars, err := m.source.IndexDaily(ctx, m.benchmark, 5)
	if err != nil {
		return fmt.Errorf("refresh volatility: %w", err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("refresh volatility: no bars for %s", m.benchmark)
	}

	var sumAbs float64
	for _, b := range bars {
		sumAbs += math.Abs(b.PctChange)
	}
	avgAbs := sumAbs / float64(len(bars))
	latestAbs := math.Abs(bars[0].PctChange)

	// A 3% average or latest move pegs the gauge.
	g := math.Max(avgAbs, latestAbs) / 3.0
	if g > 1 {
		g = 1
	}

	m.mu.Lock()
	m.gauge = g
	m.mu.Unlock()

	m.log.Debug().Float64("gauge", g).Str("benchmark", m.benchmark).Msg("volatility refreshed")
	return nil
}

// Gauge returns the last computed volatility in [0, 1].
func (m *Monitor) Gauge() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gauge
}

// Volatile reports whether the market is currently considered turbulent.
func (m *Monitor) Volatile() bool {
	return m.Gauge() > m.threshold
}
