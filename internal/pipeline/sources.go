package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"StockRadar/internal/model"
	"StockRadar/internal/provider"
	"StockRadar/internal/throttle"
)

// MarketSource adapts the throttled provider to the narrow read
// interfaces the freshness classifiers need (freshness.StatsSource and
// freshness.IndexSource). Calls here consume the same throttle budget as
// pipeline tasks.
type MarketSource struct {
	provider provider.Provider
	throttle *throttle.ProviderThrottle
	timeout  time.Duration
}

// NewMarketSource creates the adapter.
func NewMarketSource(p provider.Provider, t *throttle.ProviderThrottle, timeout time.Duration) *MarketSource {
	return &MarketSource{provider: p, throttle: t, timeout: timeout}
}

// RecentDaily returns the instrument's last n daily bars, most recent
// first.
func (s *MarketSource) RecentDaily(ctx context.Context, code string, n int) ([]model.DailyBar, error) {
	return s.daily(ctx, model.ResDaily, code, n)
}

// IndexDaily returns the index's last n daily bars, most recent first.
func (s *MarketSource) IndexDaily(ctx context.Context, code string, n int) ([]model.DailyBar, error) {
	return s.daily(ctx, model.ResIndexDaily, code, n)
}

func (s *MarketSource) daily(ctx context.Context, kind model.ResourceType, code string, n int) ([]model.DailyBar, error) {
	if !s.throttle.Acquire(ctx, string(kind), s.timeout) {
		return nil, fmt.Errorf("%w: %s", provider.ErrRateLimited, kind)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30) // generous window for ~5 sessions
	bars, err := s.provider.DailyBars(ctx, code, start.Format("20060102"), end.Format("20060102"))
	if err != nil {
		return nil, err
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].TradeDate > bars[j].TradeDate })
	if len(bars) > n {
		bars = bars[:n]
	}
	return bars, nil
}
