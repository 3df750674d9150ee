package freshness

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"StockRadar/internal/model"
)

// StatsSource supplies the recent daily stats the classifier needs,
// most recent bar first.
type StatsSource interface {
	RecentDaily(ctx context.Context, code string, n int) ([]model.DailyBar, error)
}

// hotnessCacheTTL bounds how stale a cached verdict may be. Concurrent
// refreshes race last-write-wins; the impact is capped by this TTL.
const hotnessCacheTTL = time.Hour

type hotVerdict struct {
	hot bool
	at  time.Time
}

// Classifier decides whether an instrument is trading unusually hot.
// Any single qualifying condition marks it hot; a failed stats fetch
// never does.
type Classifier struct {
	source StatsSource
	log    zerolog.Logger

	mu    sync.Mutex
	cache map[string]hotVerdict

	now func() time.Time
}

// NewClassifier creates a hotness classifier over the given stats source.
func NewClassifier(source StatsSource, log zerolog.Logger) *Classifier {
	return &Classifier{
		source: source,
		log:    log.With().Str("component", "hotness").Logger(),
		cache:  make(map[string]hotVerdict),
		now:    time.Now,
	}
}

// IsHot classifies one instrument, serving a cached verdict when fresh.
func (c *Classifier) IsHot(ctx context.Context, code string) bool {
	c.mu.Lock()
	if v, ok := c.cache[code]; ok && c.now().Sub(v.at) < hotnessCacheTTL {
		c.mu.Unlock()
		return v.hot
	}
	c.mu.Unlock()

	hot := c.classify(ctx, code)

	c.mu.Lock()
	c.cache[code] = hotVerdict{hot: hot, at: c.now()}
	c.mu.Unlock()
	return hot
}

// Sweep drops expired verdicts so the cache stays bounded.
func (c *Classifier) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for code, v := range c.cache {
		if c.now().Sub(v.at) >= hotnessCacheTTL {
			delete(c.cache, code)
			removed++
		}
	}
	return removed
}

func (c *Classifier) classify(ctx context.Context, code string) bool {
	bars, err := c.source.RecentDaily(ctx, code, 5)
	if err != nil {
		c.log.Warn().Err(err).Str("code", code).Msg("hotness stats fetch failed, treating as not hot")
		return false
	}
	if len(bars) == 0 {
		return false
	}

	var sumAmount, sumTurnover, sumAbsChange float64
	for _, b := range bars {
		sumAmount += b.Amount
		sumTurnover += b.TurnoverRate
		sumAbsChange += math.Abs(b.PctChange)
	}
	n := float64(len(bars))
	avgAmount := sumAmount / n / 1e4 // 万元 -> 亿元
	avgTurnover := sumTurnover / n
	avgAbsChange := sumAbsChange / n

	latest := bars[0]

	// Traded-value buckets scale with market cap: the bigger the cap,
	// the more turnover it takes to count as hot.
	switch {
	case latest.TotalMV > 5000 && avgAmount > 30:
		return true
	case latest.TotalMV > 1000 && avgAmount > 20:
		return true
	case avgAmount > 10:
		return true
	}

	if avgTurnover > 2 {
		return true
	}
	if latest.VolumeRatio > 1.5 {
		return true
	}
	if avgAbsChange > 2 {
		return true
	}

	// Three consecutive sessions each moving more than 2%.
	if len(bars) >= 3 {
		streak := true
		for _, b := range bars[:3] {
			if math.Abs(b.PctChange) <= 2 {
				streak = false
				break
			}
		}
		if streak {
			return true
		}
	}

	return false
}
