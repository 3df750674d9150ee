package freshness

import (
	"time"

	"StockRadar/internal/model"
)

// Global TTL floor; no cache entry is ever shorter-lived than this.
const minTTL = 30 * time.Second

// baseTTL holds the static freshness tier for every resource type the
// orchestrator can request.
var baseTTL = map[model.ResourceType]time.Duration{
	// Realtime
	model.ResStockRealtime:  1 * time.Minute,
	model.ResMarketOverview: 2 * time.Minute,
	model.ResIndexRealtime:  2 * time.Minute,

	// Near-realtime
	model.ResIndexDaily:    3 * time.Minute,
	model.ResMoneyflow:     10 * time.Minute,
	model.ResAnnouncements: 10 * time.Minute,
	model.ResNews:          30 * time.Minute,

	// Trading data
	model.ResDaily:      3 * time.Hour,
	model.ResDailyBasic: 3 * time.Hour,
	model.ResMargin:     3 * time.Hour,

	// Financial statements
	model.ResIncome:        6 * time.Hour,
	model.ResFinaIndicator: 6 * time.Hour,
	model.ResFinancials:    12 * time.Hour,

	// Reference / historical
	model.ResStockBasic: 12 * time.Hour,
	model.ResHolders:    24 * time.Hour,
	model.ResDividend:   24 * time.Hour,
	model.ResHistPrices: 7 * 24 * time.Hour,

	// Macro
	model.ResMacroSnap: 7 * 24 * time.Hour,
	model.ResMacroGDP: 7 * 24 * time.Hour,
	model.ResMacroCPI: 7 * 24 * time.Hour,
	model.ResMacroPMI: 7 * 24 * time.Hour,
}

// defaultTTL is the fallback for resource types missing from the table.
const defaultTTL = time.Hour

// realtimeClass shrinks hardest during the session and reacts hardest to
// hot instruments and major events.
var realtimeClass = map[model.ResourceType]bool{
	model.ResStockRealtime: true,
	model.ResMoneyflow:     true,
	model.ResNews:          true,
	model.ResAnnouncements: true,
}

// overviewClass gets the intermediate in-session shrink.
var overviewClass = map[model.ResourceType]bool{
	model.ResMarketOverview: true,
	model.ResIndexRealtime:  true,
}

// eventSensitive types shrink most aggressively when a major event is on.
var eventSensitive = map[model.ResourceType]bool{
	model.ResNews:          true,
	model.ResAnnouncements: true,
	model.ResStockRealtime: true,
}

// Context carries the per-instrument and market-wide signals the dynamic
// TTL computation reacts to.
type Context struct {
	IsHot          bool
	HasEvent       bool
	MarketVolatile bool
}

// Policy computes cache TTLs per resource type. All multipliers are pure;
// clamping happens last.
type Policy struct {
	clock *SessionClock
}

// NewPolicy creates a policy bound to an exchange session clock.
func NewPolicy(clock *SessionClock) *Policy {
	return &Policy{clock: clock}
}

// BaseTTL returns the static TTL for a resource type.
func (p *Policy) BaseTTL(rt model.ResourceType) time.Duration {
	if ttl, ok := baseTTL[rt]; ok {
		return ttl
	}
	return defaultTTL
}

// DynamicTTL derives the effective TTL: base, session multiplier, then
// hotness, event and volatility shrinks, then the per-type ceiling and the
// global floor.
func (p *Policy) DynamicTTL(rt model.ResourceType, c Context) time.Duration {
	base := p.BaseTTL(rt)
	phase := p.clock.Phase()

	mult := sessionMultiplier(rt, phase)

	if c.IsHot {
		// Independent of session: can only shrink further.
		mult = min(mult, mult*hotMultiplier(rt))
	}
	if c.HasEvent {
		mult *= eventMultiplier(rt)
	}
	if c.MarketVolatile {
		mult *= 0.6
	}

	ttl := time.Duration(float64(base) * mult)
	return clamp(ttl, minTTL, p.maxTTL(rt, base, phase))
}

// sessionMultiplier shrinks TTLs during the trading session and grows them
// outside it. The night/weekend growth is capped at 2x so off-hours data
// never drifts arbitrarily stale.
func sessionMultiplier(rt model.ResourceType, phase SessionPhase) float64 {
	switch phase {
	case PhaseTrading:
		switch {
		case realtimeClass[rt]:
			return 0.3
		case overviewClass[rt]:
			return 0.5
		default:
			return 0.7
		}
	case PhasePreOpen:
		return 1.5
	case PhasePostClose:
		return 1.0
	default:
		return 2.0
	}
}

func hotMultiplier(rt model.ResourceType) float64 {
	switch rt {
	case model.ResNews, model.ResAnnouncements, model.ResStockRealtime:
		return 0.3
	default:
		return 0.5
	}
}

func eventMultiplier(rt model.ResourceType) float64 {
	if eventSensitive[rt] {
		return 0.2
	}
	return 0.5
}

// maxTTL is the hard per-type ceiling, applied after all multipliers.
func (p *Policy) maxTTL(rt model.ResourceType, base time.Duration, phase SessionPhase) time.Duration {
	switch rt {
	case model.ResNews:
		return 30 * time.Minute
	case model.ResAnnouncements:
		return 15 * time.Minute
	case model.ResStockRealtime:
		if phase == PhaseTrading {
			return time.Minute
		}
		return 10 * time.Minute
	default:
		return 3 * base
	}
}

func clamp(ttl, lo, hi time.Duration) time.Duration {
	if ttl > hi {
		ttl = hi
	}
	if ttl < lo {
		ttl = lo
	}
	return ttl
}
