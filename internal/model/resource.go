package model

import (
	"fmt"
	"time"
)

// ResourceType identifies a category of fetchable market data.
type ResourceType string

const (
	// Realtime tier
	ResStockRealtime  ResourceType = "stock_realtime"
	ResIndexRealtime  ResourceType = "index_realtime"
	ResMarketOverview ResourceType = "market_overview"

	// Near-realtime tier
	ResIndexDaily    ResourceType = "index_daily"
	ResMoneyflow     ResourceType = "moneyflow"
	ResAnnouncements ResourceType = "anns"
	ResNews          ResourceType = "news"

	// Trading-data tier
	ResDaily      ResourceType = "daily"
	ResDailyBasic ResourceType = "daily_basic"
	ResMargin     ResourceType = "margin_detail"

	// Financial-statements tier
	ResHolders       ResourceType = "top10_holders"
	ResIncome        ResourceType = "income"
	ResFinaIndicator ResourceType = "fina_indicator"
	ResFinancials    ResourceType = "financial_data"

	// Reference / historical tier
	ResStockBasic ResourceType = "stock_basic"
	ResDividend   ResourceType = "dividend"
	ResHistPrices ResourceType = "historical_prices"

	// Macro tier
	ResMacroSnap ResourceType = "macro_snapshot"
	ResMacroGDP  ResourceType = "cn_gdp"
	ResMacroCPI  ResourceType = "cn_cpi"
	ResMacroPMI  ResourceType = "cn_pmi"
)

// ResourceKey identifies one cacheable unit of market data.
type ResourceKey struct {
	Type ResourceType
	Code string
	Date string // optional, YYYYMMDD
}

// String renders the key in "type:code[:date]" form, used as the cache key.
func (k ResourceKey) String() string {
	if k.Date != "" {
		return fmt.Sprintf("%s:%s:%s", k.Type, k.Code, k.Date)
	}
	return fmt.Sprintf("%s:%s", k.Type, k.Code)
}

// CacheEntry is one cached payload together with its freshness metadata.
type CacheEntry struct {
	Key        string    `json:"key"`
	Payload    []byte    `json:"payload"`
	FetchedAt  time.Time `json:"fetched_at"`
	TTLSeconds int       `json:"ttl_seconds"`
}
