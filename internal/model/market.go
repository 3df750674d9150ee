package model

// DailyBar is one daily trading record for an instrument or index.
type DailyBar struct {
	TradeDate    string  `json:"trade_date"` // YYYYMMDD
	Open         float64 `json:"open"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Close        float64 `json:"close"`
	PctChange    float64 `json:"pct_chg"`       // percent, signed
	Volume       float64 `json:"vol"`           // lots
	Amount       float64 `json:"amount"`        // 万元
	TurnoverRate float64 `json:"turnover_rate"` // percent
	VolumeRatio  float64 `json:"volume_ratio"`
	TotalMV      float64 `json:"total_mv"` // 亿元
}

// Quote is the latest realtime snapshot for an instrument.
type Quote struct {
	Code         string  `json:"code"`
	Price        float64 `json:"price"`
	PctChange    float64 `json:"pct_chg"`
	VolumeRatio  float64 `json:"volume_ratio"`
	TurnoverRate float64 `json:"turnover_rate"`
	Amplitude    float64 `json:"amplitude"`
}

// Announcement is one company filing headline.
type Announcement struct {
	Title   string `json:"title"`
	AnnDate string `json:"ann_date"` // YYYYMMDD
}

// NewsItem is one news headline with a best-effort timestamp.
type NewsItem struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	DateTime string `json:"datetime"` // "2006-01-02 15:04:05" or prefix thereof
}

// Fundamentals bundles per-instrument fundamental indicators.
type Fundamentals struct {
	Code      string  `json:"code"`
	PE        float64 `json:"pe"`
	PB        float64 `json:"pb"`
	ROE       float64 `json:"roe"`
	EPS       float64 `json:"eps"`
	Revenue   float64 `json:"revenue"`
	NetProfit float64 `json:"net_profit"`
}

// MacroSnapshot is a point-in-time view of macro indicators.
type MacroSnapshot struct {
	GDPGrowth float64 `json:"gdp_growth"`
	CPI       float64 `json:"cpi"`
	PMI       float64 `json:"pmi"`
	M2Growth  float64 `json:"m2_growth"`
}

// MoneyflowRow is one day of institutional money flow.
type MoneyflowRow struct {
	TradeDate string  `json:"trade_date"`
	NetAmount float64 `json:"net_amount"` // 万元, signed
	BuyLarge  float64 `json:"buy_lg_amount"`
	SellLarge float64 `json:"sell_lg_amount"`
}

// HolderRow is one top-ten shareholder record.
type HolderRow struct {
	HolderName string  `json:"holder_name"`
	HoldRatio  float64 `json:"hold_ratio"` // percent
	EndDate    string  `json:"end_date"`
}

// MarginRow is one day of margin trading balances.
type MarginRow struct {
	TradeDate string  `json:"trade_date"`
	RzBalance float64 `json:"rzye"` // financing balance
	RqBalance float64 `json:"rqye"` // securities lending balance
}

// DividendRow is one dividend distribution record.
type DividendRow struct {
	EndDate  string  `json:"end_date"`
	CashDiv  float64 `json:"cash_div"`
	StockDiv float64 `json:"stk_div"`
}
