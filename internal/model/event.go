package model

// EventCategory classifies a detected major-event signal.
type EventCategory string

const (
	EventEarnings      EventCategory = "earnings"
	EventMerger        EventCategory = "merger"
	EventEquityChange  EventCategory = "equity_change"
	EventMajorContract EventCategory = "major_contract"
	EventTradingHalt   EventCategory = "trading_halt"
	EventRegulatory    EventCategory = "regulatory"
	EventInnovation    EventCategory = "innovation"
	EventPolicy        EventCategory = "policy"

	EventPriceAnomaly    EventCategory = "price_anomaly"
	EventVolumeAnomaly   EventCategory = "volume_anomaly"
	EventTurnoverAnomaly EventCategory = "turnover_anomaly"
)

// EventSource tells where an event signal came from.
type EventSource string

const (
	SourceAnnouncement EventSource = "announcement"
	SourceNews         EventSource = "news"
	SourceMarket       EventSource = "market"
)

// EventRecord is one detected event signal.
type EventRecord struct {
	Category EventCategory `json:"category"`
	Keyword  string        `json:"keyword"`
	Source   EventSource   `json:"source"`
	Title    string        `json:"title"`
	Date     string        `json:"date"`
	Weight   float64       `json:"weight"`
}

// EventAssessment is the detector's verdict for one instrument.
type EventAssessment struct {
	HasMajorEvent bool          `json:"has_major_event"`
	Records       []EventRecord `json:"records"`
}
