package recorder

import (
	"time"

	"StockRadar/internal/model"
)

// RunRecord is the persisted shape of one finished pipeline run.
type RunRecord struct {
	ID       string
	Input    string
	Code     string
	State    model.RunState
	Started  time.Time
	Duration time.Duration
	Results  []model.FetchResult
}

// ThrottleSnapshot captures provider budget headroom at a point in time.
type ThrottleSnapshot struct {
	MinuteRemaining int
	MinuteLimit     int
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	RecordEvents(code string, assessment *model.EventAssessment) error
	RecordThrottle(snap ThrottleSnapshot) error
	Close() error
}
