package model

import "time"

// RunState tracks a pipeline run through its lifecycle.
type RunState string

const (
	RunIdle             RunState = "IDLE"
	RunResolving        RunState = "RESOLVING"
	RunFetchingParallel RunState = "FETCHING_PARALLEL"
	RunAggregating      RunState = "AGGREGATING"
	RunDone             RunState = "DONE"
	RunPartialFailure   RunState = "PARTIAL_FAILURE"
)

// TaskStatus is the terminal state of one fetch task.
type TaskStatus string

const (
	TaskSucceeded TaskStatus = "SUCCEEDED"
	TaskFailed    TaskStatus = "FAILED"
	TaskTimedOut  TaskStatus = "TIMED_OUT"
)

// FetchResult is the outcome of one fetch task. A run always produces
// exactly one FetchResult per scheduled task.
type FetchResult struct {
	Kind      ResourceType
	Status    TaskStatus
	Reason    string // empty on success
	FromCache bool
	Rows      int
	Duration  time.Duration
}

// Bundle aggregates every data kind fetched for one instrument. Fields
// belonging to failed tasks hold their zero value; the failure itself is
// recorded in Notes and in the per-task FetchResult.
type Bundle struct {
	Code     string
	Name     string
	Industry string

	Daily         []DailyBar
	Quote         *Quote
	Fundamentals  *Fundamentals
	Macro         *MacroSnapshot
	News          []NewsItem
	Announcements []Announcement
	Moneyflow     []MoneyflowRow
	Holders       []HolderRow
	Margin        []MarginRow
	Dividends     []DividendRow

	Events *EventAssessment
	Notes  []string
}
