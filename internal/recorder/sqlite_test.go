package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockRadar/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "radar.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordRunPersistsRunAndTasks(t *testing.T) {
	r := openTestRecorder(t)

	rec := &RunRecord{
		ID:       "run-1",
		Input:    "贵州茅台",
		Code:     "600519.SH",
		State:    model.RunPartialFailure,
		Started:  time.Now(),
		Duration: 850 * time.Millisecond,
		Results: []model.FetchResult{
			{Kind: model.ResDaily, Status: model.TaskSucceeded, Rows: 240, Duration: 300 * time.Millisecond},
			{Kind: model.ResNews, Status: model.TaskFailed, Reason: "provider: transient failure"},
			{Kind: model.ResStockRealtime, Status: model.TaskSucceeded, FromCache: true, Rows: 1},
		},
	}
	require.NoError(t, r.RecordRun(rec))

	var state string
	var tasks, failed int
	err := r.db.QueryRow(
		`SELECT state, tasks, failed FROM fetch_runs WHERE run_id = ?`, "run-1",
	).Scan(&state, &tasks, &failed)
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL_FAILURE", state)
	assert.Equal(t, 3, tasks)
	assert.Equal(t, 1, failed)

	var taskRows int
	require.NoError(t, r.db.QueryRow(
		`SELECT COUNT(*) FROM fetch_tasks WHERE run_id = ?`, "run-1",
	).Scan(&taskRows))
	assert.Equal(t, 3, taskRows)

	var fromCache int
	require.NoError(t, r.db.QueryRow(
		`SELECT from_cache FROM fetch_tasks WHERE run_id = ? AND kind = ?`,
		"run-1", "stock_realtime",
	).Scan(&fromCache))
	assert.Equal(t, 1, fromCache)
}

func TestRecordEventsWritesOneRowPerRecord(t *testing.T) {
	r := openTestRecorder(t)

	assessment := &model.EventAssessment{
		HasMajorEvent: true,
		Records: []model.EventRecord{
			{Category: model.EventMerger, Keyword: "重组", Source: model.SourceAnnouncement, Title: "重大资产重组公告", Date: "20260302", Weight: 1.5},
			{Category: model.EventEarnings, Keyword: "年报", Source: model.SourceNews, Title: "年报点评", Date: "2026-03-01", Weight: 0.7},
		},
	}
	require.NoError(t, r.RecordEvents("600519.SH", assessment))

	var n int
	require.NoError(t, r.db.QueryRow(
		`SELECT COUNT(*) FROM event_records WHERE code = ? AND major = 1`, "600519.SH",
	).Scan(&n))
	assert.Equal(t, 2, n)

	// Empty verdicts write nothing.
	require.NoError(t, r.RecordEvents("000001.SZ", &model.EventAssessment{}))
	require.NoError(t, r.db.QueryRow(
		`SELECT COUNT(*) FROM event_records WHERE code = ?`, "000001.SZ",
	).Scan(&n))
	assert.Zero(t, n)
}

func TestRecordThrottle(t *testing.T) {
	r := openTestRecorder(t)

	require.NoError(t, r.RecordThrottle(ThrottleSnapshot{MinuteRemaining: 42, MinuteLimit: 100}))

	var remaining, limit int
	require.NoError(t, r.db.QueryRow(
		`SELECT minute_remaining, minute_limit FROM throttle_stats ORDER BY id DESC LIMIT 1`,
	).Scan(&remaining, &limit))
	assert.Equal(t, 42, remaining)
	assert.Equal(t, 100, limit)
}
