package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"StockRadar/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	log zerolog.Logger
	mu  sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance while the radar writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_runs (
			run_id      TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			input       TEXT,
			code        TEXT,
			state       TEXT,
			duration_ms INTEGER,
			tasks       INTEGER,
			failed      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON fetch_runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_code ON fetch_runs(code)`,

		`CREATE TABLE IF NOT EXISTS fetch_tasks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			kind        TEXT,
			status      TEXT,
			reason      TEXT,
			from_cache  INTEGER,
			rows        INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_run ON fetch_tasks(run_id)`,

		`CREATE TABLE IF NOT EXISTS event_records (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			code      TEXT,
			major     INTEGER,
			category  TEXT,
			keyword   TEXT,
			source    TEXT,
			title     TEXT,
			date      TEXT,
			weight    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_code ON event_records(code)`,

		`CREATE TABLE IF NOT EXISTS throttle_stats (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			minute_remaining INTEGER,
			minute_limit     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_throttle_ts ON throttle_stats(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run row and one row per task outcome in a single
// transaction.
func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	failed := 0
	for _, res := range rec.Results {
		if res.Status != model.TaskSucceeded {
			failed++
		}
	}

	if _, err := tx.Exec(`INSERT INTO fetch_runs
		(run_id, timestamp, input, code, state, duration_ms, tasks, failed)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Started.Unix(), rec.Input, rec.Code, string(rec.State),
		rec.Duration.Milliseconds(), len(rec.Results), failed,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, res := range rec.Results {
		if _, err := tx.Exec(`INSERT INTO fetch_tasks
			(run_id, kind, status, reason, from_cache, rows, duration_ms)
			VALUES (?,?,?,?,?,?,?)`,
			rec.ID, string(res.Kind), string(res.Status), res.Reason,
			boolInt(res.FromCache), res.Rows, res.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert task %s: %w", res.Kind, err)
		}
	}

	return tx.Commit()
}

// RecordEvents writes one row per matched event record. A verdict with no
// records writes nothing.
func (r *SQLiteRecorder) RecordEvents(code string, assessment *model.EventAssessment) error {
	if assessment == nil || len(assessment.Records) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	major := boolInt(assessment.HasMajorEvent)
	for _, ev := range assessment.Records {
		if _, err := r.db.Exec(`INSERT INTO event_records
			(timestamp, code, major, category, keyword, source, title, date, weight)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			now, code, major, string(ev.Category), ev.Keyword,
			string(ev.Source), ev.Title, ev.Date, ev.Weight,
		); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordThrottle(snap ThrottleSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO throttle_stats
		(timestamp, minute_remaining, minute_limit)
		VALUES (?,?,?)`,
		time.Now().Unix(), snap.MinuteRemaining, snap.MinuteLimit,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
