package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockRadar/internal/event"
	"StockRadar/internal/freshness"
	"StockRadar/internal/recorder"
	"StockRadar/internal/throttle"
)

// Scheduler runs the background maintenance jobs: refreshing the market
// volatility gauge, sweeping expired assessment caches and snapshotting
// the provider's throttle headroom.
type Scheduler struct {
	Cron       *cron.Cron
	Volatility *freshness.Monitor
	Hotness    *freshness.Classifier
	Detector   *event.Detector
	Throttle   *throttle.ProviderThrottle
	Recorder   recorder.Recorder
	Ctx        context.Context

	log zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	ctx context.Context,
	vol *freshness.Monitor,
	hot *freshness.Classifier,
	det *event.Detector,
	pt *throttle.ProviderThrottle,
	rec recorder.Recorder,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Volatility: vol,
		Hotness:    hot,
		Detector:   det,
		Throttle:   pt,
		Recorder:   rec,
		Ctx:        ctx,
		log:        log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the volatility, sweep and throttle-stats jobs.
func (s *Scheduler) RegisterAll(volatilityCron, sweepCron, statsCron string) error {
	if _, err := s.Cron.AddFunc(volatilityCron, s.volatilityTask); err != nil {
		return fmt.Errorf("register volatility task: %w", err)
	}
	if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	if _, err := s.Cron.AddFunc(statsCron, s.statsTask); err != nil {
		return fmt.Errorf("register stats task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunVolatilityNow refreshes the gauge immediately, for process startup.
func (s *Scheduler) RunVolatilityNow() {
	s.volatilityTask()
}

func (s *Scheduler) volatilityTask() {
	ctx, cancel := context.WithTimeout(s.Ctx, 30*time.Second)
	defer cancel()

	if err := s.Volatility.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("volatility refresh failed")
		return
	}
	s.log.Info().Float64("gauge", s.Volatility.Gauge()).
		Bool("volatile", s.Volatility.Volatile()).Msg("volatility refreshed")
}

func (s *Scheduler) sweepTask() {
	hot := s.Hotness.Sweep()
	events := s.Detector.Sweep()
	s.log.Info().Int("hotness_dropped", hot).Int("events_dropped", events).
		Msg("expired cache entries swept")
}

func (s *Scheduler) statsTask() {
	stats := s.Throttle.Stats()
	s.log.Info().Int("minute_remaining", stats.MinuteRemaining).
		Int("minute_limit", stats.MinuteLimit).Msg("throttle headroom")

	if err := s.Recorder.RecordThrottle(recorder.ThrottleSnapshot{
		MinuteRemaining: stats.MinuteRemaining,
		MinuteLimit:     stats.MinuteLimit,
	}); err != nil {
		s.log.Error().Err(err).Msg("record throttle stats failed")
	}
}
