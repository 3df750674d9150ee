package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"StockRadar/internal/cache"
	"StockRadar/internal/config"
	"StockRadar/internal/event"
	"StockRadar/internal/freshness"
	"StockRadar/internal/pipeline"
	"StockRadar/internal/provider"
	"StockRadar/internal/recorder"
	"StockRadar/internal/resolver"
	"StockRadar/internal/scheduler"
	"StockRadar/internal/throttle"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		log = log.Level(lvl)
	}
	log.Info().Msg("StockRadar starting")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	loc, err := time.LoadLocation(cfg.Market.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Market.Timezone).Msg("load timezone")
	}

	// Data source.
	var prov provider.Provider
	var names resolver.NameResolver
	if cfg.Provider.Mock {
		mock := &provider.MockProvider{
			Inst: &resolver.Instrument{Code: "600519.SH", Symbol: "600519", Name: "贵州茅台"},
		}
		prov, names = mock, mock
	} else {
		httpProv := provider.NewHTTPProvider(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Proxy)
		prov, names = httpProv, httpProv
	}
	log.Info().Str("provider", prov.Name()).Msg("data source ready")

	// Cache store, redis preferred, in-process fallback.
	var store cache.Store
	if cfg.Redis.Addr != "" {
		rs, err := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
			store = cache.NewMemoryStore()
		} else {
			store = rs
		}
	} else {
		store = cache.NewMemoryStore()
	}
	defer store.Close()

	pt := throttle.NewProviderThrottle(cfg.Throttle.MinutePerProvider, cfg.Throttle.DailyPerResource)
	policy := freshness.NewPolicy(freshness.NewSessionClock(loc))
	source := pipeline.NewMarketSource(prov, pt, cfg.Pipeline.TaskTimeout.Std())
	hotness := freshness.NewClassifier(source, log)
	volatility := freshness.NewMonitor(source, cfg.Market.BenchmarkIndex, cfg.Market.VolThreshold, log)
	detector := event.NewDetector(log)
	res := resolver.New(names, log)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("sqlite recorder unavailable, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := pipeline.NewOrchestrator(prov, store, pt, policy, hotness, volatility, detector, res,
		pipeline.Config{
			Workers:     cfg.Pipeline.Workers,
			TaskTimeout: cfg.Pipeline.TaskTimeout.Std(),
			RunTimeout:  cfg.Pipeline.RunTimeout.Std(),
		}, log)

	// One-shot mode: fetch the instruments given on the command line.
	if len(os.Args) > 1 {
		for _, input := range os.Args[1:] {
			fetchOne(ctx, orch, rec, log, input)
		}
		return
	}

	sched := scheduler.NewScheduler(ctx, volatility, hotness, detector, pt, rec, log)
	if err := sched.RegisterAll(cfg.Schedule.VolatilityCron, cfg.Schedule.SweepCron, cfg.Schedule.StatsCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()
	go sched.RunVolatilityNow()

	log.Info().Msg("StockRadar is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("StockRadar stopped")
}

func fetchOne(ctx context.Context, orch *pipeline.Orchestrator, rec recorder.Recorder, log zerolog.Logger, input string) {
	progress := func(step string, payload map[string]any) {
		log.Info().Str("step", step).Fields(payload).Msg("progress")
	}

	run, err := orch.Fetch(ctx, input, progress)
	if err != nil {
		log.Error().Err(err).Str("input", input).Msg("fetch failed")
		return
	}

	log.Info().Str("code", run.Code).Str("state", string(run.State)).
		Dur("duration", run.Duration).Int("tasks", len(run.Results)).
		Msg("fetch finished")
	if run.Bundle != nil && run.Bundle.Events != nil {
		log.Info().Bool("major", run.Bundle.Events.HasMajorEvent).
			Str("summary", event.Summary(run.Bundle.Events.Records)).Msg("event verdict")
	}

	if err := rec.RecordRun(&recorder.RunRecord{
		ID:       run.ID,
		Input:    run.Input,
		Code:     run.Code,
		State:    run.State,
		Started:  run.StartedAt,
		Duration: run.Duration,
		Results:  run.Results,
	}); err != nil {
		log.Error().Err(err).Msg("record run")
	}
	if run.Bundle != nil {
		if err := rec.RecordEvents(run.Code, run.Bundle.Events); err != nil {
			log.Error().Err(err).Msg("record events")
		}
	}
}
