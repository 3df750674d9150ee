package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"StockRadar/internal/cache"
	"StockRadar/internal/event"
	"StockRadar/internal/freshness"
	"StockRadar/internal/model"
	"StockRadar/internal/provider"
	"StockRadar/internal/resolver"
	"StockRadar/internal/throttle"
)

// Config tunes one orchestrator instance.
type Config struct {
	// Workers is the fetch pool width.
	Workers int
	// TaskTimeout bounds each task's throttle wait.
	TaskTimeout time.Duration
	// RunTimeout is the whole-run deadline.
	RunTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 10 * time.Second
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = 2 * time.Minute
	}
	return c
}

// Run is one pipeline execution: the aggregated bundle plus one
// FetchResult per scheduled task, always, even on failure.
type Run struct {
	ID        string
	Input     string
	Code      string
	State     model.RunState
	Bundle    *model.Bundle
	Results   []model.FetchResult
	StartedAt time.Time
	Duration  time.Duration
}

// Orchestrator resolves an instrument, fans fetch tasks out over a
// bounded worker pool and aggregates the outcomes, tolerating partial
// failure. All collaborators are injected; the orchestrator holds no
// global state.
type Orchestrator struct {
	provider   provider.Provider
	store      cache.Store
	throttle   *throttle.ProviderThrottle
	policy     *freshness.Policy
	hotness    *freshness.Classifier
	volatility *freshness.Monitor
	detector   *event.Detector
	resolver   *resolver.Resolver
	cfg        Config
	log        zerolog.Logger
}

// NewOrchestrator wires the fetch pipeline together.
func NewOrchestrator(
	p provider.Provider,
	store cache.Store,
	t *throttle.ProviderThrottle,
	policy *freshness.Policy,
	hotness *freshness.Classifier,
	volatility *freshness.Monitor,
	detector *event.Detector,
	res *resolver.Resolver,
	cfg Config,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		provider:   p,
		store:      store,
		throttle:   t,
		policy:     policy,
		hotness:    hotness,
		volatility: volatility,
		detector:   detector,
		resolver:   res,
		cfg:        cfg.withDefaults(),
		log:        log.With().Str("component", "pipeline").Logger(),
	}
}

// Fetch runs the full pipeline for one instrument input. Resolution
// failure is the only error that aborts the run; every other failure is
// task-local and lands in the run's results and notes.
func (o *Orchestrator) Fetch(ctx context.Context, input string, progress ProgressFunc) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Input:     input,
		State:     model.RunIdle,
		StartedAt: time.Now(),
	}
	defer func() { run.Duration = time.Since(run.StartedAt) }()

	ctx, cancel := context.WithTimeout(ctx, o.cfg.RunTimeout)
	defer cancel()

	run.State = model.RunResolving
	emit(o.log, progress, "resolve:start", map[string]any{"input": input})

	inst, err := o.resolver.Resolve(ctx, input)
	if err != nil {
		return run, fmt.Errorf("resolve %q: %w", input, err)
	}
	run.Code = inst.Code
	emit(o.log, progress, "resolve:done", map[string]any{"code": inst.Code, "name": inst.Name})

	// TTLs for this run's write-backs use the cached hotness and event
	// verdicts; the fresh detection below feeds the next run, so
	// staleness stays bounded by the 1h assessment cache.
	fctx := freshness.Context{
		IsHot:          o.hotness.IsHot(ctx, inst.Code),
		MarketVolatile: o.volatility.Volatile(),
	}
	if assessment, ok := o.detector.Cached(inst.Code); ok {
		fctx.HasEvent = assessment.HasMajorEvent
	}

	run.State = model.RunFetchingParallel
	emit(o.log, progress, "fetch:parallel:start", map[string]any{"code": inst.Code})

	bundle := &model.Bundle{Code: inst.Code, Name: inst.Name, Industry: inst.Industry}
	outcomes := o.runParallel(ctx, o.buildTasks(inst.Code, fctx))

	run.State = model.RunAggregating
	failed := 0
	for _, out := range outcomes {
		run.Results = append(run.Results, out.result)
		if out.result.Status == model.TaskSucceeded {
			out.apply(bundle)
		} else {
			failed++
			bundle.Notes = append(bundle.Notes,
				fmt.Sprintf("%s: %s", out.result.Kind, out.result.Reason))
			o.log.Warn().Str("kind", string(out.result.Kind)).Str("code", inst.Code).
				Str("reason", out.result.Reason).Msg("fetch task failed")
		}
	}
	emit(o.log, progress, "fetch:parallel:done", map[string]any{
		"code": inst.Code, "tasks": len(outcomes), "failed": failed,
	})

	// Feed the detector with what this run saw so the verdict is warm
	// for subsequent TTL decisions.
	assessment := o.detector.Detect(inst.Code, bundle.Announcements, bundle.News, bundle.Quote)
	bundle.Events = &assessment
	emit(o.log, progress, "detect:events", map[string]any{
		"code": inst.Code, "major": assessment.HasMajorEvent,
		"summary": event.Summary(assessment.Records),
	})

	run.Bundle = bundle
	if failed > 0 {
		run.State = model.RunPartialFailure
	} else {
		run.State = model.RunDone
	}
	emit(o.log, progress, "complete", map[string]any{"code": inst.Code, "state": string(run.State)})

	return run, nil
}

// taskOutcome pairs a task's terminal result with the bundle mutation to
// apply on success. apply runs on the orchestrator goroutine only.
type taskOutcome struct {
	result model.FetchResult
	apply  func(*model.Bundle)
}

type task func(ctx context.Context) taskOutcome

// runParallel executes all tasks on the bounded pool and joins. Order of
// outcomes is unspecified; there is exactly one outcome per task.
func (o *Orchestrator) runParallel(ctx context.Context, tasks []task) []taskOutcome {
	in := make(chan task)
	out := make(chan taskOutcome, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < o.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range in {
				out <- t(ctx)
			}
		}()
	}

	for _, t := range tasks {
		in <- t
	}
	close(in)
	wg.Wait()
	close(out)

	outcomes := make([]taskOutcome, 0, len(tasks))
	for oc := range out {
		outcomes = append(outcomes, oc)
	}
	return outcomes
}

// buildTasks schedules one task per resource kind. Tasks are mutually
// independent; none may read another's result.
func (o *Orchestrator) buildTasks(code string, fctx freshness.Context) []task {
	today := time.Now().Format("20060102")
	yearAgo := time.Now().AddDate(-1, 0, -30).Format("20060102")
	recent := time.Now().AddDate(0, 0, -10).Format("20060102")

	return []task{
		runTask(o, model.ResourceKey{Type: model.ResDaily, Code: code, Date: today}, fctx,
			func(ctx context.Context) ([]model.DailyBar, error) {
				return o.provider.DailyBars(ctx, code, yearAgo, today)
			},
			func(v []model.DailyBar) int { return len(v) },
			func(b *model.Bundle, v []model.DailyBar) { b.Daily = v },
		),
		runTask(o, model.ResourceKey{Type: model.ResStockRealtime, Code: code}, fctx,
			func(ctx context.Context) (*model.Quote, error) {
				return o.provider.RealtimeQuote(ctx, code)
			},
			func(v *model.Quote) int { return 1 },
			func(b *model.Bundle, v *model.Quote) { b.Quote = v },
		),
		runTask(o, model.ResourceKey{Type: model.ResFinancials, Code: code}, fctx,
			func(ctx context.Context) (*model.Fundamentals, error) {
				return o.provider.Fundamentals(ctx, code)
			},
			func(v *model.Fundamentals) int { return 1 },
			func(b *model.Bundle, v *model.Fundamentals) { b.Fundamentals = v },
		),
		runTask(o, model.ResourceKey{Type: model.ResMacroSnap, Code: "CN"}, fctx,
			func(ctx context.Context) (*model.MacroSnapshot, error) {
				return o.provider.MacroSnapshot(ctx)
			},
			func(v *model.MacroSnapshot) int { return 1 },
			func(b *model.Bundle, v *model.MacroSnapshot) { b.Macro = v },
		),
		runTask(o, model.ResourceKey{Type: model.ResNews, Code: code}, fctx,
			func(ctx context.Context) ([]model.NewsItem, error) {
				return o.provider.News(ctx, code, 24)
			},
			func(v []model.NewsItem) int { return len(v) },
			func(b *model.Bundle, v []model.NewsItem) { b.News = v },
		),
		runTask(o, model.ResourceKey{Type: model.ResAnnouncements, Code: code}, fctx,
			func(ctx context.Context) ([]model.Announcement, error) {
				return o.provider.Announcements(ctx, code, 10)
			},
			func(v []model.Announcement) int { return len(v) },
			func(b *model.Bundle, v []model.Announcement) { b.Announcements = v },
		),
		runTask(o, model.ResourceKey{Type: model.ResMoneyflow, Code: code, Date: today}, fctx,
			func(ctx context.Context) ([]model.MoneyflowRow, error) {
				return o.provider.Moneyflow(ctx, code, recent, today)
			},
			func(v []model.MoneyflowRow) int { return len(v) },
			func(b *model.Bundle, v []model.MoneyflowRow) { b.Moneyflow = v },
		),
		runTask(o, model.ResourceKey{Type: model.ResHolders, Code: code}, fctx,
			func(ctx context.Context) ([]model.HolderRow, error) {
				return o.provider.Holders(ctx, code)
			},
			func(v []model.HolderRow) int { return len(v) },
			func(b *model.Bundle, v []model.HolderRow) { b.Holders = v },
		),
		runTask(o, model.ResourceKey{Type: model.ResMargin, Code: code}, fctx,
			func(ctx context.Context) ([]model.MarginRow, error) {
				return o.provider.MarginDetail(ctx, code)
			},
			func(v []model.MarginRow) int { return len(v) },
			func(b *model.Bundle, v []model.MarginRow) { b.Margin = v },
		),
		runTask(o, model.ResourceKey{Type: model.ResDividend, Code: code}, fctx,
			func(ctx context.Context) ([]model.DividendRow, error) {
				return o.provider.Dividends(ctx, code)
			},
			func(v []model.DividendRow) int { return len(v) },
			func(b *model.Bundle, v []model.DividendRow) { b.Dividends = v },
		),
	}
}

// runTask builds the cache-check / throttle / fetch / write-back sequence
// for one typed resource kind.
func runTask[T any](
	o *Orchestrator,
	key model.ResourceKey,
	fctx freshness.Context,
	fetch func(context.Context) (T, error),
	rows func(T) int,
	assign func(*model.Bundle, T),
) task {
	return func(ctx context.Context) taskOutcome {
		start := time.Now()
		res := model.FetchResult{Kind: key.Type}

		done := func(apply func(*model.Bundle)) taskOutcome {
			res.Duration = time.Since(start)
			if apply == nil {
				apply = func(*model.Bundle) {}
			}
			return taskOutcome{result: res, apply: apply}
		}

		// Cache first.
		if entry, ok, err := o.store.Get(ctx, key); err != nil {
			o.log.Warn().Str("key", key.String()).Err(err).Msg("cache read failed")
		} else if ok {
			var v T
			if err := json.Unmarshal(entry.Payload, &v); err == nil {
				res.Status = model.TaskSucceeded
				res.FromCache = true
				res.Rows = rows(v)
				return done(func(b *model.Bundle) { assign(b, v) })
			}
			// Undecodable entry: treat as a miss and refetch.
		}

		// Admission, both tiers.
		if !o.throttle.Acquire(ctx, string(key.Type), o.cfg.TaskTimeout) {
			res.Status = model.TaskFailed
			res.Reason = "throttled"
			return done(nil)
		}

		res.Status = model.TaskSucceeded
		v, err := fetch(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				res.Status = model.TaskTimedOut
			} else {
				res.Status = model.TaskFailed
			}
			res.Reason = err.Error()
			return done(nil)
		}
		res.Rows = rows(v)

		ttl := o.policy.DynamicTTL(key.Type, fctx)
		if payload, err := json.Marshal(v); err == nil {
			if err := o.store.Set(ctx, key, payload, ttl); err != nil {
				o.log.Warn().Str("key", key.String()).Err(err).Msg("cache write failed")
			}
		}

		return done(func(b *model.Bundle) { assign(b, v) })
	}
}
