package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/history"
	"github.com/ethpandaops/raid-crawler/internal/notify"
	"github.com/ethpandaops/raid-crawler/internal/operator"
	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/scan"
)

// ErrRunning is returned when a run is requested while one is active.
var ErrRunning = errors.New("search already running")

// Deps are the collaborators of the engine.
type Deps struct {
	Console     Console
	Scanner     Scanner
	Pointers    Invalidator
	Filters     scan.FilterSource
	Sink        notify.Sink
	Reporter    operator.Reporter
	Recorder    Recorder
	Observers   []Observer
	ConsoleName string
}

// Engine runs the automated date-skip search. One run at a time.
type Engine struct {
	log  logrus.FieldLogger
	deps Deps

	mu      sync.Mutex
	cfg     Config
	running bool
	stats   Stats
}

// NewEngine creates an idle engine.
func NewEngine(log logrus.FieldLogger, cfg Config, deps Deps) *Engine {
	if deps.Recorder == nil {
		deps.Recorder = history.Nop{}
	}

	if deps.Sink == nil {
		deps.Sink = notify.Multi{}
	}

	return &Engine{
		log:   log.WithField("component", "search"),
		deps:  deps,
		cfg:   cfg,
		stats: Stats{State: StateIdle},
	}
}

// Config returns the settings the next run uses.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cfg
}

// SetConfig replaces the settings. A running search keeps the settings it
// started with.
func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg = cfg
}

// RestoreTotals seeds the monotonic counters, e.g. from a previous process.
func (e *Engine) RestoreTotals(tries, successes uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.Tries = max(e.stats.Tries, tries)
	e.stats.Successes = max(e.stats.Successes, successes)
}

// Stats returns the current counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := e.stats
	if e.running {
		stats.Elapsed = notify.FormatElapsed(time.Since(stats.StartedAt))
	}

	return stats
}

// Running reports whether a run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.running
}

// Run performs one search until a stop condition, cancellation or error.
// Cancellation is not an error: the result carries OutcomeCancelled.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	start := time.Now()

	cfg, err := e.begin(runID, start)
	if err != nil {
		return Result{}, err
	}

	log := e.log.WithField("run_id", runID)
	log.WithField("reset_threshold", cfg.ResetThreshold).Info("Date advance started")

	if err := e.deps.Recorder.RunStarted(ctx, history.Run{
		ID:        runID,
		Console:   e.deps.ConsoleName,
		StartedAt: start,
	}); err != nil {
		log.WithError(err).Warn("Failed to record run start")
	}

	e.deps.Reporter.Report(operator.Info(operator.KindStatus, "Date advance started", map[string]any{"run_id": runID}))

	result, err := e.loop(ctx, cfg, runID, start)
	result.RunID = runID
	result.Elapsed = time.Since(start)

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		err = nil
		result.Outcome = history.OutcomeCancelled

		log.Info("Date advance stopped")
		e.deps.Reporter.Report(operator.Info(operator.KindStatus, "Date advance stopped", nil))
	default:
		result.Outcome = history.OutcomeFailed

		log.WithError(err).Warn("Date advance failed")
		e.deps.Reporter.Report(operator.Error("Date advance error", err))
	}

	stats := e.finish(result)

	run := history.Run{
		ID:        runID,
		Outcome:   result.Outcome,
		Tries:     stats.RunTries,
		Successes: stats.RunSuccesses,
		Resets:    stats.Resets,
		Elapsed:   result.Elapsed,
	}
	if err != nil {
		run.Error = err.Error()
	}

	if rerr := e.deps.Recorder.RunFinished(context.WithoutCancel(ctx), run); rerr != nil {
		log.WithError(rerr).Warn("Failed to record run end")
	}

	runsTotal.WithLabelValues(string(result.Outcome)).Inc()

	return result, err
}

// loop checks ctx before every console command. The commands themselves run
// on callCtx, which a stop does not reach, so a command that has started
// always completes and leaves the console in a known state.
func (e *Engine) loop(ctx context.Context, cfg Config, runID string, start time.Time) (Result, error) {
	callCtx := context.WithoutCancel(ctx)

	snap := e.deps.Scanner.Snapshot()
	if snap == nil {
		var err error

		if snap, _, err = e.read(callCtx); err != nil {
			return Result{}, err
		}
	}

	skips := 0

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if cfg.ResetThreshold > 0 && skips >= cfg.ResetThreshold {
			fresh, err := e.reset(callCtx)
			if err != nil {
				return Result{}, err
			}

			snap = fresh
			skips = 0
		}

		previous := snap.Seeds()

		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		began := time.Now()

		if err := e.deps.Console.AdvanceDate(callCtx, skips, e.progress); err != nil {
			return Result{}, fmt.Errorf("advance date: %w", err)
		}

		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		next, corrupted, err := e.read(callCtx)
		if err != nil {
			return Result{}, err
		}

		skips++

		// A corrupted read says nothing about the seeds; keep the baseline.
		changed := false
		if !corrupted {
			snap = next
			changed = !previous.Equal(snap.Seeds())
		}

		e.record(skips, changed)
		iterationDuration.Observe(time.Since(began).Seconds())

		if !changed {
			continue
		}

		if stop, filtered := e.shouldStop(cfg, snap); stop {
			if !filtered {
				e.summary(start)

				return Result{Outcome: history.OutcomeChanged}, nil
			}

			return e.matched(callCtx, cfg, runID, snap, start)
		}
	}
}

// read wraps ReadAll. A corrupted snapshot is not an error for the loop.
func (e *Engine) read(ctx context.Context) (*raid.Snapshot, bool, error) {
	snap, err := e.deps.Scanner.ReadAll(ctx)

	switch {
	case err == nil:
		return snap, false, nil
	case errors.Is(err, scan.ErrCorruptedRead) && snap != nil:
		e.log.WithError(err).Warn("Ignoring corrupted read")

		return snap, true, nil
	default:
		return nil, false, err
	}
}

// reset saves, restarts the game and re-baselines the snapshot. It runs as
// one unit; pointers are dropped before the first input so a restart that
// fails halfway never leaves offsets into the closed game cached.
func (e *Engine) reset(ctx context.Context) (*raid.Snapshot, error) {
	e.log.Info("Skip threshold reached, restarting game")
	e.deps.Reporter.Report(operator.Info(operator.KindStatus, "Restarting game", nil))

	e.deps.Pointers.Invalidate()

	if err := e.deps.Console.SaveGame(ctx); err != nil {
		return nil, fmt.Errorf("save game: %w", err)
	}

	if err := e.deps.Console.CloseGame(ctx); err != nil {
		return nil, fmt.Errorf("close game: %w", err)
	}

	if err := e.deps.Console.StartGame(ctx); err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}

	resetsTotal.Inc()

	e.mu.Lock()
	e.stats.Resets++
	e.stats.Skips = 0
	e.mu.Unlock()

	snap, _, err := e.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read after restart: %w", err)
	}

	return snap, nil
}

// shouldStop decides whether a changed snapshot ends the run. filtered is
// true when filters took part in the decision.
func (e *Engine) shouldStop(cfg Config, snap *raid.Snapshot) (stop, filtered bool) {
	if !cfg.FiltersEnabled {
		return true, false
	}

	set := e.deps.Filters.Set()
	if !set.AnyEnabled() {
		return true, false
	}

	boost := snap.Params().Boost

	for i := range snap.Len() {
		if set.MatchesAny(snap, snap.Encounter(i), snap.Raid(i), boost) {
			return true, true
		}
	}

	return cfg.StopOnChange, true
}

// matched emits one notification per satisfied (filter, raid) pair.
func (e *Engine) matched(
	ctx context.Context,
	cfg Config,
	runID string,
	snap *raid.Snapshot,
	start time.Time,
) (Result, error) {
	elapsed := time.Since(start)
	satisfied := e.deps.Filters.Set().Satisfied(snap, snap.Params().Boost)
	res := Result{Outcome: history.OutcomeChanged}

	for _, m := range satisfied {
		n := notify.Build(m.Filter.Name(), snap.Entry(m.Index), elapsed)
		res.Matches = append(res.Matches, n)

		e.deps.Scanner.Select(m.Index)
		matchesTotal.Inc()

		if err := e.deps.Recorder.MatchFound(ctx, runID, n); err != nil {
			e.log.WithError(err).Warn("Failed to record match")
		}

		e.deps.Reporter.Report(operator.Info(operator.KindMatch,
			fmt.Sprintf("%s matched raid %08X", n.Filter, n.Raid.Seed),
			map[string]any{
				"filter": n.Filter,
				"seed":   fmt.Sprintf("%08X", n.Raid.Seed),
				"index":  m.Index,
				"stars":  n.Stars,
				"shiny":  n.Shiny,
			}))

		if cfg.NotificationsEnabled {
			if err := e.deps.Sink.Send(ctx, n); err != nil {
				e.log.WithError(err).Warn("Failed to send notification")
			}
		}
	}

	if len(satisfied) > 0 {
		res.Outcome = history.OutcomeMatched

		if cfg.SaveOnMatch {
			if err := e.deps.Console.SaveGame(ctx); err != nil {
				return res, fmt.Errorf("save on match: %w", err)
			}
		}
	}

	e.summary(start)

	return res, nil
}

func (e *Engine) summary(start time.Time) {
	elapsed := notify.FormatElapsed(time.Since(start))

	e.deps.Reporter.Report(operator.Info(operator.KindStatus,
		"Result found! Time spent: "+elapsed,
		map[string]any{"elapsed": elapsed}))
}

func (e *Engine) begin(runID string, start time.Time) (Config, error) {
	e.mu.Lock()

	if e.running {
		e.mu.Unlock()

		return Config{}, ErrRunning
	}

	e.running = true
	e.stats.State = StateRunning
	e.stats.RunID = runID
	e.stats.RunTries = 0
	e.stats.RunSuccesses = 0
	e.stats.Resets = 0
	e.stats.Skips = 0
	e.stats.Progress = 0
	e.stats.StartedAt = start
	e.stats.Elapsed = notify.FormatElapsed(0)
	e.stats.LastOutcome = history.OutcomeRunning
	cfg := e.cfg

	e.mu.Unlock()

	e.publish()

	return cfg, nil
}

func (e *Engine) record(skips int, changed bool) {
	triesTotal.Inc()

	e.mu.Lock()
	e.stats.Tries++
	e.stats.RunTries++
	e.stats.Skips = skips
	e.stats.Progress = 0

	if changed {
		e.stats.Successes++
		e.stats.RunSuccesses++
	}
	e.mu.Unlock()

	if changed {
		successesTotal.Inc()
	}

	stats := e.Stats()

	e.log.WithFields(logrus.Fields{
		"tries":     stats.RunTries,
		"successes": stats.RunSuccesses,
		"changed":   changed,
	}).Debug("Date advance cycle complete")

	e.deps.Reporter.Report(operator.Info(operator.KindStats,
		fmt.Sprintf("Day Skip Successes %d / %d", stats.Successes, stats.Tries),
		map[string]any{"successes": stats.Successes, "tries": stats.Tries}))

	e.publish()
}

func (e *Engine) finish(res Result) Stats {
	e.mu.Lock()
	e.running = false
	e.stats.State = StateIdle
	e.stats.Progress = 0
	e.stats.Elapsed = notify.FormatElapsed(res.Elapsed)
	e.stats.LastOutcome = res.Outcome
	stats := e.stats
	e.mu.Unlock()

	e.publish()

	return stats
}

func (e *Engine) progress(percent int) {
	e.mu.Lock()
	e.stats.Progress = percent
	e.mu.Unlock()
}

func (e *Engine) publish() {
	if len(e.deps.Observers) == 0 {
		return
	}

	stats := e.Stats()

	for _, o := range e.deps.Observers {
		o.OnStats(stats)
	}
}
