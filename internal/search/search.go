//nolint:tagliatelle // superior snake-case yo.
package search

//go:generate mockgen -package mocks -destination mocks/mock_search.go github.com/ethpandaops/raid-crawler/internal/search Console,Scanner,Recorder

import (
	"context"
	"time"

	"github.com/ethpandaops/raid-crawler/internal/history"
	"github.com/ethpandaops/raid-crawler/internal/notify"
	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/scan"
	"github.com/ethpandaops/raid-crawler/internal/session"
)

// State of the search engine.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Config holds the search settings.
type Config struct {
	// ResetThreshold is the number of date skips after which the game is
	// saved and restarted. 0 disables resets.
	ResetThreshold       int
	FiltersEnabled       bool
	NotificationsEnabled bool
	SaveOnMatch          bool
	// StopOnChange stops on any seed change even when filters are enabled
	// and none matched.
	StopOnChange bool
}

// Console is the part of the remote session the loop drives.
type Console interface {
	AdvanceDate(ctx context.Context, skips int, progress session.ProgressFunc) error
	SaveGame(ctx context.Context) error
	CloseGame(ctx context.Context) error
	StartGame(ctx context.Context) error
}

// Scanner reads and holds the raid snapshot.
type Scanner interface {
	ReadAll(ctx context.Context) (*raid.Snapshot, error)
	Snapshot() *raid.Snapshot
	Select(i int) scan.View
}

// Invalidator clears cached raid block addresses.
type Invalidator interface {
	Invalidate()
}

// Recorder persists search history.
type Recorder interface {
	RunStarted(ctx context.Context, run history.Run) error
	RunFinished(ctx context.Context, run history.Run) error
	MatchFound(ctx context.Context, runID string, n notify.Notification) error
}

// Observer is told about statistics after every iteration.
type Observer interface {
	OnStats(stats Stats)
}

// Stats are the visible search counters. Totals are monotonic for the life of
// the engine; the Run fields describe the current or last run.
type Stats struct {
	State          State           `json:"state"`
	RunID          string          `json:"run_id,omitempty"`
	Tries          uint64          `json:"tries_total"`
	Successes      uint64          `json:"successes_total"`
	RunTries       uint64          `json:"run_tries"`
	RunSuccesses   uint64          `json:"run_successes"`
	Resets         uint64          `json:"run_resets"`
	Skips          int             `json:"skips_since_reset"`
	Progress       int             `json:"advance_progress"`
	StartedAt      time.Time       `json:"started_at"`
	Elapsed        string          `json:"elapsed"`
	LastOutcome    history.Outcome `json:"last_outcome,omitempty"`
}

// Result is how a run ended.
type Result struct {
	RunID   string
	Outcome history.Outcome
	Elapsed time.Duration
	Matches []notify.Notification
}
