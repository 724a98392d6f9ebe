//nolint:tagliatelle // superior snake-case yo.
package crawler

//go:generate mockgen -package mocks -destination mocks/mock_crawler.go github.com/ethpandaops/raid-crawler/internal/crawler Delivery,Searcher

import (
	"context"
	"errors"

	"github.com/ethpandaops/raid-crawler/internal/delivery"
	"github.com/ethpandaops/raid-crawler/internal/lease"
	"github.com/ethpandaops/raid-crawler/internal/notify"
	"github.com/ethpandaops/raid-crawler/internal/operator"
	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/scan"
	"github.com/ethpandaops/raid-crawler/internal/search"
	"github.com/ethpandaops/raid-crawler/internal/session"
)

var (
	// ErrBusy is returned when another console operation is in progress.
	ErrBusy = errors.New("crawler is busy")
	// ErrNotConnected is returned for console operations without a session.
	ErrNotConnected = errors.New("not connected to a console")
	// ErrUnsupportedGame is returned when the console runs another title.
	ErrUnsupportedGame = errors.New("unsupported game")
	// ErrNoRaids is returned when an operation needs a snapshot and none is loaded.
	ErrNoRaids = errors.New("no raids loaded")
)

// TestFilterName names the synthetic filter used for test notifications.
const TestFilterName = "Test Webhook"

// State is the console worker state.
type State string

const (
	StateIdle State = "idle"
	StateBusy State = "busy"
)

// Scanner is the raid state store.
type Scanner interface {
	ReadAll(ctx context.Context) (*raid.Snapshot, error)
	Snapshot() *raid.Snapshot
	View() scan.View
	SetProgress(story, event int)
	Params() raid.Params
	SetBoost(boost int) error
	Regions() []raid.Region
	SetRegions(regions []raid.Region)
	Next(toMatch bool) scan.View
	Previous(toMatch bool) scan.View
	Select(i int) scan.View
}

// Delivery keeps the event raid tables.
type Delivery interface {
	Refresh(ctx context.Context, force bool) (delivery.Outcome, error)
	State() *delivery.State
}

// Searcher runs the automated date-skip search.
type Searcher interface {
	Run(ctx context.Context) (search.Result, error)
	Stats() search.Stats
	Config() search.Config
	SetConfig(cfg search.Config)
}

// Deps are the collaborators of the controller.
type Deps struct {
	Session  session.Session
	Pointers search.Invalidator
	Scanner  Scanner
	Delivery Delivery
	Search   Searcher
	Sink     notify.Sink
	Reporter operator.Reporter
	Lease    lease.Lease
}

// Status is the operator view of the crawler.
type Status struct {
	Console         string           `json:"console"`
	Connected       bool             `json:"connected"`
	Game            string           `json:"game,omitempty"`
	State           State            `json:"state"`
	Operation       string           `json:"operation,omitempty"`
	LeaseHeld       bool             `json:"lease_held"`
	Search          search.Stats     `json:"search"`
	SearchConfig    SearchSettings   `json:"search_config"`
	SnapshotVersion uint64           `json:"snapshot_version"`
	Raids           int              `json:"raids"`
	MatchCount      int              `json:"match_count"`
	Active          int              `json:"active"`
	Params          raid.Params      `json:"params"`
	Regions         []raid.Region    `json:"regions"`
	Delivery        delivery.Summary `json:"delivery"`
}

// SearchSettings is the serialisable form of search.Config.
type SearchSettings struct {
	ResetThreshold       int  `json:"reset_threshold"`
	FiltersEnabled       bool `json:"filters_enabled"`
	NotificationsEnabled bool `json:"notifications_enabled"`
	SaveOnMatch          bool `json:"save_on_match"`
	StopOnChange         bool `json:"stop_on_change"`
}

// Settings converts cfg.
func Settings(cfg search.Config) SearchSettings {
	return SearchSettings(cfg)
}

// Config returns the search.Config form.
func (s SearchSettings) Config() search.Config {
	return search.Config(s)
}
