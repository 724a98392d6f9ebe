package scan

//go:generate mockgen -package mocks -destination mocks/mock_scan.go github.com/ethpandaops/raid-crawler/internal/scan Decoder,BlockReader

import (
	"context"
	"errors"

	"github.com/ethpandaops/raid-crawler/internal/delivery"
	"github.com/ethpandaops/raid-crawler/internal/filter"
	"github.com/ethpandaops/raid-crawler/internal/raid"
)

var (
	// ErrNoRegionsSelected is returned before any I/O when every region is
	// disabled.
	ErrNoRegionsSelected = errors.New("no region selected for scanning")
	// ErrCorruptedRead means the record count is implausible, which happens
	// when game memory shifts during a scan.
	ErrCorruptedRead = errors.New("corrupted raid read")
)

// DecodeRequest is everything the decoder needs to turn one block into
// records.
type DecodeRequest struct {
	Block         []byte
	Region        raid.Region
	StoryProgress int
	EventProgress int
	Boost         int
	Delivery      *delivery.State
}

// DecodeResult holds the aligned lists of one region plus decode-quality
// counters. Nonzero counters are diagnostics, not failures.
type DecodeResult struct {
	Raids        []raid.Raid
	Encounters   []raid.Encounter
	Rewards      [][]raid.Reward
	BadDelivery  int
	BadEncounter int
}

// Decoder converts a raw raid block into records.
type Decoder interface {
	Decode(req DecodeRequest) (DecodeResult, error)
}

// BlockReader fetches the raw block of a region.
type BlockReader interface {
	Read(ctx context.Context, region raid.Region) ([]byte, error)
}

// DeliverySource exposes the delivery tables in effect.
type DeliverySource interface {
	State() *delivery.State
}

// FilterSource exposes the current filter set.
type FilterSource interface {
	Set() *filter.Set
}

// Listener is told about every published snapshot. OnSnapshot is called
// with the store locked and must not call back into it.
type Listener interface {
	OnSnapshot(view View)
}

// View is what the operator sees of the store at one instant.
type View struct {
	Snapshot   *raid.Snapshot
	MatchCount int
	Active     int
}
