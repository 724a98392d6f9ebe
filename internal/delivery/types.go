//nolint:tagliatelle // superior snake-case yo.
package delivery

//go:generate mockgen -package mocks -destination mocks/mock_decoder.go github.com/ethpandaops/raid-crawler/internal/delivery Decoder,Source

import (
	"context"
	"time"

	"github.com/ethpandaops/raid-crawler/internal/raid"
)

// Artifact is one remotely delivered table and the local file caching it.
type Artifact struct {
	Name string // File name under the cache directory
	Key  uint32 // Save block key holding the table on the console
}

var (
	PriorityArtifact      = Artifact{Name: "raid_priority_array", Key: 0x095451E4}
	EncounterArtifact     = Artifact{Name: "raid_enemy_array", Key: 0x520A1B0E}
	FixedRewardArtifact   = Artifact{Name: "fixed_reward_item_array", Key: 0x7D6C2B82}
	LotteryRewardArtifact = Artifact{Name: "lottery_reward_item_array", Key: 0xA52B4811}
)

// TempSuffix marks the transient copy used for version comparison.
const TempSuffix = ".tmp"

// Priority is the decoded delivery priority table.
type Priority struct {
	GroupID int `json:"group_id"`
	Version int `json:"version"` // 0 means no event raids are active
}

// State is the decoded delivery content currently in effect.
type State struct {
	Priority       Priority           `json:"priority"`
	Distribution   []raid.Encounter   `json:"-"`
	Might          []raid.Encounter   `json:"-"`
	FixedRewards   []raid.RewardTable `json:"-"`
	LotteryRewards []raid.RewardTable `json:"-"`
	RefreshedAt    time.Time          `json:"refreshed_at"`
}

// Summary is the serialisable overview of a State.
type Summary struct {
	GroupID        int       `json:"group_id"`
	Version        int       `json:"version"`
	Distribution   int       `json:"distribution_encounters"`
	Might          int       `json:"might_encounters"`
	FixedRewards   int       `json:"fixed_reward_tables"`
	LotteryRewards int       `json:"lottery_reward_tables"`
	RefreshedAt    time.Time `json:"refreshed_at"`
}

// Summary returns counts of the loaded tables.
func (s *State) Summary() Summary {
	if s == nil {
		return Summary{}
	}

	return Summary{
		GroupID:        s.Priority.GroupID,
		Version:        s.Priority.Version,
		Distribution:   len(s.Distribution),
		Might:          len(s.Might),
		FixedRewards:   len(s.FixedRewards),
		LotteryRewards: len(s.LotteryRewards),
		RefreshedAt:    s.RefreshedAt,
	}
}

// Decoder turns delivery flatbuffers into tables.
type Decoder interface {
	DecodePriority(data []byte) (Priority, error)
	DecodeEncounters(data []byte) (distribution []raid.Encounter, might []raid.Encounter, err error)
	DecodeFixedRewards(data []byte) ([]raid.RewardTable, error)
	DecodeLotteryRewards(data []byte) ([]raid.RewardTable, error)
}

// Source fetches raw save blocks from the console. A size of 0 reads the
// whole block.
type Source interface {
	ReadSaveBlock(ctx context.Context, key uint32, size int) ([]byte, error)
}

// Outcome describes what a refresh did.
type Outcome string

const (
	// OutcomeLoaded means tables were decoded into the process state.
	OutcomeLoaded Outcome = "loaded"
	// OutcomeInactive means the console reports no active event; state untouched.
	OutcomeInactive Outcome = "inactive"
	// OutcomeEmpty means the priority table itself has version 0.
	OutcomeEmpty Outcome = "empty"
	// OutcomeError means the refresh failed.
	OutcomeError Outcome = "error"
)
