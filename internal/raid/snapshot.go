//nolint:tagliatelle // superior snake-case yo.
package raid

import (
	"fmt"
	"time"
)

// Batch holds the decoded lists of one region before they are joined into a
// snapshot.
type Batch struct {
	Region     Region
	Raids      []Raid
	Encounters []Encounter
	Rewards    [][]Reward
}

// Validate checks that the three lists are index aligned.
func (b Batch) Validate() error {
	if len(b.Raids) != len(b.Encounters) || len(b.Raids) != len(b.Rewards) {
		return fmt.Errorf(
			"%s batch misaligned: %d raids, %d encounters, %d rewards",
			b.Region, len(b.Raids), len(b.Encounters), len(b.Rewards),
		)
	}

	return nil
}

// Params are the inputs a snapshot was decoded with.
type Params struct {
	StoryProgress int `json:"story_progress"`
	EventProgress int `json:"event_progress"`
	Boost         int `json:"boost"`
}

// Snapshot is an immutable, index-aligned view of every raid read in one pass.
type Snapshot struct {
	version    uint64
	takenAt    time.Time
	params     Params
	regions    map[Region]int
	raids      []Raid
	encounters []Encounter
	rewards    [][]Reward
}

// NewSnapshot joins batches in the order given. Every batch must be aligned.
func NewSnapshot(version uint64, params Params, batches ...Batch) (*Snapshot, error) {
	total := 0

	for _, b := range batches {
		if err := b.Validate(); err != nil {
			return nil, err
		}

		total += len(b.Raids)
	}

	s := &Snapshot{
		version:    version,
		takenAt:    time.Now(),
		params:     params,
		regions:    make(map[Region]int, len(batches)),
		raids:      make([]Raid, 0, total),
		encounters: make([]Encounter, 0, total),
		rewards:    make([][]Reward, 0, total),
	}

	for _, b := range batches {
		s.raids = append(s.raids, b.Raids...)
		s.encounters = append(s.encounters, b.Encounters...)
		s.rewards = append(s.rewards, b.Rewards...)
		s.regions[b.Region] += len(b.Raids)
	}

	return s, nil
}

// Version is the monotonically increasing read counter the snapshot was
// published under.
func (s *Snapshot) Version() uint64 {
	if s == nil {
		return 0
	}

	return s.version
}

// TakenAt returns when the snapshot was assembled.
func (s *Snapshot) TakenAt() time.Time {
	if s == nil {
		return time.Time{}
	}

	return s.takenAt
}

// Params returns the progress and boost values used for decoding.
func (s *Snapshot) Params() Params {
	if s == nil {
		return Params{}
	}

	return s.params
}

// Len returns the number of raids.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.raids)
}

// RegionCount returns how many raids came from region r.
func (s *Snapshot) RegionCount(r Region) int {
	if s == nil {
		return 0
	}

	return s.regions[r]
}

// Raid returns the raid at index i.
func (s *Snapshot) Raid(i int) Raid {
	return s.raids[i]
}

// Encounter returns the encounter paired with raid i.
func (s *Snapshot) Encounter(i int) Encounter {
	return s.encounters[i]
}

// Rewards returns the reward list of raid i.
func (s *Snapshot) Rewards(i int) []Reward {
	return s.rewards[i]
}

// Seeds returns the set of raid seeds.
func (s *Snapshot) Seeds() SeedSet {
	if s == nil {
		return SeedSet{}
	}

	set := make(SeedSet, len(s.raids))
	for _, r := range s.raids {
		set[r.Seed] = struct{}{}
	}

	return set
}

// Entry is the serialisable form of one aligned snapshot row.
type Entry struct {
	Index     int       `json:"index"`
	Raid      Raid      `json:"raid"`
	Encounter Encounter `json:"encounter"`
	Rewards   []Reward  `json:"rewards"`
	Stars     int       `json:"stars"`
	Shiny     bool      `json:"shiny"`
}

// Entries returns a copy of every row.
func (s *Snapshot) Entries() []Entry {
	if s == nil {
		return []Entry{}
	}

	entries := make([]Entry, len(s.raids))
	for i := range s.raids {
		entries[i] = s.entry(i)
	}

	return entries
}

// Entry returns row i.
func (s *Snapshot) Entry(i int) Entry {
	return s.entry(i)
}

func (s *Snapshot) entry(i int) Entry {
	r, e := s.raids[i], s.encounters[i]

	return Entry{
		Index:     i,
		Raid:      r,
		Encounter: e,
		Rewards:   s.rewards[i],
		Stars:     e.StarCount(r, s.params.StoryProgress),
		Shiny:     e.IsShiny(r),
	}
}

// SeedSet is an unordered set of raid seeds.
type SeedSet map[uint32]struct{}

// Equal reports set equality, ignoring order and duplicates.
func (a SeedSet) Equal(b SeedSet) bool {
	if len(a) != len(b) {
		return false
	}

	for seed := range a {
		if _, ok := b[seed]; !ok {
			return false
		}
	}

	return true
}
