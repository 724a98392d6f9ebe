package filter

import "github.com/ethpandaops/raid-crawler/internal/raid"

// Filter is a predicate over one raid of a snapshot. Field combination
// inside a filter is the filter's own business.
type Filter interface {
	Name() string
	Enabled() bool
	Matches(snap *raid.Snapshot, enc raid.Encounter, r raid.Raid, boost int) bool
}

// Match is one (filter, raid) pair that satisfied the filter.
type Match struct {
	Filter Filter
	Index  int
}

// Set is an immutable collection of filters evaluated with OR semantics.
type Set struct {
	filters []Filter
}

// NewSet returns a set over filters. Nil entries are dropped.
func NewSet(filters ...Filter) *Set {
	kept := make([]Filter, 0, len(filters))

	for _, f := range filters {
		if f != nil {
			kept = append(kept, f)
		}
	}

	return &Set{filters: kept}
}

// Filters returns every filter in the set, enabled or not.
func (s *Set) Filters() []Filter {
	if s == nil {
		return nil
	}

	return s.filters
}

// Enabled returns the filters that are switched on.
func (s *Set) Enabled() []Filter {
	if s == nil {
		return nil
	}

	out := make([]Filter, 0, len(s.filters))

	for _, f := range s.filters {
		if f.Enabled() {
			out = append(out, f)
		}
	}

	return out
}

// AnyEnabled reports whether at least one filter is switched on. A set whose
// filters are all disabled behaves like an empty set.
func (s *Set) AnyEnabled() bool {
	if s == nil {
		return false
	}

	for _, f := range s.filters {
		if f.Enabled() {
			return true
		}
	}

	return false
}

// MatchesAny reports whether any enabled filter matches the pair.
func (s *Set) MatchesAny(snap *raid.Snapshot, enc raid.Encounter, r raid.Raid, boost int) bool {
	if s == nil {
		return false
	}

	for _, f := range s.filters {
		if f.Enabled() && f.Matches(snap, enc, r, boost) {
			return true
		}
	}

	return false
}

// CountMatches returns how many raids of snap match at least one enabled filter.
func (s *Set) CountMatches(snap *raid.Snapshot, boost int) int {
	count := 0

	for i := range snap.Len() {
		if s.MatchesAny(snap, snap.Encounter(i), snap.Raid(i), boost) {
			count++
		}
	}

	return count
}

// Satisfied returns every (filter, raid) pair of snap that matched, ordered by
// raid index then filter order.
func (s *Set) Satisfied(snap *raid.Snapshot, boost int) []Match {
	enabled := s.Enabled()
	if len(enabled) == 0 {
		return nil
	}

	var matches []Match

	for i := range snap.Len() {
		enc, r := snap.Encounter(i), snap.Raid(i)

		for _, f := range enabled {
			if f.Matches(snap, enc, r, boost) {
				matches = append(matches, Match{Filter: f, Index: i})
			}
		}
	}

	return matches
}

// Static is a filter source that never changes.
type Static struct {
	set *Set
}

// NewStatic returns a source over filters.
func NewStatic(filters ...Filter) Static {
	return Static{set: NewSet(filters...)}
}

// Set returns the fixed set.
func (s Static) Set() *Set {
	return s.set
}

// Load is a no-op; a static set has no backing file.
func (s Static) Load() error {
	return nil
}
