//nolint:tagliatelle // superior snake-case yo.
package filter

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ethpandaops/raid-crawler/internal/raid"
)

// Rule is a filter read from the rules file. Every criterion that is set must
// hold for the rule to match.
type Rule struct {
	RuleName  string               `yaml:"name"`
	Disabled  bool                 `yaml:"disabled"`
	Species   []uint16             `yaml:"species"`
	Form      *uint8               `yaml:"form"`
	MinStars  int                  `yaml:"min_stars"`
	MaxStars  int                  `yaml:"max_stars"`
	Shiny     *bool                `yaml:"shiny"`
	TeraTypes []raid.TeraType      `yaml:"tera_types"`
	Regions   []raid.Region        `yaml:"regions"`
	Kinds     []raid.EncounterKind `yaml:"kinds"`
	Event     *bool                `yaml:"event"`
	Black     *bool                `yaml:"black"`
	Boosted   *bool                `yaml:"boosted"`
}

var _ Filter = (*Rule)(nil)

// Validate checks the rule for contradictions.
func (r *Rule) Validate() error {
	if r.RuleName == "" {
		return errors.New("name is required")
	}

	if r.MinStars < 0 || r.MaxStars < 0 {
		return fmt.Errorf("rule %q: star bounds must be positive", r.RuleName)
	}

	if r.MaxStars != 0 && r.MinStars > r.MaxStars {
		return fmt.Errorf("rule %q: min_stars %d exceeds max_stars %d", r.RuleName, r.MinStars, r.MaxStars)
	}

	return nil
}

// Name implements Filter.
func (r *Rule) Name() string {
	return r.RuleName
}

// Enabled implements Filter.
func (r *Rule) Enabled() bool {
	return !r.Disabled
}

// Matches implements Filter.
func (r *Rule) Matches(snap *raid.Snapshot, enc raid.Encounter, rd raid.Raid, _ int) bool {
	if len(r.Species) > 0 && !slices.Contains(r.Species, enc.Species) {
		return false
	}

	if r.Form != nil && *r.Form != enc.Form {
		return false
	}

	stars := enc.StarCount(rd, snap.Params().StoryProgress)
	if stars < r.MinStars || (r.MaxStars != 0 && stars > r.MaxStars) {
		return false
	}

	if r.Shiny != nil && *r.Shiny != enc.IsShiny(rd) {
		return false
	}

	if len(r.TeraTypes) > 0 && !slices.Contains(r.TeraTypes, rd.TeraType) {
		return false
	}

	if len(r.Regions) > 0 && !slices.Contains(r.Regions, rd.Region) {
		return false
	}

	if len(r.Kinds) > 0 && !slices.Contains(r.Kinds, enc.Kind) {
		return false
	}

	return flagMatches(r.Event, rd.Event) &&
		flagMatches(r.Black, rd.Black) &&
		flagMatches(r.Boosted, rd.Boosted)
}

func flagMatches(want *bool, got bool) bool {
	return want == nil || *want == got
}

// Always is a filter matching every raid. It backs test notifications.
type Always string

var _ Filter = Always("")

// Name implements Filter.
func (a Always) Name() string { return string(a) }

// Enabled implements Filter.
func (a Always) Enabled() bool { return true }

// Matches implements Filter.
func (a Always) Matches(*raid.Snapshot, raid.Encounter, raid.Raid, int) bool { return true }
