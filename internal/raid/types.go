//nolint:tagliatelle // superior snake-case yo.
package raid

import "fmt"

// Raid is a single decoded raid slot. Values are never mutated after decode.
type Raid struct {
	Seed          uint32   `json:"seed"`
	PID           uint32   `json:"pid"`
	EC            uint32   `json:"ec"`
	Region        Region   `json:"region"`
	Area          uint32   `json:"area"`
	LotteryGroup  uint32   `json:"lottery_group"`
	Den           uint32   `json:"den"`
	Difficulty    uint32   `json:"difficulty"`
	TeraType      TeraType `json:"tera_type"`
	Event         bool     `json:"event"`
	Black         bool     `json:"black"`
	Boosted       bool     `json:"boosted"` // rewards include extra lottery draws from the boost tier
	ShinyRoll     bool     `json:"shiny_roll"` // PID/TID check result when the encounter allows random shinies
	DeliveryGroup int      `json:"delivery_group,omitempty"`
}

// EncounterKind is the closed set of encounter sources.
type EncounterKind uint8

const (
	KindStandard EncounterKind = iota
	KindDistribution
	KindMight
)

// String returns the kind name.
func (k EncounterKind) String() string {
	switch k {
	case KindDistribution:
		return "distribution"
	case KindMight:
		return "might"
	default:
		return "standard"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EncounterKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EncounterKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "standard":
		*k = KindStandard
	case "distribution":
		*k = KindDistribution
	case "might":
		*k = KindMight
	default:
		return fmt.Errorf("unknown encounter kind: %q", text)
	}

	return nil
}

// ShinyPolicy controls how the shiny flag of a raid is determined.
type ShinyPolicy uint8

const (
	ShinyRandom ShinyPolicy = iota
	ShinyNever
	ShinyAlways
)

// Encounter describes what a raid spawns. Paired 1:1 by index with Raid.
type Encounter struct {
	Kind       EncounterKind `json:"kind"`
	Species    uint16        `json:"species"`
	Form       uint8         `json:"form"`
	Gender     uint8         `json:"gender"`
	Moves      [4]uint16     `json:"moves"`
	ExtraMoves []uint16      `json:"extra_moves,omitempty"`
	Stars      uint8         `json:"stars"`
	Shiny      ShinyPolicy   `json:"shiny_policy"`
}

// StarCount returns the displayed star rating. Event encounters carry a fixed
// rating, standard ones derive it from the raid difficulty roll.
func (e Encounter) StarCount(r Raid, storyProgress int) int {
	switch e.Kind {
	case KindDistribution, KindMight:
		return int(e.Stars)
	default:
		return StandardStarCount(r.Difficulty, storyProgress, r.Black)
	}
}

// IsShiny resolves the shiny state of r under the encounter's policy.
func (e Encounter) IsShiny(r Raid) bool {
	switch e.Shiny {
	case ShinyNever:
		return false
	case ShinyAlways:
		return true
	default:
		return r.ShinyRoll
	}
}

// StandardStarCount maps a difficulty roll (0-99) to stars for the given
// story progress tier.
func StandardStarCount(difficulty uint32, progress int, black bool) int {
	if black {
		return 6
	}

	switch progress {
	case 0:
		if difficulty > 80 {
			return 2
		}

		return 1
	case 1:
		switch {
		case difficulty > 70:
			return 3
		case difficulty > 30:
			return 2
		default:
			return 1
		}
	case 2:
		switch {
		case difficulty > 70:
			return 4
		case difficulty > 40:
			return 3
		case difficulty > 20:
			return 2
		default:
			return 1
		}
	case 3:
		switch {
		case difficulty > 75:
			return 5
		case difficulty > 40:
			return 4
		default:
			return 3
		}
	default:
		switch {
		case difficulty > 70:
			return 5
		case difficulty > 30:
			return 4
		default:
			return 3
		}
	}
}

// Reward is one (item, quantity, tier) tuple of a raid's reward list.
type Reward struct {
	ItemID   uint32 `json:"item_id"`
	Quantity uint32 `json:"quantity"`
	Tier     uint8  `json:"tier"`
}

// RewardTable is a delivery reward table keyed by table id.
type RewardTable struct {
	TableID uint64   `json:"table_id"`
	Items   []Reward `json:"items"`
}
