package raid

import (
	"fmt"
	"strings"
)

// Region identifies one of the map areas with its own raid block in memory.
type Region uint8

const (
	Paldea Region = iota
	Kitakami
	Blueberry
)

const (
	// HeaderSize is the static header preceding the Paldea raid block.
	HeaderSize = 0x10
	// RecordSize is the size in bytes of a single raid slot.
	RecordSize = 0x20

	MaxCountPaldea    = 72
	MaxCountKitakami  = 100
	MaxCountBlueberry = 80
)

// Regions lists every region in scan order.
var Regions = []Region{Paldea, Kitakami, Blueberry}

// String returns the region name.
func (r Region) String() string {
	switch r {
	case Paldea:
		return "Paldea"
	case Kitakami:
		return "Kitakami"
	case Blueberry:
		return "Blueberry"
	default:
		return fmt.Sprintf("Region(%d)", uint8(r))
	}
}

// Valid reports whether r is a known region.
func (r Region) Valid() bool {
	return r <= Blueberry
}

// MaxCount returns the number of raid slots in the region's block.
func (r Region) MaxCount() int {
	switch r {
	case Paldea:
		return MaxCountPaldea
	case Kitakami:
		return MaxCountKitakami
	case Blueberry:
		return MaxCountBlueberry
	default:
		return 0
	}
}

// BlockSize returns the fixed byte length read for the region.
func (r Region) BlockSize() int {
	return r.MaxCount() * RecordSize
}

// HeaderOffset returns the offset applied to the resolved base address
// before reading. Only Paldea carries a header.
func (r Region) HeaderOffset() uint64 {
	if r == Paldea {
		return HeaderSize
	}

	return 0
}

// DebugDumpName is the file the decoder writes per-region diagnostics to.
func (r Region) DebugDumpName() string {
	return fmt.Sprintf("raid_dbg_%s.txt", r)
}

// MaxPlausibleCount is the largest snapshot length considered sane. Anything
// above it means memory shifted under the scan.
func MaxPlausibleCount() int {
	return MaxCountPaldea + MaxCountKitakami
}

// ParseRegion converts a case-insensitive region name.
func ParseRegion(s string) (Region, error) {
	for _, r := range Regions {
		if strings.EqualFold(r.String(), s) {
			return r, nil
		}
	}

	return 0, fmt.Errorf("unknown region: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Region) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Region) UnmarshalText(text []byte) error {
	parsed, err := ParseRegion(string(text))
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}
