package raid

import (
	"fmt"
	"strings"
)

// TeraType is the element type of a raid.
type TeraType uint8

const (
	Normal TeraType = iota
	Fighting
	Flying
	Poison
	Ground
	Rock
	Bug
	Ghost
	Steel
	Fire
	Water
	Grass
	Electric
	Psychic
	Ice
	Dragon
	Dark
	Fairy
)

type teraInfo struct {
	name  string
	color [3]uint8
}

var teraTypes = [...]teraInfo{
	Normal:   {"Normal", [3]uint8{0xA8, 0xA8, 0x78}},
	Fighting: {"Fighting", [3]uint8{0xC0, 0x30, 0x28}},
	Flying:   {"Flying", [3]uint8{0xA8, 0x90, 0xF0}},
	Poison:   {"Poison", [3]uint8{0xA0, 0x40, 0xA0}},
	Ground:   {"Ground", [3]uint8{0xE0, 0xC0, 0x68}},
	Rock:     {"Rock", [3]uint8{0xB8, 0xA0, 0x38}},
	Bug:      {"Bug", [3]uint8{0xA8, 0xB8, 0x20}},
	Ghost:    {"Ghost", [3]uint8{0x70, 0x58, 0x98}},
	Steel:    {"Steel", [3]uint8{0xB8, 0xB8, 0xD0}},
	Fire:     {"Fire", [3]uint8{0xF0, 0x80, 0x30}},
	Water:    {"Water", [3]uint8{0x68, 0x90, 0xF0}},
	Grass:    {"Grass", [3]uint8{0x78, 0xC8, 0x50}},
	Electric: {"Electric", [3]uint8{0xF8, 0xD0, 0x30}},
	Psychic:  {"Psychic", [3]uint8{0xF8, 0x58, 0x88}},
	Ice:      {"Ice", [3]uint8{0x98, 0xD8, 0xD8}},
	Dragon:   {"Dragon", [3]uint8{0x70, 0x38, 0xF8}},
	Dark:     {"Dark", [3]uint8{0x70, 0x58, 0x48}},
	Fairy:    {"Fairy", [3]uint8{0xEE, 0x99, 0xAC}},
}

// String returns the type name.
func (t TeraType) String() string {
	if int(t) < len(teraTypes) {
		return teraTypes[t].name
	}

	return fmt.Sprintf("TeraType(%d)", uint8(t))
}

// HexColor returns the RRGGBB highlight colour used in notifications.
// Unknown types fall back to white.
func (t TeraType) HexColor() string {
	if int(t) >= len(teraTypes) {
		return "FFFFFF"
	}

	c := teraTypes[t].color

	return fmt.Sprintf("%02X%02X%02X", c[0], c[1], c[2])
}

// ParseTeraType converts a case-insensitive type name.
func ParseTeraType(s string) (TeraType, error) {
	for i, info := range teraTypes {
		if strings.EqualFold(info.name, s) {
			return TeraType(i), nil
		}
	}

	return 0, fmt.Errorf("unknown tera type: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t TeraType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TeraType) UnmarshalText(text []byte) error {
	parsed, err := ParseTeraType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// SpriteName builds the URL-safe sprite reference for a species/form pair,
// e.g. "_25-1s" for a shiny form-1 species 25.
func SpriteName(species uint16, form uint8, shiny bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "_%d", species)

	if form > 0 {
		fmt.Fprintf(&b, "-%d", form)
	}

	if shiny {
		b.WriteString("s")
	}

	return b.String()
}
