package delivery

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethpandaops/raid-crawler/internal/raid"
)

// ErrMalformed is returned when a table does not follow the flatbuffer layout.
var ErrMalformed = errors.New("malformed delivery table")

// table is a read-only view of one flatbuffer table.
type table struct {
	buf    []byte
	pos    int
	vtable int
	vsize  int
}

func rootTable(buf []byte) (table, error) {
	if len(buf) < 4 {
		return table{}, fmt.Errorf("%w: %d bytes", ErrMalformed, len(buf))
	}

	return tableAt(buf, int(binary.LittleEndian.Uint32(buf)))
}

func tableAt(buf []byte, pos int) (table, error) {
	if pos < 0 || pos+4 > len(buf) {
		return table{}, fmt.Errorf("%w: table offset %d out of range", ErrMalformed, pos)
	}

	vt := pos - int(int32(binary.LittleEndian.Uint32(buf[pos:])))
	if vt < 0 || vt+4 > len(buf) {
		return table{}, fmt.Errorf("%w: vtable offset %d out of range", ErrMalformed, vt)
	}

	vsize := int(binary.LittleEndian.Uint16(buf[vt:]))
	if vt+vsize > len(buf) {
		return table{}, fmt.Errorf("%w: vtable size %d out of range", ErrMalformed, vsize)
	}

	return table{buf: buf, pos: pos, vtable: vt, vsize: vsize}, nil
}

// field returns the absolute position of field i, or 0 when it is absent.
func (t table) field(i, width int) (int, error) {
	slot := 4 + 2*i
	if slot+2 > t.vsize {
		return 0, nil
	}

	off := int(binary.LittleEndian.Uint16(t.buf[t.vtable+slot:]))
	if off == 0 {
		return 0, nil
	}

	if t.pos+off+width > len(t.buf) {
		return 0, fmt.Errorf("%w: field %d out of range", ErrMalformed, i)
	}

	return t.pos + off, nil
}

func (t table) uint8(i int) (uint8, error) {
	p, err := t.field(i, 1)
	if err != nil || p == 0 {
		return 0, err
	}

	return t.buf[p], nil
}

func (t table) uint16(i int) (uint16, error) {
	p, err := t.field(i, 2)
	if err != nil || p == 0 {
		return 0, err
	}

	return binary.LittleEndian.Uint16(t.buf[p:]), nil
}

func (t table) uint32(i int) (uint32, error) {
	p, err := t.field(i, 4)
	if err != nil || p == 0 {
		return 0, err
	}

	return binary.LittleEndian.Uint32(t.buf[p:]), nil
}

func (t table) uint64(i int) (uint64, error) {
	p, err := t.field(i, 8)
	if err != nil || p == 0 {
		return 0, err
	}

	return binary.LittleEndian.Uint64(t.buf[p:]), nil
}

// vector returns the start and length of the vector in field i.
func (t table) vector(i, elemSize int) (start, n int, err error) {
	p, err := t.field(i, 4)
	if err != nil || p == 0 {
		return 0, 0, err
	}

	vec := p + int(binary.LittleEndian.Uint32(t.buf[p:]))
	if vec+4 > len(t.buf) {
		return 0, 0, fmt.Errorf("%w: vector %d out of range", ErrMalformed, i)
	}

	n = int(binary.LittleEndian.Uint32(t.buf[vec:]))
	start = vec + 4

	if n < 0 || start+n*elemSize > len(t.buf) {
		return 0, 0, fmt.Errorf("%w: vector %d length %d out of range", ErrMalformed, i, n)
	}

	return start, n, nil
}

func (t table) tables(i int) ([]table, error) {
	start, n, err := t.vector(i, 4)
	if err != nil {
		return nil, err
	}

	out := make([]table, 0, n)

	for j := range n {
		p := start + 4*j

		child, err := tableAt(t.buf, p+int(binary.LittleEndian.Uint32(t.buf[p:])))
		if err != nil {
			return nil, err
		}

		out = append(out, child)
	}

	return out, nil
}

func (t table) uint16s(i int) ([]uint16, error) {
	start, n, err := t.vector(i, 2)
	if err != nil || n == 0 {
		return nil, err
	}

	out := make([]uint16, n)
	for j := range out {
		out[j] = binary.LittleEndian.Uint16(t.buf[start+2*j:])
	}

	return out, nil
}

// Field indices of the delivery tables.
const (
	priorityEntries = 0
	priorityVersion = 0
	priorityGroupID = 1

	enemyEntries = 0
	enemyKind    = 0
	enemySpecies = 1
	enemyForm    = 2
	enemyGender  = 3
	enemyStars   = 4
	enemyShiny   = 5
	enemyMoves   = 6
	enemyExtra   = 7

	rewardTables  = 0
	rewardTableID = 0
	rewardItems   = 1
	rewardItemID  = 0
	rewardQty     = 1
	rewardTier    = 2
)

// enemy kind values as stored in raid_enemy_array.
const (
	enemyKindDistribution = 0
	enemyKindMight        = 1
)

// FlatDecoder decodes the delivery flatbuffers.
type FlatDecoder struct{}

var _ Decoder = FlatDecoder{}

// DecodePriority reads the first priority entry. A table without entries
// decodes to version 0.
func (FlatDecoder) DecodePriority(data []byte) (Priority, error) {
	root, err := rootTable(data)
	if err != nil {
		return Priority{}, err
	}

	entries, err := root.tables(priorityEntries)
	if err != nil || len(entries) == 0 {
		return Priority{}, err
	}

	version, err := entries[0].uint32(priorityVersion)
	if err != nil {
		return Priority{}, err
	}

	group, err := entries[0].uint32(priorityGroupID)
	if err != nil {
		return Priority{}, err
	}

	return Priority{GroupID: int(group), Version: int(version)}, nil
}

// DecodeEncounters splits raid_enemy_array into distribution and might tables.
func (FlatDecoder) DecodeEncounters(data []byte) (distribution, might []raid.Encounter, err error) {
	root, err := rootTable(data)
	if err != nil {
		return nil, nil, err
	}

	entries, err := root.tables(enemyEntries)
	if err != nil {
		return nil, nil, err
	}

	for idx, entry := range entries {
		enc, kind, err := decodeEnemy(entry)
		if err != nil {
			return nil, nil, fmt.Errorf("enemy %d: %w", idx, err)
		}

		switch kind {
		case enemyKindDistribution:
			enc.Kind = raid.KindDistribution
			distribution = append(distribution, enc)
		case enemyKindMight:
			enc.Kind = raid.KindMight
			might = append(might, enc)
		default:
			return nil, nil, fmt.Errorf("%w: enemy %d has kind %d", ErrMalformed, idx, kind)
		}
	}

	return distribution, might, nil
}

func decodeEnemy(t table) (enc raid.Encounter, kind uint8, err error) {
	if kind, err = t.uint8(enemyKind); err != nil {
		return enc, 0, err
	}

	if enc.Species, err = t.uint16(enemySpecies); err != nil {
		return enc, 0, err
	}

	if enc.Form, err = t.uint8(enemyForm); err != nil {
		return enc, 0, err
	}

	if enc.Gender, err = t.uint8(enemyGender); err != nil {
		return enc, 0, err
	}

	if enc.Stars, err = t.uint8(enemyStars); err != nil {
		return enc, 0, err
	}

	shiny, err := t.uint8(enemyShiny)
	if err != nil {
		return enc, 0, err
	}

	enc.Shiny = raid.ShinyPolicy(shiny)

	moves, err := t.uint16s(enemyMoves)
	if err != nil {
		return enc, 0, err
	}

	copy(enc.Moves[:], moves)

	if enc.ExtraMoves, err = t.uint16s(enemyExtra); err != nil {
		return enc, 0, err
	}

	return enc, kind, nil
}

// DecodeFixedRewards decodes fixed_reward_item_array.
func (FlatDecoder) DecodeFixedRewards(data []byte) ([]raid.RewardTable, error) {
	return decodeRewardTables(data)
}

// DecodeLotteryRewards decodes lottery_reward_item_array.
func (FlatDecoder) DecodeLotteryRewards(data []byte) ([]raid.RewardTable, error) {
	return decodeRewardTables(data)
}

func decodeRewardTables(data []byte) ([]raid.RewardTable, error) {
	root, err := rootTable(data)
	if err != nil {
		return nil, err
	}

	tables, err := root.tables(rewardTables)
	if err != nil {
		return nil, err
	}

	out := make([]raid.RewardTable, 0, len(tables))

	for _, t := range tables {
		id, err := t.uint64(rewardTableID)
		if err != nil {
			return nil, err
		}

		items, err := t.tables(rewardItems)
		if err != nil {
			return nil, err
		}

		rt := raid.RewardTable{TableID: id, Items: make([]raid.Reward, 0, len(items))}

		for _, it := range items {
			var r raid.Reward

			if r.ItemID, err = it.uint32(rewardItemID); err != nil {
				return nil, err
			}

			if r.Quantity, err = it.uint32(rewardQty); err != nil {
				return nil, err
			}

			if r.Tier, err = it.uint8(rewardTier); err != nil {
				return nil, err
			}

			rt.Items = append(rt.Items, r)
		}

		out = append(out, rt)
	}

	return out, nil
}
