package delivery

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/raid-crawler/internal/raid"
)

// fbBuilder lays out flatbuffers front to back, children after parents.
type fbBuilder struct {
	buf []byte
}

type fbNode func(b *fbBuilder) int

type fbField struct {
	scalar []byte
	ref    fbNode
}

func (b *fbBuilder) align() {
	for len(b.buf)%4 != 0 {
		b.buf = append(b.buf, 0)
	}
}

func (b *fbBuilder) u16(v uint16) { b.buf = binary.LittleEndian.AppendUint16(b.buf, v) }
func (b *fbBuilder) u32(v uint32) { b.buf = binary.LittleEndian.AppendUint32(b.buf, v) }

func (b *fbBuilder) patch(at, target int) {
	binary.LittleEndian.PutUint32(b.buf[at:], uint32(target-at))
}

func u8f(v uint8) fbField   { return fbField{scalar: []byte{v}} }
func u16f(v uint16) fbField { return fbField{scalar: binary.LittleEndian.AppendUint16(nil, v)} }
func u32f(v uint32) fbField { return fbField{scalar: binary.LittleEndian.AppendUint32(nil, v)} }
func u64f(v uint64) fbField { return fbField{scalar: binary.LittleEndian.AppendUint64(nil, v)} }
func reff(n fbNode) fbField { return fbField{ref: n} }

func fbTable(fields ...fbField) fbNode {
	return func(b *fbBuilder) int {
		b.align()

		offsets := make([]int, len(fields))
		size := 4

		for i, f := range fields {
			switch {
			case f.ref != nil:
				offsets[i] = size
				size += 4
			case f.scalar != nil:
				offsets[i] = size
				size += len(f.scalar)
			}
		}

		vt := len(b.buf)
		b.u16(uint16(4 + 2*len(fields)))
		b.u16(uint16(size))

		for _, off := range offsets {
			b.u16(uint16(off))
		}

		b.align()

		pos := len(b.buf)
		b.u32(uint32(pos - vt))

		refs := map[int]fbNode{}

		for _, f := range fields {
			switch {
			case f.ref != nil:
				refs[len(b.buf)] = f.ref
				b.u32(0)
			case f.scalar != nil:
				b.buf = append(b.buf, f.scalar...)
			}
		}

		for at, child := range refs {
			b.patch(at, child(b))
		}

		return pos
	}
}

func fbVector(elems ...fbNode) fbNode {
	return func(b *fbBuilder) int {
		b.align()

		pos := len(b.buf)
		b.u32(uint32(len(elems)))

		slots := make([]int, len(elems))
		for i := range elems {
			slots[i] = len(b.buf)
			b.u32(0)
		}

		for i, e := range elems {
			b.patch(slots[i], e(b))
		}

		return pos
	}
}

func fbUint16s(vals ...uint16) fbNode {
	return func(b *fbBuilder) int {
		b.align()

		pos := len(b.buf)
		b.u32(uint32(len(vals)))

		for _, v := range vals {
			b.u16(v)
		}

		return pos
	}
}

func fbBuild(root fbNode) []byte {
	b := &fbBuilder{buf: make([]byte, 4)}
	b.patch(0, root(b))

	return b.buf
}

func TestFlatDecoder_Priority(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Priority
	}{
		{
			name: "first entry wins",
			data: fbBuild(fbTable(reff(fbVector(
				fbTable(u32f(7), u32f(12)),
				fbTable(u32f(3), u32f(1)),
			)))),
			want: Priority{GroupID: 12, Version: 7},
		},
		{
			name: "no entries",
			data: fbBuild(fbTable(reff(fbVector()))),
			want: Priority{},
		},
		{
			name: "absent vector",
			data: fbBuild(fbTable()),
			want: Priority{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlatDecoder{}.DecodePriority(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlatDecoder_Encounters(t *testing.T) {
	data := fbBuild(fbTable(reff(fbVector(
		fbTable(u8f(enemyKindDistribution), u16f(25), u8f(1), u8f(0), u8f(5), u8f(uint8(raid.ShinyNever)),
			reff(fbUint16s(85, 86, 87, 88)), reff(fbUint16s(9))),
		fbTable(u8f(enemyKindMight), u16f(6), u8f(0), u8f(1), u8f(7), u8f(uint8(raid.ShinyNever))),
	))))

	dist, might, err := FlatDecoder{}.DecodeEncounters(data)
	require.NoError(t, err)
	require.Len(t, dist, 1)
	require.Len(t, might, 1)

	assert.Equal(t, raid.Encounter{
		Kind:       raid.KindDistribution,
		Species:    25,
		Form:       1,
		Moves:      [4]uint16{85, 86, 87, 88},
		ExtraMoves: []uint16{9},
		Stars:      5,
		Shiny:      raid.ShinyNever,
	}, dist[0])

	assert.Equal(t, raid.KindMight, might[0].Kind)
	assert.Equal(t, uint16(6), might[0].Species)
	assert.Equal(t, uint8(7), might[0].Stars)
}

func TestFlatDecoder_Rewards(t *testing.T) {
	data := fbBuild(fbTable(reff(fbVector(
		fbTable(u64f(0xABCDEF0123), reff(fbVector(
			fbTable(u32f(1128), u32f(3), u8f(1)),
			fbTable(u32f(645), u32f(1), u8f(0)),
		))),
	))))

	tables, err := FlatDecoder{}.DecodeLotteryRewards(data)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, uint64(0xABCDEF0123), tables[0].TableID)
	assert.Equal(t, []raid.Reward{
		{ItemID: 1128, Quantity: 3, Tier: 1},
		{ItemID: 645, Quantity: 1, Tier: 0},
	}, tables[0].Items)
}

func TestFlatDecoder_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "root out of range", data: []byte{0xFF, 0, 0, 0}},
		{name: "truncated", data: fbBuild(fbTable(reff(fbVector(fbTable(u32f(1))))))[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FlatDecoder{}.DecodePriority(tt.data)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}
