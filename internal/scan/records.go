package scan

import (
	"encoding/binary"
	"fmt"

	"github.com/ethpandaops/raid-crawler/internal/raid"
)

// Record layout inside a raid block.
const (
	recEnabled = 0x00
	recArea    = 0x04
	recLottery = 0x08
	recDen     = 0x0C
	recSeed    = 0x10
	recContent = 0x18
)

// Content values of a raid record.
const (
	contentStandard     = 0
	contentBlack        = 1
	contentDistribution = 2
	contentMight        = 3
)

const teraTypeCount = 18

// RecordDecoder decodes raid records and derives what the raid seed alone
// determines. Standard encounters are left unresolved beyond their kind; event
// encounters are picked from the delivery tables.
type RecordDecoder struct{}

var _ Decoder = RecordDecoder{}

// Decode implements Decoder. Records whose encounter cannot be resolved are
// dropped and counted.
func (RecordDecoder) Decode(req DecodeRequest) (DecodeResult, error) {
	if len(req.Block)%raid.RecordSize != 0 {
		return DecodeResult{}, fmt.Errorf("block length %d is not a multiple of %d", len(req.Block), raid.RecordSize)
	}

	count := min(len(req.Block)/raid.RecordSize, req.Region.MaxCount())
	res := DecodeResult{
		Raids:      make([]raid.Raid, 0, count),
		Encounters: make([]raid.Encounter, 0, count),
		Rewards:    make([][]raid.Reward, 0, count),
	}

	for i := range count {
		rec := req.Block[i*raid.RecordSize : (i+1)*raid.RecordSize]

		if binary.LittleEndian.Uint32(rec[recEnabled:]) == 0 {
			continue
		}

		content := binary.LittleEndian.Uint32(rec[recContent:])
		if content > contentMight {
			res.BadEncounter++

			continue
		}

		r := raid.Raid{
			Seed:         binary.LittleEndian.Uint32(rec[recSeed:]),
			Region:       req.Region,
			Area:         binary.LittleEndian.Uint32(rec[recArea:]),
			LotteryGroup: binary.LittleEndian.Uint32(rec[recLottery:]),
			Den:          binary.LittleEndian.Uint32(rec[recDen:]),
			Black:        content == contentBlack,
			Event:        content >= contentDistribution,
		}
		deriveFromSeed(&r)

		enc := raid.Encounter{Kind: raid.KindStandard}

		var rewards []raid.Reward

		if r.Event {
			var ok bool

			enc, rewards, ok = resolveEvent(req, &r, content)
			if !ok {
				res.BadDelivery++

				continue
			}
		}

		if rewards == nil {
			rewards = []raid.Reward{}
		}

		res.Raids = append(res.Raids, r)
		res.Encounters = append(res.Encounters, enc)
		res.Rewards = append(res.Rewards, rewards)
	}

	return res, nil
}

// deriveFromSeed fills the values the seed determines on its own.
func deriveFromSeed(r *raid.Raid) {
	gen := newXoroshiro(uint64(r.Seed))

	r.EC = uint32(gen.nextInt(0xFFFFFFFF))
	fakeTID := uint32(gen.nextInt(0xFFFFFFFF))
	r.PID = uint32(gen.nextInt(0xFFFFFFFF))
	r.ShinyRoll = shinyXor(r.PID, fakeTID) < 16

	roll := newXoroshiro(uint64(r.Seed))
	r.Difficulty = uint32(roll.nextInt(100))
	r.TeraType = raid.TeraType(roll.nextInt(teraTypeCount))
}

func shinyXor(pid, tid uint32) uint32 {
	x := pid ^ tid

	return (x ^ (x >> 16)) & 0xFFFF
}

// resolveEvent picks the delivery encounter and rewards of an event raid.
func resolveEvent(req DecodeRequest, r *raid.Raid, content uint32) (raid.Encounter, []raid.Reward, bool) {
	state := req.Delivery
	if state == nil {
		return raid.Encounter{}, nil, false
	}

	table := state.Distribution
	if content == contentMight {
		table = state.Might
	}

	if len(table) == 0 {
		return raid.Encounter{}, nil, false
	}

	enc := table[r.Seed%uint32(len(table))]
	r.DeliveryGroup = state.Priority.GroupID

	var rewards []raid.Reward

	if n := len(state.FixedRewards); n > 0 {
		rewards = append(rewards, state.FixedRewards[r.Seed%uint32(n)].Items...)
	}

	if n := len(state.LotteryRewards); n > 0 {
		items := state.LotteryRewards[r.Seed%uint32(n)].Items
		gen := newXoroshiro(uint64(r.Seed))

		r.Boosted = req.Boost > 0 && len(items) > 0

		// One draw plus one per boost tier.
		for range 1 + max(req.Boost, 0) {
			if len(items) == 0 {
				break
			}

			rewards = append(rewards, items[gen.nextInt(uint64(len(items)))])
		}
	}

	return enc, rewards, true
}
