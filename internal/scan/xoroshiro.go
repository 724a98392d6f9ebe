package scan

import "math/bits"

const xoroshiroSeed1 = 0x82A2B175229D6A5B

// xoroshiro is the xoroshiro128+ generator the game seeds from raid seeds.
type xoroshiro struct {
	s0, s1 uint64
}

func newXoroshiro(seed uint64) *xoroshiro {
	return &xoroshiro{s0: seed, s1: xoroshiroSeed1}
}

func (x *xoroshiro) next() uint64 {
	s0, s1 := x.s0, x.s1
	result := s0 + s1

	s1 ^= s0
	x.s0 = bits.RotateLeft64(s0, 24) ^ s1 ^ (s1 << 16)
	x.s1 = bits.RotateLeft64(s1, 37)

	return result
}

// nextInt returns a value in [0, limit) by masked rejection sampling.
func (x *xoroshiro) nextInt(limit uint64) uint64 {
	mask := bitmask(limit)

	for {
		if r := x.next() & mask; r < limit {
			return r
		}
	}
}

func bitmask(x uint64) uint64 {
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32

	return x
}
