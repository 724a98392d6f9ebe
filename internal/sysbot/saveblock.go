package sysbot

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/ethpandaops/raid-crawler/internal/session"
)

// Save block types as stored in the type byte.
const (
	blockBoolFalse = 1
	blockBoolTrue  = 2
	blockObject    = 4
)

// Keys of the raid difficulty unlock flags, lowest tier first.
var difficultyKeys = []uint32{
	0xEC95D8EF, // 3 star
	0xA9428DFE, // 4 star
	0x9535F471, // 5 star
	0x6E7F8220, // 6 star
}

const (
	tableEntrySize = 0x20
	blockHeaderLen = 9 // key, type, size
)

// xorshift is the keystream that obfuscates save blocks.
type xorshift struct {
	state   uint32
	counter uint
}

func newXorshift(seed uint32) *xorshift {
	for range bits.OnesCount32(seed) {
		seed = xorshiftAdvance(seed)
	}

	return &xorshift{state: seed}
}

func xorshiftAdvance(v uint32) uint32 {
	v ^= v << 2
	v ^= v >> 15
	v ^= v << 13

	return v
}

func (x *xorshift) next() byte {
	b := byte(x.state >> (x.counter << 3))

	if x.counter == 3 {
		x.state = xorshiftAdvance(x.state)
		x.counter = 0
	} else {
		x.counter++
	}

	return b
}

func (x *xorshift) next32() uint32 {
	return uint32(x.next()) | uint32(x.next())<<8 | uint32(x.next())<<16 | uint32(x.next())<<24
}

func (x *xorshift) apply(data []byte) {
	for i := range data {
		data[i] ^= x.next()
	}
}

// blockHeader is the decrypted head of a save block.
type blockHeader struct {
	typ  byte
	size uint32
	ks   *xorshift
}

func decodeHeader(key uint32, raw []byte) (blockHeader, error) {
	if len(raw) < blockHeaderLen {
		return blockHeader{}, fmt.Errorf("block %08X: short header", key)
	}

	if got := binary.LittleEndian.Uint32(raw); got != key {
		return blockHeader{}, fmt.Errorf("block %08X: header carries key %08X", key, got)
	}

	ks := newXorshift(key)
	h := blockHeader{typ: raw[4] ^ ks.next(), ks: ks}

	if h.typ == blockObject {
		h.size = binary.LittleEndian.Uint32(raw[5:9]) ^ ks.next32()
	}

	return h, nil
}

// findBlock binary searches the key table for key and returns the address of
// the block it points at.
func (c *Client) findBlock(ctx context.Context, key uint32) (uint64, error) {
	table, err := c.ResolvePointer(ctx, c.cfg.SaveBlockChain)
	if err != nil {
		return 0, err
	}

	bounds, err := c.ReadAbsolute(ctx, table, 16)
	if err != nil {
		return 0, err
	}

	start := binary.LittleEndian.Uint64(bounds[0:8])
	end := binary.LittleEndian.Uint64(bounds[8:16])

	if end < start || (end-start)%tableEntrySize != 0 {
		return 0, fmt.Errorf("save block table bounds %X..%X invalid", start, end)
	}

	lo, hi := 0, int((end-start)/tableEntrySize)-1

	for lo <= hi {
		mid := (lo + hi) / 2

		entry, err := c.ReadAbsolute(ctx, start+uint64(mid)*tableEntrySize, 16)
		if err != nil {
			return 0, err
		}

		switch got := binary.LittleEndian.Uint32(entry[0:4]); {
		case got == key:
			return binary.LittleEndian.Uint64(entry[8:16]), nil
		case got < key:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}

	return 0, fmt.Errorf("save block %08X not found", key)
}

func (c *Client) readHeader(ctx context.Context, key uint32) (uint64, blockHeader, error) {
	addr, err := c.findBlock(ctx, key)
	if err != nil {
		return 0, blockHeader{}, err
	}

	raw, err := c.ReadAbsolute(ctx, addr, blockHeaderLen)
	if err != nil {
		return 0, blockHeader{}, err
	}

	h, err := decodeHeader(key, raw)
	if err != nil {
		return 0, blockHeader{}, session.Wrap("read save block", err)
	}

	return addr, h, nil
}

// ReadSaveBlock implements session.Session. A size of 0 reads the whole
// block; a larger size is an error.
func (c *Client) ReadSaveBlock(ctx context.Context, key uint32, size int) ([]byte, error) {
	addr, h, err := c.readHeader(ctx, key)
	if err != nil {
		return nil, err
	}

	if h.typ != blockObject {
		return nil, fmt.Errorf("save block %08X has type %d, not an object", key, h.typ)
	}

	if size == 0 {
		size = int(h.size)
	}

	if size > int(h.size) {
		return nil, fmt.Errorf("save block %08X holds %d bytes, %d requested", key, h.size, size)
	}

	data, err := c.ReadAbsolute(ctx, addr+blockHeaderLen, size)
	if err != nil {
		return nil, err
	}

	h.ks.apply(data)

	return data, nil
}

// StoryProgress implements session.Session: the number of unlocked raid
// difficulty tiers above two stars.
func (c *Client) StoryProgress(ctx context.Context) (int, error) {
	for i := len(difficultyKeys) - 1; i >= 0; i-- {
		_, h, err := c.readHeader(ctx, difficultyKeys[i])
		if err != nil {
			return 0, err
		}

		switch h.typ {
		case blockBoolTrue:
			return i + 1, nil
		case blockBoolFalse:
		default:
			return 0, fmt.Errorf("flag %08X has type %d", difficultyKeys[i], h.typ)
		}
	}

	return 0, nil
}
