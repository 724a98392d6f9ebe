package block

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/session"
)

// Chains maps each region to the pointer chain leading to its raid block.
type Chains map[raid.Region][]int64

// DefaultChains are the pointer chains for game version 3.0.x.
func DefaultChains() Chains {
	return Chains{
		raid.Paldea:    {0x47350D8, 0x1C0, 0x88, 0x40},
		raid.Kitakami:  {0x47350D8, 0x1C0, 0x88, 0xCD8},
		raid.Blueberry: {0x47350D8, 0x1C0, 0x88, 0x1950},
	}
}

// Reader resolves and caches the base address of each region's raid block
// and reads the fixed-size block from it. A resolved address is reused until
// Invalidate is called.
type Reader struct {
	log     logrus.FieldLogger
	session session.Session
	chains  Chains

	mu      sync.Mutex
	address map[raid.Region]uint64
}

// NewReader creates a region reader over sess.
func NewReader(log logrus.FieldLogger, sess session.Session, chains Chains) *Reader {
	if chains == nil {
		chains = DefaultChains()
	}

	return &Reader{
		log:     log.WithField("component", "block_reader"),
		session: sess,
		chains:  chains,
		address: make(map[raid.Region]uint64, len(raid.Regions)),
	}
}

// Address returns the cached base address, or 0 if unresolved.
func (r *Reader) Address(region raid.Region) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.address[region]
}

// Resolve returns the base address of region, walking the pointer chain on
// the remote side only when no address is cached.
func (r *Reader) Resolve(ctx context.Context, region raid.Region) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if addr := r.address[region]; addr != 0 {
		return addr, nil
	}

	chain, ok := r.chains[region]
	if !ok || len(chain) == 0 {
		return 0, fmt.Errorf("no pointer chain configured for %s", region)
	}

	r.log.WithField("region", region.String()).Debug("Caching raid block pointer")

	addr, err := r.session.ResolvePointer(ctx, chain)
	if err != nil {
		return 0, session.Wrap(fmt.Sprintf("resolve %s pointer", region), err)
	}

	if addr == 0 {
		return 0, &session.TransportError{
			Op:  fmt.Sprintf("resolve %s pointer", region),
			Err: fmt.Errorf("chain resolved to null"),
		}
	}

	r.address[region] = addr

	r.log.WithFields(logrus.Fields{
		"region":  region.String(),
		"address": fmt.Sprintf("0x%X", addr),
	}).Debug("Resolved raid block pointer")

	return addr, nil
}

// ReadBlock reads the region's fixed-size block at address, skipping the
// static header where the region has one.
func (r *Reader) ReadBlock(ctx context.Context, region raid.Region, address uint64) ([]byte, error) {
	size := region.BlockSize()

	data, err := r.session.ReadAbsolute(ctx, address+region.HeaderOffset(), size)
	if err != nil {
		return nil, session.Wrap(fmt.Sprintf("read %s block", region), err)
	}

	if len(data) != size {
		return nil, &session.TransportError{
			Op:  fmt.Sprintf("read %s block", region),
			Err: fmt.Errorf("short read: got %d of %d bytes", len(data), size),
		}
	}

	return data, nil
}

// Read resolves region if needed and returns its raw block.
func (r *Reader) Read(ctx context.Context, region raid.Region) ([]byte, error) {
	addr, err := r.Resolve(ctx, region)
	if err != nil {
		return nil, err
	}

	return r.ReadBlock(ctx, region, addr)
}

// Invalidate forgets every cached address. Called on disconnect and after a
// game restart so the next read resolves fresh pointers.
func (r *Reader) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for region := range r.address {
		delete(r.address, region)
	}

	r.log.Debug("Cleared raid block pointer cache")
}
