package scan

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/delivery"
	"github.com/ethpandaops/raid-crawler/internal/operator"
	"github.com/ethpandaops/raid-crawler/internal/raid"
)

// Config controls which regions are scanned and where decode diagnostics go.
type Config struct {
	Regions []raid.Region
	DumpDir string // empty disables debug dumps
}

// Store owns the current raid snapshot. Reads build a complete new snapshot
// and swap it in; readers never observe a partially built one.
type Store struct {
	log      logrus.FieldLogger
	reader   BlockReader
	decoder  Decoder
	delivery DeliverySource
	filters  FilterSource
	reporter operator.Reporter
	dumpDir  string

	listeners []Listener

	// mu serializes writers. Readers go through view.
	mu      sync.Mutex
	regions []raid.Region
	params  raid.Params
	blocks  map[raid.Region][]byte
	version uint64

	view atomic.Pointer[View]
}

// NewStore creates an empty store.
func NewStore(
	log logrus.FieldLogger,
	cfg Config,
	reader BlockReader,
	decoder Decoder,
	deliverySrc DeliverySource,
	filters FilterSource,
	reporter operator.Reporter,
) *Store {
	s := &Store{
		log:      log.WithField("component", "scan"),
		reader:   reader,
		decoder:  decoder,
		delivery: deliverySrc,
		filters:  filters,
		reporter: reporter,
		dumpDir:  cfg.DumpDir,
		blocks:   make(map[raid.Region][]byte, len(raid.Regions)),
	}

	s.SetRegions(cfg.Regions)
	s.view.Store(&View{})

	return s
}

// Subscribe registers l for snapshot notifications. It must be called
// before the first read.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, l)
}

// SetRegions replaces the set of scanned regions.
func (s *Store) SetRegions(regions []raid.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.regions = s.regions[:0]

	for _, r := range raid.Regions {
		if slices.Contains(regions, r) {
			s.regions = append(s.regions, r)
		}
	}
}

// Regions returns the scanned regions in scan order.
func (s *Store) Regions() []raid.Region {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.regions)
}

// SetProgress records the story and event progress used by the next read.
func (s *Store) SetProgress(story, event int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params.StoryProgress = story
	s.params.EventProgress = event
}

// Params returns the decode parameters of the next read.
func (s *Store) Params() raid.Params {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.params
}

// View returns the current snapshot with its derived selection state.
func (s *Store) View() View {
	return *s.view.Load()
}

// Snapshot returns the current snapshot, nil before the first read.
func (s *Store) Snapshot() *raid.Snapshot {
	return s.view.Load().Snapshot
}

// ReadAll scans every enabled region and publishes the joined snapshot. A
// corrupted read is still published, and ErrCorruptedRead is returned with it.
func (s *Store) ReadAll(ctx context.Context) (*raid.Snapshot, error) {
	s.mu.Lock()
	regions := slices.Clone(s.regions)
	params := s.params
	s.mu.Unlock()

	if len(regions) == 0 {
		readsTotal.WithLabelValues("config_error").Inc()

		return nil, ErrNoRegionsSelected
	}

	deliveryState := s.delivery.State()
	batches := make([]raid.Batch, 0, len(regions))
	blocks := make(map[raid.Region][]byte, len(regions))

	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		block, err := s.reader.Read(ctx, region)
		if err != nil {
			readsTotal.WithLabelValues("error").Inc()

			return nil, fmt.Errorf("read %s block: %w", region, err)
		}

		batch, err := s.decode(region, block, params, deliveryState)
		if err != nil {
			readsTotal.WithLabelValues("error").Inc()

			return nil, err
		}

		blocks[region] = block
		batches = append(batches, batch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for region, block := range blocks {
		s.blocks[region] = block
	}

	// Boost or progress changed while the blocks were read: decode them again
	// so the published snapshot carries the current params.
	if s.params != params {
		params = s.params
		batches = batches[:0]

		for _, region := range regions {
			batch, err := s.decode(region, blocks[region], params, deliveryState)
			if err != nil {
				readsTotal.WithLabelValues("error").Inc()

				return nil, err
			}

			batches = append(batches, batch)
		}
	}

	snap, err := s.publishLocked(params, batches)
	if err != nil {
		readsTotal.WithLabelValues("error").Inc()

		return nil, err
	}

	if total := snap.Len(); total == 0 || total > raid.MaxPlausibleCount() {
		readsTotal.WithLabelValues("corrupted").Inc()

		s.reporter.Report(operator.Warn(operator.KindCorrupted,
			"Bad read, ensure nothing running on the console shifts memory, then reboot it and try again",
			map[string]any{"raids": total}))

		return snap, fmt.Errorf("%w: %d raids", ErrCorruptedRead, total)
	}

	readsTotal.WithLabelValues("ok").Inc()

	return snap, nil
}

// SetBoost changes the difficulty boost and re-derives rewards from the
// blocks of the last read. No console I/O is performed.
func (s *Store) SetBoost(boost int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.params.Boost == boost {
		return nil
	}

	s.params.Boost = boost

	current := s.view.Load().Snapshot
	if current == nil {
		return nil
	}

	deliveryState := s.delivery.State()
	batches := make([]raid.Batch, 0, len(s.regions))

	for _, region := range raid.Regions {
		if current.RegionCount(region) == 0 {
			continue
		}

		block, ok := s.blocks[region]
		if !ok {
			continue
		}

		batch, err := s.decode(region, block, s.params, deliveryState)
		if err != nil {
			return err
		}

		batches = append(batches, batch)
	}

	_, err := s.publishLocked(s.params, batches)

	return err
}

// RecountMatches refreshes the match count after the filters changed.
func (s *Store) RecountMatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.view.Load()
	next := *current
	next.MatchCount = s.filters.Set().CountMatches(current.Snapshot, s.params.Boost)
	s.view.Store(&next)
	matchGauge.Set(float64(next.MatchCount))

	return next.MatchCount
}

// Next moves the active index forward with wrap-around. With toMatch set it
// moves to the next raid matching a filter, if any matches.
func (s *Store) Next(toMatch bool) View {
	return s.step(1, toMatch)
}

// Previous moves the active index backward with wrap-around.
func (s *Store) Previous(toMatch bool) View {
	return s.step(-1, toMatch)
}

func (s *Store) step(dir int, toMatch bool) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.view.Load()
	n := current.Snapshot.Len()

	if n == 0 {
		return *current
	}

	next := *current
	next.Active = wrap(current.Active+dir, n)

	if toMatch && current.MatchCount > 0 {
		set, snap := s.filters.Set(), current.Snapshot

		for i := 1; i <= n; i++ {
			idx := wrap(current.Active+dir*i, n)
			if set.MatchesAny(snap, snap.Encounter(idx), snap.Raid(idx), s.params.Boost) {
				next.Active = idx

				break
			}
		}
	}

	s.view.Store(&next)

	return next
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

func (s *Store) publishLocked(params raid.Params, batches []raid.Batch) (*raid.Snapshot, error) {
	s.version++

	snap, err := raid.NewSnapshot(s.version, params, batches...)
	if err != nil {
		return nil, err
	}

	active := s.view.Load().Active
	if active >= snap.Len() {
		active = 0
	}

	view := &View{
		Snapshot:   snap,
		MatchCount: s.filters.Set().CountMatches(snap, params.Boost),
		Active:     active,
	}
	s.view.Store(view)

	for _, region := range raid.Regions {
		raidsGauge.WithLabelValues(region.String()).Set(float64(snap.RegionCount(region)))
	}

	matchGauge.Set(float64(view.MatchCount))

	for _, l := range s.listeners {
		l.OnSnapshot(*view)
	}

	s.log.WithFields(logrus.Fields{
		"version": snap.Version(),
		"raids":   snap.Len(),
		"matches": view.MatchCount,
	}).Debug("Published raid snapshot")

	return snap, nil
}

func (s *Store) decode(
	region raid.Region,
	block []byte,
	params raid.Params,
	deliveryState *delivery.State,
) (raid.Batch, error) {
	res, err := s.decoder.Decode(DecodeRequest{
		Block:         block,
		Region:        region,
		StoryProgress: params.StoryProgress,
		EventProgress: params.EventProgress,
		Boost:         params.Boost,
		Delivery:      deliveryState,
	})
	if err != nil {
		return raid.Batch{}, fmt.Errorf("decode %s block: %w", region, err)
	}

	s.reportDecodeQuality(region, block, res)

	batch := raid.Batch{
		Region:     region,
		Raids:      res.Raids,
		Encounters: res.Encounters,
		Rewards:    res.Rewards,
	}

	if err := batch.Validate(); err != nil {
		return raid.Batch{}, err
	}

	return batch, nil
}

func (s *Store) reportDecodeQuality(region raid.Region, block []byte, res DecodeResult) {
	if res.BadDelivery == 0 && res.BadEncounter == 0 {
		return
	}

	decodeFailures.WithLabelValues(region.String(), "delivery").Add(float64(res.BadDelivery))
	decodeFailures.WithLabelValues(region.String(), "encounter").Add(float64(res.BadEncounter))

	dump := region.DebugDumpName()

	if s.dumpDir != "" {
		if err := writeDump(filepath.Join(s.dumpDir, dump), block); err != nil {
			s.log.WithError(err).Warn("Failed to write raid debug dump")
		}
	}

	s.reporter.Report(operator.Warn(operator.KindDiagnostic,
		fmt.Sprintf("%s: %d delivery and %d encounter lookups failed, see %s",
			region, res.BadDelivery, res.BadEncounter, dump),
		map[string]any{
			"region":        region.String(),
			"bad_delivery":  res.BadDelivery,
			"bad_encounter": res.BadEncounter,
			"dump":          dump,
		}))
}

func writeDump(path string, block []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dump dir: %w", err)
	}

	return os.WriteFile(path, []byte(hex.Dump(block)), 0o600)
}

// Select makes index i the active raid. Out of range indexes are ignored.
func (s *Store) Select(i int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.view.Load()
	if i < 0 || i >= current.Snapshot.Len() {
		return *current
	}

	next := *current
	next.Active = i
	s.view.Store(&next)

	return next
}
