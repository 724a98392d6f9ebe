package scan_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ethpandaops/raid-crawler/internal/delivery"
	"github.com/ethpandaops/raid-crawler/internal/filter"
	"github.com/ethpandaops/raid-crawler/internal/operator"
	opmocks "github.com/ethpandaops/raid-crawler/internal/operator/mocks"
	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/scan"
	"github.com/ethpandaops/raid-crawler/internal/scan/mocks"
)

type noDelivery struct{}

func (noDelivery) State() *delivery.State { return nil }

type fixture struct {
	reader   *mocks.MockBlockReader
	decoder  *mocks.MockDecoder
	reporter *opmocks.MockReporter
	store    *scan.Store
}

func newFixture(t *testing.T, cfg scan.Config, filters ...filter.Filter) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		reader:   mocks.NewMockBlockReader(ctrl),
		decoder:  mocks.NewMockDecoder(ctrl),
		reporter: opmocks.NewMockReporter(ctrl),
	}
	f.store = scan.NewStore(logger, cfg, f.reader, f.decoder, noDelivery{}, filter.NewStatic(filters...), f.reporter)

	return f
}

func result(region raid.Region, n int, seedBase uint32) scan.DecodeResult {
	res := scan.DecodeResult{}

	for i := range n {
		res.Raids = append(res.Raids, raid.Raid{Seed: seedBase + uint32(i), Region: region, TeraType: raid.TeraType(i % 18)})
		res.Encounters = append(res.Encounters, raid.Encounter{Species: uint16(i + 1)})
		res.Rewards = append(res.Rewards, []raid.Reward{})
	}

	return res
}

func (f *fixture) expectRegion(region raid.Region, res scan.DecodeResult) {
	block := []byte{byte(region)}

	f.reader.EXPECT().Read(gomock.Any(), region).Return(block, nil)
	f.decoder.EXPECT().
		Decode(gomock.Cond(func(req scan.DecodeRequest) bool { return req.Region == region })).
		Return(res, nil)
}

func TestStore_ReadAllJoinsRegionsInOrder(t *testing.T) {
	fire := &filter.Rule{RuleName: "fire", TeraTypes: []raid.TeraType{raid.Fire}}
	f := newFixture(t, scan.Config{Regions: raid.Regions}, fire)

	f.expectRegion(raid.Paldea, result(raid.Paldea, 10, 100))
	f.expectRegion(raid.Kitakami, result(raid.Kitakami, 5, 200))
	f.expectRegion(raid.Blueberry, result(raid.Blueberry, 3, 300))

	snap, err := f.store.ReadAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 18, snap.Len())
	assert.Equal(t, 10, snap.RegionCount(raid.Paldea))
	assert.Equal(t, 5, snap.RegionCount(raid.Kitakami))
	assert.Equal(t, 3, snap.RegionCount(raid.Blueberry))
	assert.Equal(t, raid.Paldea, snap.Raid(0).Region)
	assert.Equal(t, raid.Kitakami, snap.Raid(10).Region)
	assert.Equal(t, raid.Blueberry, snap.Raid(15).Region)

	entries := snap.Entries()
	assert.Len(t, entries, 18)

	for _, e := range entries {
		assert.NotNil(t, e.Rewards)
	}

	// Fire is tera type 9: Paldea index 9 only.
	view := f.store.View()
	assert.Equal(t, 1, view.MatchCount)
	assert.Same(t, snap, view.Snapshot)
}

func TestStore_NoRegionsFailsBeforeIO(t *testing.T) {
	f := newFixture(t, scan.Config{})

	_, err := f.store.ReadAll(context.Background())
	require.ErrorIs(t, err, scan.ErrNoRegionsSelected)
	assert.Nil(t, f.store.Snapshot())
}

func TestStore_OnlyEnabledRegionsRead(t *testing.T) {
	f := newFixture(t, scan.Config{Regions: []raid.Region{raid.Blueberry, raid.Paldea}})

	f.expectRegion(raid.Paldea, result(raid.Paldea, 2, 1))
	f.expectRegion(raid.Blueberry, result(raid.Blueberry, 1, 50))

	snap, err := f.store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []raid.Region{raid.Paldea, raid.Blueberry}, f.store.Regions())
	assert.Equal(t, raid.Blueberry, snap.Raid(2).Region)
}

func TestStore_CorruptedRead(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{name: "empty", count: 0},
		{name: "over maximum", count: raid.MaxPlausibleCount() + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, scan.Config{Regions: []raid.Region{raid.Kitakami}})
			f.expectRegion(raid.Kitakami, result(raid.Kitakami, tt.count, 1))
			f.reporter.EXPECT().Report(gomock.Cond(func(m operator.Message) bool {
				return m.Kind == operator.KindCorrupted
			}))

			snap, err := f.store.ReadAll(context.Background())
			require.ErrorIs(t, err, scan.ErrCorruptedRead)
			require.NotNil(t, snap)
			assert.Equal(t, tt.count, snap.Len())
		})
	}
}

func TestStore_DecodeDiagnosticsAreNonFatal(t *testing.T) {
	dumpDir := t.TempDir()
	f := newFixture(t, scan.Config{Regions: []raid.Region{raid.Paldea}, DumpDir: dumpDir})

	res := result(raid.Paldea, 4, 1)
	res.BadDelivery = 2
	res.BadEncounter = 1

	f.expectRegion(raid.Paldea, res)
	f.reporter.EXPECT().Report(gomock.Cond(func(m operator.Message) bool {
		return m.Kind == operator.KindDiagnostic &&
			m.Fields["bad_delivery"] == 2 &&
			m.Fields["dump"] == raid.Paldea.DebugDumpName()
	}))

	snap, err := f.store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Len())

	_, err = os.Stat(filepath.Join(dumpDir, raid.Paldea.DebugDumpName()))
	assert.NoError(t, err)
}

func TestStore_MisalignedDecodeKeepsPreviousSnapshot(t *testing.T) {
	f := newFixture(t, scan.Config{Regions: []raid.Region{raid.Paldea}})

	f.expectRegion(raid.Paldea, result(raid.Paldea, 3, 1))

	first, err := f.store.ReadAll(context.Background())
	require.NoError(t, err)

	bad := result(raid.Paldea, 3, 10)
	bad.Rewards = bad.Rewards[:2]
	f.expectRegion(raid.Paldea, bad)

	_, err = f.store.ReadAll(context.Background())
	require.Error(t, err)
	assert.Same(t, first, f.store.Snapshot())
}

func TestStore_ActiveIndexClampsOnShrink(t *testing.T) {
	f := newFixture(t, scan.Config{Regions: []raid.Region{raid.Paldea}})

	f.expectRegion(raid.Paldea, result(raid.Paldea, 5, 1))
	_, err := f.store.ReadAll(context.Background())
	require.NoError(t, err)

	f.store.Previous(false)
	assert.Equal(t, 4, f.store.View().Active)

	f.expectRegion(raid.Paldea, result(raid.Paldea, 3, 1))
	_, err = f.store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.View().Active)
}

func TestStore_NavigationSkipsToMatches(t *testing.T) {
	rule := &filter.Rule{RuleName: "some", TeraTypes: []raid.TeraType{raid.Flying, raid.Rock}}
	f := newFixture(t, scan.Config{Regions: []raid.Region{raid.Paldea}}, rule)

	f.expectRegion(raid.Paldea, result(raid.Paldea, 6, 1))
	_, err := f.store.ReadAll(context.Background())
	require.NoError(t, err)

	// Flying is index 2, Rock index 5.
	assert.Equal(t, 2, f.store.Next(true).Active)
	assert.Equal(t, 5, f.store.Next(true).Active)
	assert.Equal(t, 2, f.store.Next(true).Active)
	assert.Equal(t, 5, f.store.Previous(true).Active)
	assert.Equal(t, 0, f.store.Next(false).Active)
	assert.Equal(t, 5, f.store.Previous(false).Active)
}

func TestStore_SetBoostRederivesWithoutIO(t *testing.T) {
	f := newFixture(t, scan.Config{Regions: []raid.Region{raid.Paldea}})

	f.expectRegion(raid.Paldea, result(raid.Paldea, 2, 1))
	first, err := f.store.ReadAll(context.Background())
	require.NoError(t, err)

	f.decoder.EXPECT().
		Decode(gomock.Cond(func(req scan.DecodeRequest) bool { return req.Boost == 2 })).
		Return(result(raid.Paldea, 2, 1), nil)

	require.NoError(t, f.store.SetBoost(2))

	snap := f.store.Snapshot()
	assert.Greater(t, snap.Version(), first.Version())
	assert.Equal(t, 2, snap.Params().Boost)
	assert.True(t, first.Seeds().Equal(snap.Seeds()))

	// Same boost is a no-op.
	require.NoError(t, f.store.SetBoost(2))
}

func TestStore_BoostChangedDuringReadIsApplied(t *testing.T) {
	f := newFixture(t, scan.Config{Regions: []raid.Region{raid.Paldea}})

	f.reader.EXPECT().Read(gomock.Any(), raid.Paldea).Return([]byte{byte(raid.Paldea)}, nil)

	gomock.InOrder(
		f.decoder.EXPECT().
			Decode(gomock.Cond(func(req scan.DecodeRequest) bool { return req.Boost == 0 })).
			DoAndReturn(func(scan.DecodeRequest) (scan.DecodeResult, error) {
				// The operator changes the boost while the console is being read.
				require.NoError(t, f.store.SetBoost(3))

				return result(raid.Paldea, 2, 1), nil
			}),
		f.decoder.EXPECT().
			Decode(gomock.Cond(func(req scan.DecodeRequest) bool { return req.Boost == 3 })).
			Return(result(raid.Paldea, 2, 1), nil),
	)

	snap, err := f.store.ReadAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Params().Boost)
	assert.Equal(t, 3, f.store.Params().Boost)
	assert.Equal(t, 2, snap.Len())
}

func TestStore_CancelledBeforeRead(t *testing.T) {
	f := newFixture(t, scan.Config{Regions: raid.Regions})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.store.ReadAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

type viewRecorder struct{ views []scan.View }

func (v *viewRecorder) OnSnapshot(view scan.View) { v.views = append(v.views, view) }

func TestStore_ListenersSeeEveryPublish(t *testing.T) {
	f := newFixture(t, scan.Config{Regions: []raid.Region{raid.Paldea}})

	listener := &viewRecorder{}
	f.store.Subscribe(listener)

	f.expectRegion(raid.Paldea, result(raid.Paldea, 4, 10))
	f.expectRegion(raid.Paldea, result(raid.Paldea, 3, 20))

	for range 2 {
		_, err := f.store.ReadAll(context.Background())
		require.NoError(t, err)
	}

	require.Len(t, listener.views, 2)
	assert.Equal(t, 4, listener.views[0].Snapshot.Len())
	assert.Equal(t, 3, listener.views[1].Snapshot.Len())
	assert.Greater(t, listener.views[1].Snapshot.Version(), listener.views[0].Snapshot.Version())
}
