package search_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ethpandaops/raid-crawler/internal/filter"
	"github.com/ethpandaops/raid-crawler/internal/history"
	"github.com/ethpandaops/raid-crawler/internal/notify"
	notifymocks "github.com/ethpandaops/raid-crawler/internal/notify/mocks"
	"github.com/ethpandaops/raid-crawler/internal/operator"
	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/scan"
	"github.com/ethpandaops/raid-crawler/internal/search"
	"github.com/ethpandaops/raid-crawler/internal/search/mocks"
	"github.com/ethpandaops/raid-crawler/internal/session"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }

type statsCollector struct{ seen []search.Stats }

func (s *statsCollector) OnStats(stats search.Stats) { s.seen = append(s.seen, stats) }

type fixture struct {
	console  *mocks.MockConsole
	scanner  *mocks.MockScanner
	sink     *notifymocks.MockSink
	pointers *countingInvalidator
	messages *operator.History
	observer *statsCollector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	return &fixture{
		console:  mocks.NewMockConsole(ctrl),
		scanner:  mocks.NewMockScanner(ctrl),
		sink:     notifymocks.NewMockSink(ctrl),
		pointers: &countingInvalidator{},
		messages: operator.NewHistory(256),
		observer: &statsCollector{},
	}
}

func (f *fixture) engine(cfg search.Config, recorder search.Recorder, filters ...filter.Filter) *search.Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return search.NewEngine(logger, cfg, search.Deps{
		Console:     f.console,
		Scanner:     f.scanner,
		Pointers:    f.pointers,
		Filters:     filter.NewStatic(filters...),
		Sink:        f.sink,
		Reporter:    f.messages,
		Recorder:    recorder,
		Observers:   []search.Observer{f.observer},
		ConsoleName: "switch-1",
	})
}

func (f *fixture) errorMessages() []operator.Message {
	var out []operator.Message

	for _, m := range f.messages.Messages() {
		if m.Level == operator.LevelError {
			out = append(out, m)
		}
	}

	return out
}

// snapshot builds a one-region snapshot; species[i] is paired with seeds[i].
func snapshot(t *testing.T, seeds []uint32, species ...uint16) *raid.Snapshot {
	t.Helper()

	batch := raid.Batch{Region: raid.Paldea}

	for i, seed := range seeds {
		enc := raid.Encounter{Species: 1}
		if i < len(species) {
			enc.Species = species[i]
		}

		batch.Raids = append(batch.Raids, raid.Raid{Seed: seed, Region: raid.Paldea})
		batch.Encounters = append(batch.Encounters, enc)
		batch.Rewards = append(batch.Rewards, []raid.Reward{})
	}

	snap, err := raid.NewSnapshot(1, raid.Params{StoryProgress: 4}, batch)
	require.NoError(t, err)

	return snap
}

func TestEngine_IdenticalSeedsKeepSearching(t *testing.T) {
	f := newFixture(t)

	base := snapshot(t, []uint32{1, 2, 3})
	reordered := snapshot(t, []uint32{3, 1, 2})
	changed := snapshot(t, []uint32{4, 5, 6})

	f.scanner.EXPECT().Snapshot().Return(base)

	gomock.InOrder(
		f.console.EXPECT().AdvanceDate(gomock.Any(), 0, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(reordered, nil),
		f.console.EXPECT().AdvanceDate(gomock.Any(), 1, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(changed, nil),
	)

	engine := f.engine(search.Config{}, nil)

	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, history.OutcomeChanged, res.Outcome)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Matches)

	stats := engine.Stats()
	assert.Equal(t, search.StateIdle, stats.State)
	assert.Equal(t, uint64(2), stats.Tries)
	assert.Equal(t, uint64(1), stats.Successes)
	assert.Equal(t, uint64(2), stats.RunTries)
	assert.Equal(t, uint64(1), stats.RunSuccesses)
	assert.Equal(t, history.OutcomeChanged, stats.LastOutcome)
	assert.Empty(t, f.errorMessages())

	require.NotEmpty(t, f.observer.seen)
	assert.Equal(t, search.StateRunning, f.observer.seen[0].State)
	assert.Equal(t, search.StateIdle, f.observer.seen[len(f.observer.seen)-1].State)
}

func TestEngine_ResetThresholdRestartsGame(t *testing.T) {
	f := newFixture(t)

	same := snapshot(t, []uint32{7, 8})
	changed := snapshot(t, []uint32{9})

	f.scanner.EXPECT().Snapshot().Return(same)

	gomock.InOrder(
		f.console.EXPECT().AdvanceDate(gomock.Any(), 0, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(same, nil),
		f.console.EXPECT().AdvanceDate(gomock.Any(), 1, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(same, nil),
		f.console.EXPECT().SaveGame(gomock.Any()).Return(nil),
		f.console.EXPECT().CloseGame(gomock.Any()).Return(nil),
		f.console.EXPECT().StartGame(gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(same, nil),
		f.console.EXPECT().AdvanceDate(gomock.Any(), 0, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(changed, nil),
	)

	engine := f.engine(search.Config{ResetThreshold: 2}, nil)

	res, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, history.OutcomeChanged, res.Outcome)

	assert.Equal(t, 1, f.pointers.calls)

	stats := engine.Stats()
	assert.Equal(t, uint64(3), stats.RunTries)
	assert.Equal(t, uint64(1), stats.Resets)
	assert.Equal(t, 1, stats.Skips)
}

func TestEngine_StopLetsRunningCommandFinish(t *testing.T) {
	f := newFixture(t)

	f.scanner.EXPECT().Snapshot().Return(snapshot(t, []uint32{1}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.console.EXPECT().
		AdvanceDate(gomock.Any(), 0, gomock.Any()).
		DoAndReturn(func(callCtx context.Context, _ int, progress session.ProgressFunc) error {
			progress(50)
			cancel()

			// The stop must not reach a command already on the wire.
			assert.NoError(t, callCtx.Err())

			return nil
		})

	// No read follows: the loop exits at the next boundary.
	f.scanner.EXPECT().ReadAll(gomock.Any()).Times(0)

	engine := f.engine(search.Config{}, nil)
	engine.RestoreTotals(10, 4)

	res, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, history.OutcomeCancelled, res.Outcome)
	assert.Empty(t, f.errorMessages())

	stats := engine.Stats()
	assert.Equal(t, uint64(10), stats.Tries)
	assert.Equal(t, uint64(4), stats.Successes)
	assert.Zero(t, stats.RunTries)
	assert.Equal(t, search.StateIdle, stats.State)
	assert.Zero(t, stats.Progress)
}

func TestEngine_StopDuringRestartCompletesRestart(t *testing.T) {
	f := newFixture(t)

	same := snapshot(t, []uint32{7, 8})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notCancelled := func(callCtx context.Context) error {
		assert.NoError(t, callCtx.Err())

		return nil
	}

	f.scanner.EXPECT().Snapshot().Return(same)

	gomock.InOrder(
		f.console.EXPECT().AdvanceDate(gomock.Any(), 0, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(same, nil),
		f.console.EXPECT().SaveGame(gomock.Any()).DoAndReturn(func(callCtx context.Context) error {
			// Offsets are gone before the game is touched.
			assert.Equal(t, 1, f.pointers.calls)

			return notCancelled(callCtx)
		}),
		f.console.EXPECT().CloseGame(gomock.Any()).DoAndReturn(func(callCtx context.Context) error {
			cancel()

			return notCancelled(callCtx)
		}),
		f.console.EXPECT().StartGame(gomock.Any()).DoAndReturn(notCancelled),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(same, nil),
	)

	engine := f.engine(search.Config{ResetThreshold: 1}, nil)

	res, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, history.OutcomeCancelled, res.Outcome)

	assert.Equal(t, 1, f.pointers.calls)

	stats := engine.Stats()
	assert.Equal(t, uint64(1), stats.Resets)
	assert.Equal(t, uint64(1), stats.RunTries)
	assert.Zero(t, stats.Skips)
}

func TestEngine_FailedRestartDropsPointers(t *testing.T) {
	f := newFixture(t)

	same := snapshot(t, []uint32{7})

	f.scanner.EXPECT().Snapshot().Return(same)

	gomock.InOrder(
		f.console.EXPECT().AdvanceDate(gomock.Any(), 0, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(same, nil),
		f.console.EXPECT().SaveGame(gomock.Any()).Return(nil),
		f.console.EXPECT().CloseGame(gomock.Any()).Return(session.Wrap("close game", io.EOF)),
	)

	engine := f.engine(search.Config{ResetThreshold: 1}, nil)

	res, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.True(t, session.IsTransport(err))
	assert.Equal(t, history.OutcomeFailed, res.Outcome)
	assert.Equal(t, 1, f.pointers.calls)
}

func TestEngine_MatchNotifiesAndSaves(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockRecorder(ctrl)

	base := snapshot(t, []uint32{1, 2})
	found := snapshot(t, []uint32{3, 4}, 10, 25)

	f.scanner.EXPECT().Snapshot().Return(base)
	f.console.EXPECT().AdvanceDate(gomock.Any(), 0, gomock.Any()).Return(nil)
	f.scanner.EXPECT().ReadAll(gomock.Any()).Return(found, nil)
	f.scanner.EXPECT().Select(1).Return(scan.View{Snapshot: found, Active: 1, MatchCount: 1})

	f.sink.EXPECT().
		Send(gomock.Any(), gomock.Cond(func(n notify.Notification) bool {
			return n.Filter == "pikachu" && n.Raid.Seed == 4 && n.Encounter.Species == 25
		})).
		Return(nil)

	f.console.EXPECT().SaveGame(gomock.Any()).Return(nil)

	var runID string

	recorder.EXPECT().
		RunStarted(gomock.Any(), gomock.Cond(func(run history.Run) bool { return run.Console == "switch-1" })).
		DoAndReturn(func(_ context.Context, run history.Run) error {
			runID = run.ID

			return nil
		})
	recorder.EXPECT().
		MatchFound(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, n notify.Notification) error {
			assert.Equal(t, runID, id)
			assert.Equal(t, "pikachu", n.Filter)

			return nil
		})
	recorder.EXPECT().
		RunFinished(gomock.Any(), gomock.Cond(func(run history.Run) bool {
			return run.Outcome == history.OutcomeMatched && run.Tries == 1 && run.Successes == 1
		})).
		Return(nil)

	cfg := search.Config{FiltersEnabled: true, NotificationsEnabled: true, SaveOnMatch: true}
	engine := f.engine(cfg, recorder, &filter.Rule{RuleName: "pikachu", Species: []uint16{25}})

	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, history.OutcomeMatched, res.Outcome)
	assert.Equal(t, runID, res.RunID)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, uint32(4), res.Matches[0].Raid.Seed)

	var kinds []operator.Kind
	for _, m := range f.messages.Messages() {
		kinds = append(kinds, m.Kind)
	}

	assert.Contains(t, kinds, operator.KindMatch)
}

func TestEngine_FilterStopRules(t *testing.T) {
	tests := []struct {
		name    string
		cfg     search.Config
		filters []filter.Filter
		// species of the raids after each advance; the run must end after the last one
		reads   [][]uint16
		outcome history.Outcome
	}{
		{
			name:    "filters disabled stop on any change",
			cfg:     search.Config{FiltersEnabled: false},
			filters: []filter.Filter{&filter.Rule{RuleName: "never", Species: []uint16{999}}},
			reads:   [][]uint16{{1}},
			outcome: history.OutcomeChanged,
		},
		{
			name:    "no enabled filter stops on any change",
			cfg:     search.Config{FiltersEnabled: true},
			filters: []filter.Filter{&filter.Rule{RuleName: "off", Disabled: true}},
			reads:   [][]uint16{{1}},
			outcome: history.OutcomeChanged,
		},
		{
			name:    "unmatched change continues",
			cfg:     search.Config{FiltersEnabled: true},
			filters: []filter.Filter{&filter.Rule{RuleName: "mew", Species: []uint16{151}}},
			reads:   [][]uint16{{1}, {2}, {151}},
			outcome: history.OutcomeMatched,
		},
		{
			name:    "stop on change without match",
			cfg:     search.Config{FiltersEnabled: true, StopOnChange: true},
			filters: []filter.Filter{&filter.Rule{RuleName: "mew", Species: []uint16{151}}},
			reads:   [][]uint16{{1}},
			outcome: history.OutcomeChanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.scanner.EXPECT().Snapshot().Return(snapshot(t, []uint32{100}))
			f.scanner.EXPECT().Select(gomock.Any()).Return(scan.View{}).AnyTimes()

			for i, species := range tt.reads {
				next := snapshot(t, []uint32{uint32(200 + i)}, species...)

				f.console.EXPECT().AdvanceDate(gomock.Any(), i, gomock.Any()).Return(nil)
				f.scanner.EXPECT().ReadAll(gomock.Any()).Return(next, nil)
			}

			engine := f.engine(tt.cfg, nil, tt.filters...)

			res, err := engine.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, uint64(len(tt.reads)), engine.Stats().RunSuccesses)
		})
	}
}

func TestEngine_CorruptedReadKeepsBaseline(t *testing.T) {
	f := newFixture(t)

	base := snapshot(t, []uint32{1, 2})
	empty := snapshot(t, nil)

	f.scanner.EXPECT().Snapshot().Return(base)

	gomock.InOrder(
		f.console.EXPECT().AdvanceDate(gomock.Any(), 0, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(empty, fmt.Errorf("paldea: %w", scan.ErrCorruptedRead)),
		f.console.EXPECT().AdvanceDate(gomock.Any(), 1, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(base, nil),
		f.console.EXPECT().AdvanceDate(gomock.Any(), 2, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(snapshot(t, []uint32{3}), nil),
	)

	engine := f.engine(search.Config{}, nil)

	res, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, history.OutcomeChanged, res.Outcome)

	stats := engine.Stats()
	assert.Equal(t, uint64(3), stats.RunTries)
	assert.Equal(t, uint64(1), stats.RunSuccesses)
}

func TestEngine_ErrorsAreReported(t *testing.T) {
	f := newFixture(t)

	f.scanner.EXPECT().Snapshot().Return(snapshot(t, []uint32{1}))
	f.console.EXPECT().
		AdvanceDate(gomock.Any(), 0, gomock.Any()).
		Return(errors.New("connection reset by peer"))

	engine := f.engine(search.Config{}, nil)

	res, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "advance date")
	assert.Equal(t, history.OutcomeFailed, res.Outcome)
	assert.Len(t, f.errorMessages(), 1)
	assert.False(t, engine.Running())
}

func TestEngine_BaselineReadWhenNoSnapshot(t *testing.T) {
	f := newFixture(t)

	gomock.InOrder(
		f.scanner.EXPECT().Snapshot().Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(snapshot(t, []uint32{1}), nil),
		f.console.EXPECT().AdvanceDate(gomock.Any(), 0, gomock.Any()).Return(nil),
		f.scanner.EXPECT().ReadAll(gomock.Any()).Return(snapshot(t, []uint32{2}), nil),
	)

	engine := f.engine(search.Config{}, nil)

	res, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, history.OutcomeChanged, res.Outcome)
}
