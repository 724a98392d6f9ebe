package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/delivery"
	"github.com/ethpandaops/raid-crawler/internal/filter"
	"github.com/ethpandaops/raid-crawler/internal/lease"
	"github.com/ethpandaops/raid-crawler/internal/notify"
	"github.com/ethpandaops/raid-crawler/internal/operator"
	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/scan"
	"github.com/ethpandaops/raid-crawler/internal/session"
)

const teardownTimeout = 5 * time.Second

// Controller is the single worker driving one console. Console operations
// run one at a time; overlapping requests fail with ErrBusy.
type Controller struct {
	log     logrus.FieldLogger
	console string
	deps    Deps

	// connMu serializes connect and disconnect.
	connMu sync.Mutex

	mu           sync.Mutex
	op           string
	game         string
	sessCtx      context.Context //nolint:containedctx // session scope outlives requests
	sessCancel   context.CancelFunc
	searchCancel context.CancelFunc
	searchDone   chan struct{}
}

// New creates a disconnected controller for console.
func New(log logrus.FieldLogger, console string, deps Deps) *Controller {
	if deps.Lease == nil {
		deps.Lease = lease.Local{}
	}

	if deps.Sink == nil {
		deps.Sink = notify.Multi{}
	}

	return &Controller{
		log:     log.WithField("component", "crawler"),
		console: console,
		deps:    deps,
	}
}

// Connect opens the session, checks the title, reads story progress and
// event tables, then performs a first read. Connecting while connected is a
// no-op.
func (c *Controller) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.deps.Session.Connected() {
		return nil
	}

	done, err := c.begin("connect")
	if err != nil {
		return err
	}
	defer done()

	if err := c.deps.Lease.Acquire(ctx); err != nil {
		return fmt.Errorf("acquire console: %w", err)
	}

	if err := c.connect(ctx); err != nil {
		c.teardown()

		if rerr := c.deps.Lease.Release(context.WithoutCancel(ctx)); rerr != nil {
			c.log.WithError(rerr).Warn("Failed to release console lease")
		}

		if !errors.Is(err, context.Canceled) {
			c.deps.Reporter.Report(operator.Error("Unable to connect to the console", err))
		}

		return err
	}

	return nil
}

func (c *Controller) connect(ctx context.Context) error {
	c.log.Info("Connecting to console")
	c.deps.Reporter.Report(operator.Info(operator.KindStatus, "Connecting...", nil))

	if err := c.deps.Session.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	sessCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.sessCtx, c.sessCancel = sessCtx, cancel
	c.mu.Unlock()

	c.deps.Pointers.Invalidate()

	title, err := c.deps.Session.TitleID(ctx)
	if err != nil {
		return fmt.Errorf("read title id: %w", err)
	}

	game := session.GameName(title)
	if game == "" {
		return fmt.Errorf("%w: title %s", ErrUnsupportedGame, title)
	}

	progress, err := c.deps.Session.StoryProgress(ctx)
	if err != nil {
		return fmt.Errorf("read story progress: %w", err)
	}

	c.deps.Scanner.SetProgress(progress, min(progress, 3))

	c.deps.Reporter.Report(operator.Info(operator.KindStatus, "Reading event raid status...", nil))

	outcome, err := c.deps.Delivery.Refresh(ctx, false)
	if err != nil {
		if session.IsTransport(err) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("refresh event raids: %w", err)
		}

		// Standard raids still decode without event tables.
		c.log.WithError(err).Warn("Failed to load event raid tables")
		c.deps.Reporter.Report(operator.Warn(operator.KindError, "Unable to read event raids",
			map[string]any{"error": err.Error()}))
	}

	if _, err := c.deps.Scanner.ReadAll(ctx); err != nil && !errors.Is(err, scan.ErrCorruptedRead) {
		return fmt.Errorf("read raids: %w", err)
	}

	c.mu.Lock()
	c.game = game
	c.mu.Unlock()

	go c.watchLease(sessCtx)

	c.log.WithFields(logrus.Fields{
		"game":           game,
		"story_progress": progress,
		"delivery":       outcome,
	}).Info("Connected to console")

	c.deps.Reporter.Report(operator.Info(operator.KindStatus, "Connected to "+game, map[string]any{
		"title_id":       title,
		"story_progress": progress,
		"delivery":       string(outcome),
	}))

	return nil
}

// Disconnect stops any search, closes the session and releases the console.
func (c *Controller) Disconnect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if err := c.stopSearch(ctx); err != nil {
		return err
	}

	connected := c.deps.Session.Connected()

	c.teardown()

	if err := c.deps.Lease.Release(ctx); err != nil {
		c.log.WithError(err).Warn("Failed to release console lease")
	}

	if connected {
		c.log.Info("Disconnected from console")
		c.deps.Reporter.Report(operator.Info(operator.KindStatus, "Disconnected", nil))
	}

	return nil
}

// Close disconnects; it is called on shutdown.
func (c *Controller) Close(ctx context.Context) error {
	return c.Disconnect(ctx)
}

// ReadRaids reads every enabled region. A corrupted read is published and
// reported but not returned as an error.
func (c *Controller) ReadRaids(ctx context.Context) (scan.View, error) {
	ctx, finish, err := c.operation(ctx, "read")
	if err != nil {
		return scan.View{}, err
	}
	defer finish()

	if _, err := c.deps.Scanner.ReadAll(ctx); err != nil && !errors.Is(err, scan.ErrCorruptedRead) {
		return scan.View{}, c.fail("read raids", err)
	}

	return c.deps.Scanner.View(), nil
}

// RefreshEvents re-downloads every event table and re-reads the raids.
func (c *Controller) RefreshEvents(ctx context.Context) (delivery.Summary, error) {
	ctx, finish, err := c.operation(ctx, "refresh_events")
	if err != nil {
		return delivery.Summary{}, err
	}
	defer finish()

	outcome, err := c.deps.Delivery.Refresh(ctx, true)
	if err != nil {
		return delivery.Summary{}, c.fail("refresh event raids", err)
	}

	summary := c.deps.Delivery.State().Summary()

	c.deps.Reporter.Report(operator.Info(operator.KindStatus, "Event raids refreshed", map[string]any{
		"outcome": string(outcome),
		"version": summary.Version,
	}))

	if _, err := c.deps.Scanner.ReadAll(ctx); err != nil && !errors.Is(err, scan.ErrCorruptedRead) {
		return summary, c.fail("read raids", err)
	}

	return summary, nil
}

// Screenshot captures the console screen as a JPEG.
func (c *Controller) Screenshot(ctx context.Context) ([]byte, error) {
	ctx, finish, err := c.operation(ctx, "screenshot")
	if err != nil {
		return nil, err
	}
	defer finish()

	data, err := c.deps.Session.Screenshot(ctx)
	if err != nil {
		return nil, c.fail("screenshot", err)
	}

	return data, nil
}

// CurrentTime returns the console clock.
func (c *Controller) CurrentTime(ctx context.Context) (time.Time, error) {
	ctx, finish, err := c.operation(ctx, "current_time")
	if err != nil {
		return time.Time{}, err
	}
	defer finish()

	now, err := c.deps.Session.CurrentTime(ctx)
	if err != nil {
		return time.Time{}, c.fail("current time", err)
	}

	return now, nil
}

// Next moves the active raid forward, optionally to the next filter match.
func (c *Controller) Next(toMatch bool) scan.View {
	return c.deps.Scanner.Next(toMatch)
}

// Previous moves the active raid backward, optionally to the previous match.
func (c *Controller) Previous(toMatch bool) scan.View {
	return c.deps.Scanner.Previous(toMatch)
}

// Select makes raid i active.
func (c *Controller) Select(i int) scan.View {
	return c.deps.Scanner.Select(i)
}

// View returns the current snapshot and selection.
func (c *Controller) View() scan.View {
	return c.deps.Scanner.View()
}

// SetBoost changes the reward boost and re-derives rewards without console I/O.
func (c *Controller) SetBoost(boost int) error {
	if boost < 0 {
		return fmt.Errorf("boost must not be negative, got %d", boost)
	}

	return c.deps.Scanner.SetBoost(boost)
}

// SetRegions replaces the scanned regions. Rejected while the console is in use.
func (c *Controller) SetRegions(regions []raid.Region) error {
	done, err := c.begin("configure")
	if err != nil {
		return err
	}
	defer done()

	c.deps.Scanner.SetRegions(regions)

	return nil
}

// SetSearchConfig replaces the settings used by the next search.
func (c *Controller) SetSearchConfig(settings SearchSettings) error {
	if settings.ResetThreshold < 0 {
		return fmt.Errorf("reset_threshold must not be negative, got %d", settings.ResetThreshold)
	}

	c.deps.Search.SetConfig(settings.Config())

	return nil
}

// TestNotification sends the active raid through the notification sinks.
func (c *Controller) TestNotification(ctx context.Context) (notify.Notification, error) {
	view := c.deps.Scanner.View()
	if view.Snapshot.Len() == 0 {
		return notify.Notification{}, ErrNoRaids
	}

	n := notify.Build(filter.Always(TestFilterName).Name(), view.Snapshot.Entry(view.Active), 0)

	if err := c.deps.Sink.Send(ctx, n); err != nil {
		return n, fmt.Errorf("send test notification: %w", err)
	}

	return n, nil
}

// StartSearch launches the search loop in the search scope. The console is
// busy until the loop ends.
func (c *Controller) StartSearch(_ context.Context) error {
	if !c.deps.Session.Connected() {
		return ErrNotConnected
	}

	done, err := c.begin("search")
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.sessCtx == nil {
		c.mu.Unlock()
		done()

		return ErrNotConnected
	}

	runCtx, cancel := context.WithCancel(c.sessCtx)
	finished := make(chan struct{})
	c.searchCancel, c.searchDone = cancel, finished
	c.mu.Unlock()

	go func() {
		defer close(finished)
		defer done()
		defer cancel()

		res, err := c.deps.Search.Run(runCtx)
		if err != nil {
			if session.IsTransport(err) {
				c.dropSession(err)
			}

			return
		}

		c.log.WithFields(logrus.Fields{
			"run_id":  res.RunID,
			"outcome": res.Outcome,
			"matches": len(res.Matches),
		}).Info("Search finished")
	}()

	return nil
}

// StopSearch cancels the search scope and waits for the loop to exit.
// Stopping when nothing runs is a no-op.
func (c *Controller) StopSearch(ctx context.Context) error {
	return c.stopSearch(ctx)
}

func (c *Controller) stopSearch(ctx context.Context) error {
	c.mu.Lock()
	cancel, finished := c.searchCancel, c.searchDone
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the operator view.
func (c *Controller) Status() Status {
	c.mu.Lock()
	op, game := c.op, c.game
	c.mu.Unlock()

	view := c.deps.Scanner.View()

	st := Status{
		Console:         c.console,
		Connected:       c.deps.Session.Connected(),
		Game:            game,
		State:           StateIdle,
		Operation:       op,
		LeaseHeld:       c.deps.Lease.Held(),
		Search:          c.deps.Search.Stats(),
		SearchConfig:    Settings(c.deps.Search.Config()),
		SnapshotVersion: view.Snapshot.Version(),
		Raids:           view.Snapshot.Len(),
		MatchCount:      view.MatchCount,
		Active:          view.Active,
		Params:          c.deps.Scanner.Params(),
		Regions:         c.deps.Scanner.Regions(),
		Delivery:        c.deps.Delivery.State().Summary(),
	}

	if op != "" {
		st.State = StateBusy
	}

	return st
}

// operation guards a manual console operation: connected, not busy, and run
// in a context that also ends with the session.
func (c *Controller) operation(ctx context.Context, op string) (context.Context, func(), error) {
	if !c.deps.Session.Connected() {
		return nil, nil, ErrNotConnected
	}

	done, err := c.begin(op)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	sess := c.sessCtx
	c.mu.Unlock()

	opCtx, cancel := context.WithCancel(ctx)

	stop := func() bool { return false }
	if sess != nil {
		stop = context.AfterFunc(sess, cancel)
	}

	return opCtx, func() {
		stop()
		cancel()
		done()
	}, nil
}

func (c *Controller) begin(op string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.op != "" {
		return nil, fmt.Errorf("%w: %s in progress", ErrBusy, c.op)
	}

	c.op = op

	return func() {
		c.mu.Lock()
		c.op = ""
		c.mu.Unlock()
	}, nil
}

// fail classifies err at the operation boundary. Transport failures drop the
// session; cancellation is returned silently.
func (c *Controller) fail(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	if session.IsTransport(err) {
		c.dropSession(err)
	} else {
		c.deps.Reporter.Report(operator.Error("Failed to "+op, err))
	}

	return fmt.Errorf("%s: %w", op, err)
}

// dropSession tears the session down after the link failed or the lease was
// lost. It does not take connMu, so it is safe from the search goroutine.
func (c *Controller) dropSession(err error) {
	c.log.WithError(err).Warn("Console session lost")

	c.teardown()

	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	if rerr := c.deps.Lease.Release(ctx); rerr != nil {
		c.log.WithError(rerr).Warn("Failed to release console lease")
	}

	c.deps.Reporter.Report(operator.Error("Connection lost, reconnect to continue", err))
}

// teardown cancels the session scope and closes the session.
func (c *Controller) teardown() {
	c.mu.Lock()
	cancel := c.sessCancel
	c.sessCtx, c.sessCancel = nil, nil
	c.game = ""
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	ctx, stop := context.WithTimeout(context.Background(), teardownTimeout)
	defer stop()

	if err := c.deps.Session.Disconnect(ctx); err != nil {
		c.log.WithError(err).Debug("Failed to close session")
	}

	c.deps.Pointers.Invalidate()
}

func (c *Controller) watchLease(sessCtx context.Context) {
	lost := c.deps.Lease.Lost()
	if lost == nil {
		return
	}

	select {
	case <-sessCtx.Done():
	case <-lost:
		c.dropSession(fmt.Errorf("console lease for %s lost", c.console))
	}
}
