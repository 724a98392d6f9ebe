//nolint:tagliatelle // superior snake-case yo.
package publish

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/operator"
	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/redis"
	"github.com/ethpandaops/raid-crawler/internal/scan"
	"github.com/ethpandaops/raid-crawler/internal/search"
)

const keyPrefix = "raidcrawler:"

// Config holds publisher configuration.
type Config struct {
	Console   string
	TTL       time.Duration // expiry of the state keys, 0 keeps them forever
	QueueSize int
}

// StatsKey is the key holding the latest search statistics.
func (c Config) StatsKey() string { return keyPrefix + c.Console + ":stats" }

// SnapshotKey is the key holding the latest snapshot summary.
func (c Config) SnapshotKey() string { return keyPrefix + c.Console + ":snapshot" }

// EventsChannel is the pub/sub channel carrying operator messages.
func (c Config) EventsChannel() string { return keyPrefix + c.Console + ":events" }

// SnapshotSummary is the dashboard view of one snapshot.
type SnapshotSummary struct {
	Console    string         `json:"console"`
	Version    uint64         `json:"version"`
	TakenAt    time.Time      `json:"taken_at"`
	Params     raid.Params    `json:"params"`
	Regions    map[string]int `json:"regions"`
	MatchCount int            `json:"match_count"`
	Active     int            `json:"active"`
	Raids      []raid.Entry   `json:"raids"`
}

// Summarize builds the summary of view.
func Summarize(console string, view scan.View) SnapshotSummary {
	snap := view.Snapshot
	regions := make(map[string]int, len(raid.Regions))

	for _, r := range raid.Regions {
		regions[r.String()] = snap.RegionCount(r)
	}

	return SnapshotSummary{
		Console:    console,
		Version:    snap.Version(),
		TakenAt:    snap.TakenAt(),
		Params:     snap.Params(),
		Regions:    regions,
		MatchCount: view.MatchCount,
		Active:     view.Active,
		Raids:      snap.Entries(),
	}
}

type write struct {
	key     string
	channel string
	payload string
}

// Publisher mirrors crawler state into Redis for dashboards. Writes are
// queued and performed by a background worker; callers never block.
type Publisher struct {
	log   logrus.FieldLogger
	cfg   Config
	redis redis.Client

	queue chan write
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// Compile-time interface compliance checks.
var (
	_ search.Observer   = (*Publisher)(nil)
	_ scan.Listener     = (*Publisher)(nil)
	_ operator.Reporter = (*Publisher)(nil)
)

// New creates a publisher. Start must be called before anything is written.
func New(log logrus.FieldLogger, cfg Config, client redis.Client) *Publisher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}

	return &Publisher{
		log:   log.WithField("component", "publisher"),
		cfg:   cfg,
		redis: client,
		queue: make(chan write, cfg.QueueSize),
		done:  make(chan struct{}),
	}
}

// Start runs the write worker until ctx is done or Stop is called.
func (p *Publisher) Start(ctx context.Context) error {
	p.log.WithField("console", p.cfg.Console).Info("Starting state publisher")

	p.wg.Add(1)

	go p.run(ctx)

	return nil
}

// Stop drains nothing further and waits for the worker.
func (p *Publisher) Stop() error {
	p.once.Do(func() {
		p.log.Info("Stopping state publisher")
		close(p.done)
	})

	p.wg.Wait()

	return nil
}

// OnStats implements search.Observer.
func (p *Publisher) OnStats(stats search.Stats) {
	p.enqueueJSON(write{key: p.cfg.StatsKey()}, stats)
}

// OnSnapshot implements scan.Listener.
func (p *Publisher) OnSnapshot(view scan.View) {
	if view.Snapshot == nil {
		return
	}

	p.enqueueJSON(write{key: p.cfg.SnapshotKey()}, Summarize(p.cfg.Console, view))
}

// Report implements operator.Reporter.
func (p *Publisher) Report(msg operator.Message) {
	p.enqueueJSON(write{channel: p.cfg.EventsChannel()}, msg)
}

func (p *Publisher) enqueueJSON(w write, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.log.WithError(err).Warn("Failed to encode published state")

		return
	}

	w.payload = string(data)

	select {
	case p.queue <- w:
	default:
		droppedTotal.Inc()
	}
}

func (p *Publisher) run(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case w := <-p.queue:
			p.write(ctx, w)
		}
	}
}

func (p *Publisher) write(ctx context.Context, w write) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error

	if w.channel != "" {
		err = p.redis.Publish(ctx, w.channel, w.payload)
	} else {
		err = p.redis.Set(ctx, w.key, w.payload, p.cfg.TTL)
	}

	if err != nil {
		writeErrorsTotal.Inc()
		p.log.WithError(err).Debug("Failed to publish state")

		return
	}

	writesTotal.Inc()
}
