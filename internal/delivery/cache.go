package delivery

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/session"
)

// Cache keeps the delivery tables in effect and avoids re-downloading them
// from the console unless the priority version changed.
type Cache struct {
	log     logrus.FieldLogger
	source  Source
	decoder Decoder
	store   *DiskStore
	state   atomic.Pointer[State]
}

// NewCache creates a delivery cache.
func NewCache(log logrus.FieldLogger, source Source, decoder Decoder, store *DiskStore) *Cache {
	return &Cache{
		log:     log.WithField("component", "delivery"),
		source:  source,
		decoder: decoder,
		store:   store,
	}
}

// State returns the tables currently in effect, or nil if none were loaded.
func (c *Cache) State() *State {
	return c.state.Load()
}

// Refresh brings the delivery state up to date. When force is false and a
// cached priority table exists, only the priority table is fetched from the
// console to compare versions; the payload tables are re-fetched only when
// the version changed.
func (c *Cache) Refresh(ctx context.Context, force bool) (Outcome, error) {
	outcome, err := c.refresh(ctx, force)
	if err != nil {
		refreshTotal.WithLabelValues(string(OutcomeError)).Inc()

		return OutcomeError, err
	}

	refreshTotal.WithLabelValues(string(outcome)).Inc()

	return outcome, nil
}

func (c *Cache) refresh(ctx context.Context, force bool) (Outcome, error) {
	if !force {
		cached, ok, err := c.store.Read(PriorityArtifact.Name)
		if err != nil {
			return "", err
		}

		if ok {
			stale, remote, err := c.compareVersions(ctx, cached)
			if err != nil {
				return "", err
			}

			if stale {
				force = true
			}

			if remote.Version == 0 {
				// Existing state is kept on purpose: a transient zero would
				// otherwise wipe valid event tables.
				c.log.Warn("Console reports no active event raids, keeping current delivery state")

				return OutcomeInactive, nil
			}
		}
	}

	priorityData, err := c.load(ctx, PriorityArtifact, force)
	if err != nil {
		return "", err
	}

	priority, err := c.decoder.DecodePriority(priorityData)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", PriorityArtifact.Name, err)
	}

	if priority.Version == 0 {
		c.log.Info("Delivery priority table is empty, skipping payload tables")

		return OutcomeEmpty, nil
	}

	encounterData, err := c.load(ctx, EncounterArtifact, force)
	if err != nil {
		return "", err
	}

	fixedData, err := c.load(ctx, FixedRewardArtifact, force)
	if err != nil {
		return "", err
	}

	lotteryData, err := c.load(ctx, LotteryRewardArtifact, force)
	if err != nil {
		return "", err
	}

	state := &State{
		Priority:    priority,
		RefreshedAt: time.Now(),
	}

	state.Distribution, state.Might, err = c.decoder.DecodeEncounters(encounterData)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", EncounterArtifact.Name, err)
	}

	state.FixedRewards, err = c.decoder.DecodeFixedRewards(fixedData)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", FixedRewardArtifact.Name, err)
	}

	state.LotteryRewards, err = c.decoder.DecodeLotteryRewards(lotteryData)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", LotteryRewardArtifact.Name, err)
	}

	c.state.Store(state)
	activeVersion.Set(float64(priority.Version))

	c.log.WithFields(logrus.Fields{
		"group_id":     priority.GroupID,
		"version":      priority.Version,
		"distribution": len(state.Distribution),
		"might":        len(state.Might),
		"forced":       force,
	}).Info("Loaded delivery raid tables")

	return OutcomeLoaded, nil
}

// compareVersions fetches a temporary copy of the priority table and reports
// whether the cached copy is stale. The temporary file is always removed.
func (c *Cache) compareVersions(ctx context.Context, cached []byte) (bool, Priority, error) {
	stale := false

	local, err := c.decoder.DecodePriority(cached)
	if err != nil {
		c.log.WithError(err).Warn("Cached priority table unreadable, forcing refresh")

		stale = true
	}

	tmpName := PriorityArtifact.Name + TempSuffix

	defer func() {
		if err := c.store.Remove(tmpName); err != nil {
			c.log.WithError(err).Warn("Failed to remove temporary priority table")
		}
	}()

	data, err := c.fetch(ctx, PriorityArtifact)
	if err != nil {
		return false, Priority{}, err
	}

	if err := c.store.Write(tmpName, data); err != nil {
		return false, Priority{}, err
	}

	remote, err := c.decoder.DecodePriority(data)
	if err != nil {
		return false, Priority{}, fmt.Errorf("decode remote %s: %w", PriorityArtifact.Name, err)
	}

	if remote.Version != local.Version {
		stale = true
	}

	c.log.WithFields(logrus.Fields{
		"cached_version": local.Version,
		"remote_version": remote.Version,
		"stale":          stale,
	}).Debug("Compared delivery priority versions")

	return stale, remote, nil
}

// load returns the artifact from disk unless force is set or nothing is
// cached, in which case it is fetched and persisted.
func (c *Cache) load(ctx context.Context, artifact Artifact, force bool) ([]byte, error) {
	if !force {
		data, ok, err := c.store.Read(artifact.Name)
		if err != nil {
			return nil, err
		}

		if ok {
			return data, nil
		}
	}

	data, err := c.fetch(ctx, artifact)
	if err != nil {
		return nil, err
	}

	if err := c.store.Write(artifact.Name, data); err != nil {
		return nil, err
	}

	return data, nil
}

func (c *Cache) fetch(ctx context.Context, artifact Artifact) ([]byte, error) {
	data, err := c.source.ReadSaveBlock(ctx, artifact.Key, 0)
	if err != nil {
		return nil, session.Wrap("fetch "+artifact.Name, err)
	}

	artifactFetchTotal.WithLabelValues(artifact.Name).Inc()

	return data, nil
}
