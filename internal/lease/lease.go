package lease

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/redis"
)

// ErrHeld is returned when another instance holds the console.
var ErrHeld = errors.New("console lease held by another instance")

// Lease grants exclusive use of one console across crawler instances.
type Lease interface {
	// Acquire takes the lease or fails with ErrHeld. Acquiring a lease
	// already held by this instance is a no-op.
	Acquire(ctx context.Context) error
	// Release gives the lease up and stops renewing it.
	Release(ctx context.Context) error
	Held() bool
	// Lost is closed when a held lease could not be renewed.
	Lost() <-chan struct{}
}

type redisLease struct {
	log   logrus.FieldLogger
	cfg   Config
	redis redis.Client
	id    string

	mu   sync.Mutex
	held bool
	lost chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a redis backed console lease.
func New(log logrus.FieldLogger, cfg Config, redisClient redis.Client) Lease {
	return &redisLease{
		log: log.WithFields(logrus.Fields{
			"component": "lease",
			"console":   cfg.Console,
		}),
		cfg:   cfg,
		redis: redisClient,
		id:    uuid.New().String(),
		lost:  make(chan struct{}),
	}
}

// Acquire implements Lease.
func (l *redisLease) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return nil
	}

	acquired, err := l.redis.SetNX(ctx, l.cfg.Key(), l.id, l.cfg.TTL)
	if err != nil {
		return fmt.Errorf("acquire console lease: %w", err)
	}

	if !acquired {
		holder, _ := l.redis.Get(ctx, l.cfg.Key())

		// A lease given up after a failed renewal may still carry our id.
		if holder != l.id {
			l.log.WithField("holder_id", holder).Info("Console is leased by another instance")

			return fmt.Errorf("%w: %s", ErrHeld, holder)
		}
	}

	l.held = true
	l.lost = make(chan struct{})
	l.done = make(chan struct{})

	l.wg.Add(1)

	go l.renewLoop(l.done, l.lost)

	l.log.WithField("instance_id", l.id).Info("Acquired console lease")

	return nil
}

// Release implements Lease.
func (l *redisLease) Release(ctx context.Context) error {
	l.mu.Lock()

	if !l.held {
		l.mu.Unlock()

		return nil
	}

	l.held = false
	close(l.done)
	l.mu.Unlock()

	l.wg.Wait()

	released, err := l.redis.CompareAndDelete(ctx, l.cfg.Key(), l.id)
	if err != nil {
		return fmt.Errorf("release console lease: %w", err)
	}

	if !released {
		l.log.Debug("Console lease already expired or taken over")

		return nil
	}

	l.log.Info("Released console lease")

	return nil
}

// Held implements Lease.
func (l *redisLease) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.held
}

// Lost implements Lease.
func (l *redisLease) Lost() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.lost
}

func (l *redisLease) renewLoop(done, lost chan struct{}) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.cfg.RenewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !l.renew(context.Background()) {
				l.mu.Lock()
				l.held = false
				l.mu.Unlock()

				close(lost)

				return
			}
		}
	}
}

// renew extends the lease if this instance still holds it.
func (l *redisLease) renew(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.RenewInterval)
	defer cancel()

	renewed, err := l.redis.CompareAndExpire(ctx, l.cfg.Key(), l.id, l.cfg.TTL)
	if err != nil {
		l.log.WithError(err).Warn("Failed to renew console lease, giving up console")

		return false
	}

	if !renewed {
		l.log.Warn("Lost console lease to another instance")

		return false
	}

	l.log.Debug("Renewed console lease")

	return true
}

// Local is the lease used when no redis is configured. It is always granted.
type Local struct{}

// Acquire implements Lease.
func (Local) Acquire(context.Context) error { return nil }

// Release implements Lease.
func (Local) Release(context.Context) error { return nil }

// Held implements Lease.
func (Local) Held() bool { return true }

// Lost implements Lease. The channel is never closed.
func (Local) Lost() <-chan struct{} { return nil }

// Compile-time interface compliance checks.
var (
	_ Lease = (*redisLease)(nil)
	_ Lease = Local{}
)
