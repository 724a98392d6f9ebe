package filter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const reloadDebounce = 100 * time.Millisecond

// File is the on-disk layout of the rules file.
type File struct {
	Filters []*Rule `yaml:"filters"`
}

// LoadFile parses and validates a rules file. A missing file yields an empty
// set.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewSet(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("read filter file: %w", err)
	}

	return Parse(data)
}

// Parse decodes rules from YAML.
func Parse(data []byte) (*Set, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse filter file: %w", err)
	}

	filters := make([]Filter, 0, len(file.Filters))
	seen := make(map[string]struct{}, len(file.Filters))

	for i, rule := range file.Filters {
		if rule == nil {
			continue
		}

		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}

		if _, dup := seen[rule.RuleName]; dup {
			return nil, fmt.Errorf("filter %d: duplicate name %q", i, rule.RuleName)
		}

		seen[rule.RuleName] = struct{}{}
		filters = append(filters, rule)
	}

	return NewSet(filters...), nil
}

// Store holds the current filter set and reloads it when the rules file
// changes. A failed reload keeps the previous set.
type Store struct {
	log     logrus.FieldLogger
	path    string
	current atomic.Pointer[Set]
	watcher *fsnotify.Watcher
	onLoad  []func(*Set)
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewStore creates a store for path. Call Load before use.
func NewStore(log logrus.FieldLogger, path string) *Store {
	s := &Store{
		log:  log.WithField("component", "filter"),
		path: path,
		done: make(chan struct{}),
	}
	s.current.Store(NewSet())

	return s
}

// OnLoad registers fn to run after every successful load, including reloads
// triggered by the watcher. Register before Start.
func (s *Store) OnLoad(fn func(*Set)) {
	s.onLoad = append(s.onLoad, fn)
}

// Load reads the rules file once.
func (s *Store) Load() error {
	set, err := LoadFile(s.path)
	if err != nil {
		return err
	}

	s.current.Store(set)
	loadedFilters.Set(float64(len(set.Filters())))

	for _, fn := range s.onLoad {
		fn(set)
	}

	s.log.WithFields(logrus.Fields{
		"path":    s.path,
		"filters": len(set.Filters()),
		"enabled": len(set.Enabled()),
	}).Info("Loaded filters")

	return nil
}

// Set returns the filter set currently in effect.
func (s *Store) Set() *Set {
	return s.current.Load()
}

// Start watches the rules file directory for changes.
func (s *Store) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()

		return fmt.Errorf("watch directory: %w", err)
	}

	s.watcher = watcher

	s.wg.Add(1)

	go s.watchLoop(ctx)

	return nil
}

// Stop ends the watch loop.
func (s *Store) Stop() error {
	if s.watcher == nil {
		return nil
	}

	close(s.done)
	s.wg.Wait()

	return s.watcher.Close()
}

func (s *Store) watchLoop(ctx context.Context) {
	defer s.wg.Done()

	var debounce *time.Timer

	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}

			debounce = time.AfterFunc(reloadDebounce, s.reload)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}

			s.log.WithError(err).Warn("Filter watcher error")
		}
	}
}

func (s *Store) reload() {
	if err := s.Load(); err != nil {
		reloadFailures.Inc()
		s.log.WithError(err).Warn("Filter reload failed, keeping previous filters")
	}
}
