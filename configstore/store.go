package configstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
)

// ErrConfigLoad wraps any failure to load a configuration snapshot. The
// previous snapshot stays installed; the caller may retry the load.
var ErrConfigLoad = errors.New("config load failed")

// Source supplies all business configurations in one call.
type Source interface {
	LoadAll(ctx context.Context) ([]BusinessConfig, error)
}

// StaticSource is a Source over a fixed slice, used for tests and
// programmatic wiring.
type StaticSource []BusinessConfig

func (s StaticSource) LoadAll(ctx context.Context) ([]BusinessConfig, error) {
	return s, nil
}

type snapshot struct {
	configs map[string]BusinessConfig
}

// Store holds the current configuration snapshot. Loads replace the snapshot
// atomically: readers see either the old set or the new one, never a mix.
type Store struct {
	current atomic.Pointer[snapshot]
	logger  *slog.Logger
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{logger: logger}
	s.current.Store(&snapshot{configs: map[string]BusinessConfig{}})
	return s
}

// Load replaces the entire snapshot from source. On any failure — source
// error, duplicate type, invalid record — the previous snapshot is preserved
// and the error is returned wrapped in ErrConfigLoad.
func (s *Store) Load(ctx context.Context, source Source) error {
	configs, err := source.LoadAll(ctx)
	if err != nil {
		s.logger.Warn("config load failed, keeping previous snapshot", "error", err)
		return fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}

	next := make(map[string]BusinessConfig, len(configs))
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			s.logger.Warn("config load rejected, keeping previous snapshot", "error", err)
			return fmt.Errorf("%w: %v", ErrConfigLoad, err)
		}
		if _, dup := next[cfg.Type]; dup {
			err := fmt.Errorf("duplicate business type %q", cfg.Type)
			s.logger.Warn("config load rejected, keeping previous snapshot", "error", err)
			return fmt.Errorf("%w: %v", ErrConfigLoad, err)
		}
		next[cfg.Type] = cfg
	}

	s.current.Store(&snapshot{configs: next})
	s.logger.Info("business configs loaded", "count", len(next))
	return nil
}

// Get returns the configuration for a business type in the current snapshot.
func (s *Store) Get(businessType string) (BusinessConfig, bool) {
	cfg, ok := s.current.Load().configs[businessType]
	return cfg, ok
}

// Types returns all loaded business types, sorted.
func (s *Store) Types() []string {
	configs := s.current.Load().configs
	types := make([]string, 0, len(configs))
	for t := range configs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Len returns the number of loaded configurations.
func (s *Store) Len() int {
	return len(s.current.Load().configs)
}
