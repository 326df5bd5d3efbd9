package handler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/IvoBelohlav/chatcore/configstore"
)

// UnknownBusinessTypeError reports a dispatch against a business type with no
// loaded configuration. It is recoverable: the pipeline falls back.
type UnknownBusinessTypeError struct {
	BusinessType string
}

func (e *UnknownBusinessTypeError) Error() string {
	return fmt.Sprintf("unknown business type %q", e.BusinessType)
}

type registryKey struct {
	businessType string
	category     string
}

// Registry maps (business type, category) to a cached handler instance.
// Handlers compile query patterns at construction, so the registry guarantees
// at most one durable instance per key and shares it across requests.
type Registry struct {
	configs *configstore.Store
	engine  *Engine
	logger  *slog.Logger

	mu       sync.Mutex
	handlers map[registryKey]Handler
}

// NewRegistry creates a registry reading from the given config store.
func NewRegistry(configs *configstore.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		configs:  configs,
		engine:   NewEngine(logger),
		logger:   logger,
		handlers: make(map[registryKey]Handler),
	}
}

// Load replaces the config snapshot from source and, on success, drops cached
// handler instances so they rebuild against the new snapshot. On failure the
// previous snapshot and instances stay in place.
func (r *Registry) Load(ctx context.Context, source configstore.Source) error {
	if err := r.configs.Load(ctx, source); err != nil {
		return err
	}

	r.mu.Lock()
	r.handlers = make(map[registryKey]Handler)
	r.mu.Unlock()
	return nil
}

// Get returns the handler for a business type, specialized for category when
// a category configuration exists. Two calls with the same arguments return
// the identical instance.
func (r *Registry) Get(businessType, category string) (Handler, error) {
	cfg, ok := r.configs.Get(businessType)
	if !ok {
		return nil, &UnknownBusinessTypeError{BusinessType: businessType}
	}

	// A category without a specialization shares the default instance.
	if category != "" && !cfg.HasCategory(category) {
		category = ""
	}
	key := registryKey{businessType: businessType, category: category}

	r.mu.Lock()
	h, cached := r.handlers[key]
	r.mu.Unlock()
	if cached {
		return h, nil
	}

	// Construct outside the lock: pattern compilation may be slow. Concurrent
	// first use races construct independently; the first insert wins and the
	// loser's instance is discarded.
	built := r.construct(cfg, category)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.handlers[key]; ok {
		return existing, nil
	}
	r.handlers[key] = built

	r.logger.Debug("handler constructed",
		"business_type", businessType,
		"category", category,
	)
	return built, nil
}

func (r *Registry) construct(cfg configstore.BusinessConfig, category string) Handler {
	base := newBaseHandler(cfg, r.engine, r.logger)
	if category == "" {
		return base
	}
	return newCategoryHandler(base, category, cfg.CategoryConfigs[category])
}

// Types returns the loaded business types.
func (r *Registry) Types() []string {
	return r.configs.Types()
}

// Categories returns the configured categories for a business type.
func (r *Registry) Categories(businessType string) []string {
	cfg, ok := r.configs.Get(businessType)
	if !ok {
		return nil
	}
	categories := make([]string, 0, len(cfg.CategoryConfigs))
	for category := range cfg.CategoryConfigs {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}
