// Package chatcore is the response-resolution core of a multi-tenant chat
// assistant. Each tenant ("business") answers end-user queries about its own
// product catalog and FAQ; the core decides which subsystem answers a query
// and degrades predictably when a source is unavailable or unconfident.
package chatcore

import (
	"context"
	"fmt"
	"time"

	"github.com/IvoBelohlav/chatcore/configstore"
	"github.com/IvoBelohlav/chatcore/handler"
	"github.com/IvoBelohlav/chatcore/qa"
)

// Core wires the config store, handler registry, QA resolver, and pipeline
// into one resolution service.
type Core struct {
	cfg       Config
	store     *configstore.Store
	registry  *handler.Registry
	pipeline  *Pipeline
	languages *configstore.LanguageSet
}

// New creates a Core from the given config and loads the business
// configurations from cfg.ConfigSource.
func New(ctx context.Context, cfg Config) (*Core, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	store := configstore.NewStore(cfg.Logger)
	registry := handler.NewRegistry(store, cfg.Logger)
	if err := registry.Load(ctx, cfg.ConfigSource); err != nil {
		return nil, fmt.Errorf("loading business configs: %w", err)
	}

	languages := configstore.NewLanguageSet(cfg.DefaultLanguage, cfg.LanguageAliases)
	resolver := qa.NewResolver(cfg.QAEntries, qa.Options{
		Greetings:       cfg.Greetings,
		MinConfidence:   cfg.MinQAConfidence,
		DefaultLanguage: cfg.DefaultLanguage,
		Logger:          cfg.Logger,
	})

	return &Core{
		cfg:       cfg,
		store:     store,
		registry:  registry,
		pipeline:  newPipeline(cfg, registry, resolver, languages),
		languages: languages,
	}, nil
}

// Resolve answers one query. The response is always well formed; pipeline
// degradation shows up in the Source field, never as an error. The returned
// error covers only request plumbing (conversation storage).
func (c *Core) Resolve(ctx context.Context, req Request) (*ResolvedResponse, error) {
	conversation, err := c.getOrCreateConversation(ctx, req)
	if err != nil {
		return nil, err
	}

	userMsg := Message{
		ID:        NewMessageID(),
		Role:      RoleUser,
		Content:   req.Query,
		Timestamp: time.Now(),
	}
	if err := c.cfg.Storage.AddMessage(ctx, conversation.ID, userMsg); err != nil {
		return nil, fmt.Errorf("storing user message: %w", err)
	}

	resolved := c.pipeline.Resolve(ctx, req)
	resolved.ConversationID = conversation.ID

	assistantMsg := Message{
		ID:        NewMessageID(),
		Role:      RoleAssistant,
		Content:   resolved.Reply,
		Source:    resolved.Source,
		Timestamp: time.Now(),
	}
	if err := c.cfg.Storage.AddMessage(ctx, conversation.ID, assistantMsg); err != nil {
		// The answer exists; losing its log entry is not worth failing for.
		c.cfg.Logger.Warn("failed to store assistant message", "error", err)
	}

	return &resolved, nil
}

// AddFeedback records end-user feedback for a message.
func (c *Core) AddFeedback(ctx context.Context, fb Feedback) error {
	if fb.MessageID == "" {
		return fmt.Errorf("%w: message id is required", ErrInvalidInput)
	}
	return c.cfg.Storage.AddFeedback(ctx, fb)
}

// ReloadConfigs replaces the business configurations from the configured
// source. On failure the previous snapshot stays active.
func (c *Core) ReloadConfigs(ctx context.Context) error {
	return c.registry.Load(ctx, c.cfg.ConfigSource)
}

// BusinessTypes returns the loaded business types, sorted.
func (c *Core) BusinessTypes() []string {
	return c.registry.Types()
}

// Categories returns the configured categories for a business type, sorted.
func (c *Core) Categories(businessType string) []string {
	return c.registry.Categories(businessType)
}

func (c *Core) getOrCreateConversation(ctx context.Context, req Request) (*Conversation, error) {
	if req.ConversationID != "" {
		conv, err := c.cfg.Storage.Get(ctx, req.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("getting conversation: %w", err)
		}
		return conv, nil
	}

	conv, err := c.cfg.Storage.Create(ctx, req.BusinessType)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	return conv, nil
}
