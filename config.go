package chatcore

import (
	"log/slog"
	"time"

	"github.com/IvoBelohlav/chatcore/cache"
	"github.com/IvoBelohlav/chatcore/catalog"
	"github.com/IvoBelohlav/chatcore/configstore"
	"github.com/IvoBelohlav/chatcore/nlu"
	"github.com/IvoBelohlav/chatcore/qa"
)

// DefaultComparisonCueWords trigger the comparison stage when present in a
// query. Tenants with other markets override the set in Config.
var DefaultComparisonCueWords = []string{
	"compare", "comparison", "versus", " vs ", "difference between", "better than",
	"porovnej", "porovnání", "srovnej", "srovnání", "rozdíl mezi", "lepší než",
}

// DefaultFallbackTemplates answer per canonical language when every stage
// abstains.
var DefaultFallbackTemplates = map[string]string{
	"eng": "I'm sorry, I don't have an answer for that. Could you rephrase your question?",
	"cze": "Omlouvám se, na to nemám odpověď. Můžete svou otázku přeformulovat?",
}

// DefaultGreetingReplies answer recognized greetings per canonical language.
var DefaultGreetingReplies = map[string]string{
	"eng": "Hello! How can I help you today?",
	"cze": "Dobrý den! Jak vám mohu pomoci?",
}

// Config configures a Core instance.
type Config struct {
	// ConfigSource provides the business configurations loaded at startup.
	// Required.
	ConfigSource configstore.Source

	// Catalog is the product catalog collaborator.
	// Required for the comparison stage.
	Catalog catalog.Catalog

	// QAEntries is the FAQ knowledge base for the QA stage.
	// Optional.
	QAEntries []qa.Entry

	// Cache memoizes comparison results. Optional; absence changes
	// latency, never correctness.
	Cache cache.Cache

	// Classifier is an optional intent classifier consulted for routing.
	// Classification errors are treated as abstain, never as failures.
	Classifier nlu.Classifier

	// Storage is the conversation storage backend.
	// Optional - defaults to in-memory storage.
	Storage ConversationStore

	// Logger is the structured logger.
	// Optional - defaults to slog.Default().
	Logger *slog.Logger

	// DefaultLanguage is the canonical tag used when the request language
	// is missing or unknown. Defaults to "eng".
	DefaultLanguage string

	// LanguageAliases maps boundary tags to canonical ones.
	// Defaults to {"cs": "cze", "en": "eng"}.
	LanguageAliases map[string]string

	// FallbackTemplates maps canonical language to the last-resort reply.
	// Defaults to DefaultFallbackTemplates.
	FallbackTemplates map[string]string

	// GreetingReplies maps canonical language to the greeting reply.
	// Defaults to DefaultGreetingReplies.
	GreetingReplies map[string]string

	// Greetings maps canonical language to greeting phrases recognized by
	// the QA stage. Defaults to qa.DefaultGreetings().
	Greetings map[string][]string

	// ComparisonCueWords trigger the comparison stage.
	// Defaults to DefaultComparisonCueWords.
	ComparisonCueWords []string

	// MinQAConfidence is the FAQ abstain threshold.
	// Defaults to qa.DefaultMinConfidence.
	MinQAConfidence float64

	// MinIntentConfidence is the threshold below which classifier results
	// are ignored. Defaults to 0.6.
	MinIntentConfidence float64

	// StageTimeout bounds each pipeline stage that performs I/O. A stage
	// hitting it abstains instead of failing the request.
	// Defaults to 5 seconds.
	StageTimeout time.Duration

	// RequestTimeout is the maximum time for one HTTP request.
	// Defaults to 30 seconds.
	RequestTimeout time.Duration

	// MaxRequestBodySize limits HTTP request bodies in bytes.
	// Defaults to 64 KiB.
	MaxRequestBodySize int64

	// MaxMessageLength limits the query length in characters.
	// Defaults to 4000.
	MaxMessageLength int

	// AllowedOrigins for CORS in the HTTP server.
	// Defaults to allowing all origins.
	AllowedOrigins []string
}

// withDefaults applies default values to the config.
func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Storage == nil {
		c.Storage = NewMemoryStore()
	}
	if c.Cache == nil {
		c.Cache = cache.Noop{}
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = configstore.DefaultLanguage
	}
	if c.LanguageAliases == nil {
		c.LanguageAliases = configstore.DefaultLanguageAliases
	}
	if c.FallbackTemplates == nil {
		c.FallbackTemplates = DefaultFallbackTemplates
	}
	if c.GreetingReplies == nil {
		c.GreetingReplies = DefaultGreetingReplies
	}
	if c.Greetings == nil {
		c.Greetings = qa.DefaultGreetings()
	}
	if len(c.ComparisonCueWords) == 0 {
		c.ComparisonCueWords = DefaultComparisonCueWords
	}
	if c.MinQAConfidence == 0 {
		c.MinQAConfidence = qa.DefaultMinConfidence
	}
	if c.MinIntentConfidence == 0 {
		c.MinIntentConfidence = 0.6
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = 5 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxRequestBodySize <= 0 {
		c.MaxRequestBodySize = 64 * 1024
	}
	if c.MaxMessageLength <= 0 {
		c.MaxMessageLength = 4000
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	return c
}

// validate checks that required config fields are set.
func (c Config) validate() error {
	if c.ConfigSource == nil {
		return NewConfigurationError("ConfigSource is required", nil)
	}
	return nil
}
