package chatcore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IvoBelohlav/chatcore/catalog"
	"github.com/IvoBelohlav/chatcore/configstore"
	"github.com/IvoBelohlav/chatcore/handler"
	"github.com/IvoBelohlav/chatcore/nlu"
	"github.com/IvoBelohlav/chatcore/qa"
)

const comparisonCacheTTL = 10 * time.Minute

// Pipeline resolves a query through the fixed stage order: greeting/QA,
// comparison, handler, fallback. Each stage either answers or abstains;
// the first answer wins. The order is fixed, only the content each stage
// consults is configuration-driven.
type Pipeline struct {
	cfg       Config
	registry  *handler.Registry
	resolver  *qa.Resolver
	languages *configstore.LanguageSet
	logger    *slog.Logger
}

func newPipeline(cfg Config, registry *handler.Registry, resolver *qa.Resolver, languages *configstore.LanguageSet) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		registry:  registry,
		resolver:  resolver,
		languages: languages,
		logger:    cfg.Logger,
	}
}

// Resolve runs the pipeline for one request. The result is always a
// well-formed ResolvedResponse; stage errors degrade to later stages and,
// ultimately, to the fallback or error source.
func (p *Pipeline) Resolve(ctx context.Context, req Request) ResolvedResponse {
	language := p.languages.Canonical(req.Language)

	if strings.TrimSpace(req.Query) == "" {
		return p.fallback(language)
	}

	if resp, ok := p.greetingOrQA(req.Query, language); ok {
		return resp
	}

	intent := p.classify(ctx, req.Query, language)

	if resp, ok := p.comparison(ctx, req, language, intent); ok {
		return resp
	}

	if resp, ok := p.businessHandler(req, language); ok {
		return resp
	}

	return p.fallback(language)
}

// greetingOrQA is the first stage. Greetings short-circuit with full
// confidence; FAQ matches answer when they clear the threshold.
func (p *Pipeline) greetingOrQA(query, language string) (ResolvedResponse, bool) {
	candidate, ok := p.resolver.Resolve(query, language)
	if !ok {
		return ResolvedResponse{}, false
	}

	if candidate.Intent == qa.IntentGreeting {
		return ResolvedResponse{
			Reply:    p.greetingReply(language),
			Source:   SourceGreeting,
			Language: language,
		}, true
	}

	if candidate.Confidence < p.cfg.MinQAConfidence {
		return ResolvedResponse{}, false
	}

	resp := ResolvedResponse{
		Reply:    candidate.Answer,
		Source:   SourceQA,
		Language: candidate.Language,
	}
	if candidate.Followup != "" {
		resp.FollowupQuestions = []string{candidate.Followup}
	}
	return resp, true
}

// classify consults the optional intent classifier. Any error or low
// confidence yields an empty intent: classification is advisory only.
func (p *Pipeline) classify(ctx context.Context, query, language string) string {
	if p.cfg.Classifier == nil {
		return ""
	}

	stageCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()

	result, err := p.cfg.Classifier.Classify(stageCtx, query, language)
	if err != nil {
		p.logger.Debug("intent classification abstained", "error", err)
		return ""
	}
	if result.Confidence < p.cfg.MinIntentConfidence {
		return ""
	}
	return result.Intent
}

// comparison is the second stage. It runs when the query's lexical shape
// implies a comparison (cue words, two or more product references, or a
// confident classifier verdict) and both products can be resolved.
func (p *Pipeline) comparison(ctx context.Context, req Request, language, intent string) (ResolvedResponse, bool) {
	if !p.isComparisonQuery(req, intent) {
		return ResolvedResponse{}, false
	}
	if req.BusinessType == "" || p.cfg.Catalog == nil {
		return ResolvedResponse{}, false
	}

	h, err := p.registry.Get(req.BusinessType, req.Category)
	if err != nil {
		p.logger.Warn("comparison stage abstained", "error", err)
		return ResolvedResponse{}, false
	}

	stageCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()

	a, b, err := p.resolveProducts(stageCtx, req)
	if err != nil {
		// Timeouts and lookup failures abstain, they never fail the request.
		p.logger.Warn("comparison stage abstained", "error", err)
		return ResolvedResponse{}, false
	}
	if !h.ValidateProduct(*a) || !h.ValidateProduct(*b) {
		p.logger.Debug("comparison stage abstained: product failed validation",
			"business_type", req.BusinessType)
		return ResolvedResponse{}, false
	}

	result, err := p.compareWithCache(stageCtx, h, *a, *b, req.Query)
	if err != nil {
		p.logger.Warn("comparison stage abstained", "error", err)
		return ResolvedResponse{}, false
	}

	return ResolvedResponse{
		Reply:      result.Summary,
		Source:     SourceComparison,
		Comparison: result,
		Language:   language,
	}, true
}

func (p *Pipeline) isComparisonQuery(req Request, intent string) bool {
	if intent == nlu.IntentComparison {
		return true
	}
	if len(req.ProductIDs) >= 2 {
		return true
	}
	queryLower := strings.ToLower(req.Query)
	for _, cue := range p.cfg.ComparisonCueWords {
		if strings.Contains(queryLower, cue) {
			return true
		}
	}
	return false
}

// resolveProducts picks the two products to compare: explicit references
// first, otherwise the top catalog matches for the query.
func (p *Pipeline) resolveProducts(ctx context.Context, req Request) (*catalog.Product, *catalog.Product, error) {
	if len(req.ProductIDs) >= 2 {
		a, err := p.cfg.Catalog.GetProduct(ctx, req.ProductIDs[0])
		if err != nil {
			return nil, nil, fmt.Errorf("product %q: %w", req.ProductIDs[0], err)
		}
		b, err := p.cfg.Catalog.GetProduct(ctx, req.ProductIDs[1])
		if err != nil {
			return nil, nil, fmt.Errorf("product %q: %w", req.ProductIDs[1], err)
		}
		return a, b, nil
	}

	products, err := p.cfg.Catalog.SearchProducts(ctx, catalog.Criteria{
		Query:        req.Query,
		BusinessType: req.BusinessType,
		Category:     req.Category,
		Limit:        2,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("product search: %w", err)
	}
	if len(products) < 2 {
		return nil, nil, fmt.Errorf("found %d comparable products, need 2", len(products))
	}
	return &products[0], &products[1], nil
}

// compareWithCache memoizes comparison results by a stable fingerprint of
// the inputs. Cache failures degrade to computing the comparison directly.
func (p *Pipeline) compareWithCache(ctx context.Context, h handler.Handler, a, b catalog.Product, query string) (*handler.ComparisonResult, error) {
	key := comparisonCacheKey(h, a, b, query)

	if raw, ok, err := p.cfg.Cache.Get(ctx, key); err == nil && ok {
		var cached handler.ComparisonResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
		p.logger.Warn("discarding undecodable cached comparison", "key", key)
	} else if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		p.logger.Warn("comparison cache read failed", "error", err)
	}

	result, err := h.Compare(ctx, a, b, query)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := p.cfg.Cache.Set(ctx, key, string(raw), comparisonCacheTTL); err != nil {
			p.logger.Warn("comparison cache write failed", "error", err)
		}
	}
	return result, nil
}

func comparisonCacheKey(h handler.Handler, a, b catalog.Product, query string) string {
	return fmt.Sprintf("cmp:%s:%s:%s:%s:%s",
		h.BusinessType(), h.Category(), a.ID, b.ID, normalizeCacheQuery(query))
}

func normalizeCacheQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// businessHandler is the third stage: template answers driven by the
// tenant's query patterns.
func (p *Pipeline) businessHandler(req Request, language string) (ResolvedResponse, bool) {
	if req.BusinessType == "" {
		return ResolvedResponse{}, false
	}

	h, err := p.registry.Get(req.BusinessType, req.Category)
	if err != nil {
		var unknown *handler.UnknownBusinessTypeError
		if errors.As(err, &unknown) {
			p.logger.Warn("handler stage abstained", "business_type", req.BusinessType)
		} else {
			p.logger.Warn("handler stage abstained", "error", err)
		}
		return ResolvedResponse{}, false
	}

	response, ok := h.Respond(req.Query)
	if !ok {
		return ResolvedResponse{}, false
	}
	return ResolvedResponse{
		Reply:             response.Reply,
		Source:            SourceHandler,
		FollowupQuestions: response.Followups,
		Language:          language,
	}, true
}

// fallback is terminal. A missing fallback template for both the request
// language and the default language is the one unrecoverable condition.
func (p *Pipeline) fallback(language string) ResolvedResponse {
	if reply, ok := p.cfg.FallbackTemplates[language]; ok {
		return ResolvedResponse{Reply: reply, Source: SourceFallback, Language: language}
	}
	def := p.languages.Default()
	if reply, ok := p.cfg.FallbackTemplates[def]; ok {
		return ResolvedResponse{Reply: reply, Source: SourceFallback, Language: def}
	}

	p.logger.Error("no fallback template available", "language", language, "error", ErrPipelineExhausted)
	return ResolvedResponse{
		Reply:    "Something went wrong while answering your question. Please try again.",
		Source:   SourceError,
		Language: language,
	}
}

func (p *Pipeline) greetingReply(language string) string {
	if reply, ok := p.cfg.GreetingReplies[language]; ok {
		return reply
	}
	return p.cfg.GreetingReplies[p.languages.Default()]
}
