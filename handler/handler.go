// Package handler implements the business-type handler hierarchy: validation
// and comparison behavior driven entirely by per-tenant configuration, with
// optional per-category specializations.
package handler

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/IvoBelohlav/chatcore/catalog"
	"github.com/IvoBelohlav/chatcore/configstore"
)

// Response is a templated, business-rule-driven answer.
type Response struct {
	Reply     string
	Followups []string
}

// Handler is the polymorphic unit for one (business type, category) pair.
type Handler interface {
	// BusinessType returns the business type this handler serves.
	BusinessType() string

	// Category returns the category specialization, or "" for the default.
	Category() string

	// ValidateProduct applies the configured validation rules. Malformed
	// product data yields false, never an error.
	ValidateProduct(p catalog.Product) bool

	// Compare computes a structured comparison of two products. The result
	// always carries a non-empty summary, even for sparse inputs.
	Compare(ctx context.Context, a, b catalog.Product, query string) (*ComparisonResult, error)

	// Respond answers a query from the configured response templates.
	// It reports false when no query pattern matches.
	Respond(query string) (Response, bool)
}

// baseHandler is the config-driven default behavior for a business type.
type baseHandler struct {
	businessType string
	cfg          configstore.BusinessConfig
	patterns     []*regexp.Regexp
	engine       *Engine
	logger       *slog.Logger
}

func newBaseHandler(cfg configstore.BusinessConfig, engine *Engine, logger *slog.Logger) *baseHandler {
	h := &baseHandler{
		businessType: cfg.Type,
		cfg:          cfg,
		engine:       engine,
		logger:       logger,
	}
	for _, pattern := range cfg.QueryPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			logger.Warn("skipping invalid query pattern",
				"business_type", cfg.Type,
				"pattern", pattern,
				"error", err,
			)
			continue
		}
		h.patterns = append(h.patterns, re)
	}
	return h
}

func (h *baseHandler) BusinessType() string {
	return h.businessType
}

func (h *baseHandler) Category() string {
	return ""
}

// ValidateProduct applies the configured rules. An empty rule set validates
// everything: unconfigured tenants rely on this.
func (h *baseHandler) ValidateProduct(p catalog.Product) bool {
	rules := h.cfg.ValidationRules
	if len(rules) == 0 {
		return true
	}

	for field, rule := range rules {
		switch field {
		case "product_name":
			if rule.Required && strings.TrimSpace(p.ProductName) == "" {
				return false
			}
		case "category":
			if rule.Required && strings.TrimSpace(p.Category) == "" {
				return false
			}
		default:
			if !checkFieldRule(p, field, rule) {
				return false
			}
		}
	}
	return true
}

func checkFieldRule(p catalog.Product, field string, rule configstore.Rule) bool {
	value, present := fieldValue(p, field)
	if !present {
		return !rule.Required
	}
	if rule.Min == nil && rule.Max == nil {
		return true
	}

	n, numeric := parseMeasure(value)
	if !numeric {
		return false
	}
	if rule.Min != nil && n < *rule.Min {
		return false
	}
	if rule.Max != nil && n > *rule.Max {
		return false
	}
	return true
}

func (h *baseHandler) Compare(ctx context.Context, a, b catalog.Product, query string) (*ComparisonResult, error) {
	return h.engine.Compare(a, b, query, h.cfg.Comparison), nil
}

// Respond matches the query against the configured patterns, in declared
// order, and renders the response template.
func (h *baseHandler) Respond(query string) (Response, bool) {
	return h.respond(query, nil)
}

func (h *baseHandler) respond(query string, extraAttributes map[string]string) (Response, bool) {
	if len(h.patterns) == 0 || len(h.cfg.ResponseTemplates) == 0 {
		return Response{}, false
	}

	matched := false
	for _, re := range h.patterns {
		if re.MatchString(query) {
			matched = true
			break
		}
	}
	if !matched {
		return Response{}, false
	}

	name := templateName(h.cfg.ResponseTemplates)
	reply := renderTemplate(h.cfg.ResponseTemplates[name], h.cfg.Attributes, extraAttributes)
	return Response{
		Reply:     reply,
		Followups: h.cfg.FollowupQuestions[name],
	}, true
}

// templateName picks "default" when present, otherwise the first name in
// sorted order so selection stays deterministic.
func templateName(templates map[string]string) string {
	if _, ok := templates["default"]; ok {
		return "default"
	}
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

func renderTemplate(template string, attributes, extra map[string]string) string {
	// Category attributes shadow business-type attributes on key collisions.
	merged := make(map[string]string, len(attributes)+len(extra))
	for key, value := range attributes {
		merged[key] = value
	}
	for key, value := range extra {
		merged[key] = value
	}
	if len(merged) == 0 {
		return template
	}

	pairs := make([]string, 0, 2*len(merged))
	for key, value := range merged {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// categoryHandler specializes a base handler for one category. It overrides
// only what the category configuration declares; everything else delegates
// to the business-type default.
type categoryHandler struct {
	base     *baseHandler
	category string
	catCfg   configstore.CategoryConfig
}

func newCategoryHandler(base *baseHandler, category string, catCfg configstore.CategoryConfig) *categoryHandler {
	return &categoryHandler{base: base, category: category, catCfg: catCfg}
}

func (h *categoryHandler) BusinessType() string {
	return h.base.BusinessType()
}

func (h *categoryHandler) Category() string {
	return h.category
}

func (h *categoryHandler) ValidateProduct(p catalog.Product) bool {
	return h.base.ValidateProduct(p)
}

func (h *categoryHandler) Compare(ctx context.Context, a, b catalog.Product, query string) (*ComparisonResult, error) {
	cfg := h.catCfg.Comparison
	if cfg == nil {
		cfg = h.base.cfg.Comparison
	}
	return h.base.engine.Compare(a, b, query, cfg), nil
}

func (h *categoryHandler) Respond(query string) (Response, bool) {
	return h.base.respond(query, h.catCfg.Attributes)
}
