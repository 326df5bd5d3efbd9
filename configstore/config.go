// Package configstore loads and serves per-tenant business configuration.
// Configurations are loaded as a whole and replaced atomically; readers always
// see a complete snapshot.
package configstore

import (
	"fmt"
)

// Rule constrains one product field during validation.
type Rule struct {
	// Required marks the field as mandatory and non-empty.
	Required bool `yaml:"required" json:"required"`

	// Min is a lower bound for numeric fields (e.g. price >= 0).
	Min *float64 `yaml:"min" json:"min,omitempty"`

	// Max is an upper bound for numeric fields.
	Max *float64 `yaml:"max" json:"max,omitempty"`
}

// ComparisonConfig drives the comparison engine for a business type or category.
type ComparisonConfig struct {
	// KeyFeatures are spec fields to compare first, in declared order.
	KeyFeatures []string `yaml:"key_features" json:"keyFeatures,omitempty"`

	// ComparisonMetrics are additional fields appended after KeyFeatures.
	ComparisonMetrics []string `yaml:"comparison_metrics" json:"comparisonMetrics,omitempty"`

	// RecommendationTemplate renders the comparison summary. Supported
	// placeholders: {product_a}, {product_b}, {top_feature}, {second_feature}.
	RecommendationTemplate string `yaml:"recommendation_template" json:"recommendationTemplate,omitempty"`
}

// CategoryConfig overrides parts of the business-type behavior for one category.
// Unset fields fall back to the business-type defaults (single-level override).
type CategoryConfig struct {
	Comparison *ComparisonConfig `yaml:"comparison" json:"comparison,omitempty"`

	// Attributes extend or shadow the business-type attributes.
	Attributes map[string]string `yaml:"attributes" json:"attributes,omitempty"`
}

// BusinessConfig is the full configuration record for one business type.
type BusinessConfig struct {
	// Type is the globally unique business type key.
	Type string `yaml:"type" json:"type"`

	// Attributes is an open key-value map available to templates.
	Attributes map[string]string `yaml:"attributes" json:"attributes,omitempty"`

	// QueryPatterns are regex patterns, in priority order, that route a query
	// to this business type's templated answers.
	QueryPatterns []string `yaml:"query_patterns" json:"queryPatterns,omitempty"`

	// ResponseTemplates maps template names to answer text with
	// {placeholder} substitution from Attributes.
	ResponseTemplates map[string]string `yaml:"response_templates" json:"responseTemplates,omitempty"`

	// FollowupQuestions lists followups offered per response template.
	FollowupQuestions map[string][]string `yaml:"followup_questions" json:"followupQuestions,omitempty"`

	// ValidationRules maps product fields to constraints. Empty means
	// permissive: every product validates.
	ValidationRules map[string]Rule `yaml:"validation_rules" json:"validationRules,omitempty"`

	// CategoryConfigs holds per-category specializations.
	CategoryConfigs map[string]CategoryConfig `yaml:"category_configs" json:"categoryConfigs,omitempty"`

	// Comparison is the business-type default comparison configuration.
	Comparison *ComparisonConfig `yaml:"comparison" json:"comparison,omitempty"`
}

// Validate checks structural invariants enforced at load time.
func (c BusinessConfig) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("business config missing type")
	}
	if len(c.ValidationRules) > 0 {
		for _, required := range []string{"product_name", "category"} {
			if _, ok := c.ValidationRules[required]; !ok {
				return fmt.Errorf("business config %q: validation_rules must include %q", c.Type, required)
			}
		}
	}
	return nil
}

// CategoryComparison returns the effective comparison config for a category,
// falling back to the business-type default.
func (c BusinessConfig) CategoryComparison(category string) *ComparisonConfig {
	if category != "" {
		if cat, ok := c.CategoryConfigs[category]; ok && cat.Comparison != nil {
			return cat.Comparison
		}
	}
	return c.Comparison
}

// HasCategory reports whether a specialization exists for category.
func (c BusinessConfig) HasCategory(category string) bool {
	_, ok := c.CategoryConfigs[category]
	return ok
}
