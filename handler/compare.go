package handler

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/IvoBelohlav/chatcore/catalog"
	"github.com/IvoBelohlav/chatcore/configstore"
)

// Outcome classifies how two field values relate.
type Outcome string

const (
	OutcomeEqual        Outcome = "equal"
	OutcomeAGreater     Outcome = "a_greater"
	OutcomeBGreater     Outcome = "b_greater"
	OutcomeIncomparable Outcome = "incomparable"
)

// FieldComparison is the pairwise fact for one resolved field.
type FieldComparison struct {
	Field   string  `json:"field"`
	ValueA  string  `json:"valueA"`
	ValueB  string  `json:"valueB"`
	Outcome Outcome `json:"outcome"`
}

// ComparisonResult is the structured output of comparing two products.
// Slice ordering is part of the contract and survives serialization.
type ComparisonResult struct {
	Products   []catalog.Product `json:"products"`
	Comparison []FieldComparison `json:"comparison"`
	Insights   []string          `json:"insights"`
	Summary    string            `json:"summary"`
}

// DefaultRecommendationTemplate renders the summary when a tenant configures
// no template of its own.
const DefaultRecommendationTemplate = "{product_a} and {product_b} differ mainly in {top_feature}."

// Engine computes structured product comparisons. Field resolution is
// deterministic: configured fields in declared order, otherwise the sorted
// union of available fields.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a comparison engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Compare produces a ComparisonResult for two products under the given
// comparison configuration (may be nil). It never fails: sparse or malformed
// inputs degrade to a summary noting the limitation.
func (e *Engine) Compare(a, b catalog.Product, query string, cfg *configstore.ComparisonConfig) *ComparisonResult {
	fields := resolveFields(a, b, cfg)
	fields = prioritizeByQuery(fields, query)

	result := &ComparisonResult{
		Products: []catalog.Product{a, b},
	}

	var winners []FieldComparison
	for _, field := range fields {
		va, _ := fieldValue(a, field)
		vb, _ := fieldValue(b, field)

		fc := FieldComparison{
			Field:   field,
			ValueA:  va,
			ValueB:  vb,
			Outcome: compareValues(va, vb),
		}
		result.Comparison = append(result.Comparison, fc)

		switch fc.Outcome {
		case OutcomeAGreater:
			result.Insights = append(result.Insights,
				fmt.Sprintf("%s has higher %s (%s vs %s)", displayName(a), field, va, vb))
			winners = append(winners, fc)
		case OutcomeBGreater:
			result.Insights = append(result.Insights,
				fmt.Sprintf("%s has higher %s (%s vs %s)", displayName(b), field, vb, va))
			winners = append(winners, fc)
		}
	}

	// Feature lists are compared as sets: what one product offers that the
	// other does not.
	for _, extra := range missingFeatures(a, b) {
		result.Insights = append(result.Insights,
			fmt.Sprintf("%s offers %s, which %s does not", displayName(a), extra, displayName(b)))
	}
	for _, extra := range missingFeatures(b, a) {
		result.Insights = append(result.Insights,
			fmt.Sprintf("%s offers %s, which %s does not", displayName(b), extra, displayName(a)))
	}

	result.Summary = e.renderSummary(a, b, fields, winners, cfg)
	return result
}

func (e *Engine) renderSummary(a, b catalog.Product, fields []string, winners []FieldComparison, cfg *configstore.ComparisonConfig) string {
	nameA, nameB := displayName(a), displayName(b)

	if len(fields) < 2 {
		return fmt.Sprintf("Comparison of %s and %s was limited: not enough comparable details were available.", nameA, nameB)
	}
	if len(winners) == 0 {
		return fmt.Sprintf("There is no meaningful difference between %s and %s on the compared fields.", nameA, nameB)
	}

	top := winners[0].Field
	second := top
	if len(winners) > 1 {
		second = winners[1].Field
	}

	template := DefaultRecommendationTemplate
	if cfg != nil && cfg.RecommendationTemplate != "" {
		template = cfg.RecommendationTemplate
	} else if len(winners) > 1 {
		template = "{product_a} and {product_b} differ mainly in {top_feature} and {second_feature}."
	}

	return strings.NewReplacer(
		"{product_a}", nameA,
		"{product_b}", nameB,
		"{top_feature}", top,
		"{second_feature}", second,
	).Replace(template)
}

// resolveFields returns the ordered fields to compare. With a configuration
// present, the declared order of key_features then comparison_metrics wins,
// restricted to fields either product carries. Without one, the sorted union
// of both products' spec keys is used, with price first when available.
func resolveFields(a, b catalog.Product, cfg *configstore.ComparisonConfig) []string {
	if cfg != nil && (len(cfg.KeyFeatures) > 0 || len(cfg.ComparisonMetrics) > 0) {
		var fields []string
		seen := make(map[string]bool)
		for _, f := range append(append([]string{}, cfg.KeyFeatures...), cfg.ComparisonMetrics...) {
			if seen[f] {
				continue
			}
			seen[f] = true
			_, inA := fieldValue(a, f)
			_, inB := fieldValue(b, f)
			if inA || inB {
				fields = append(fields, f)
			}
		}
		return fields
	}

	union := make(map[string]bool)
	for k := range a.TechnicalSpecifications {
		union[k] = true
	}
	for k := range b.TechnicalSpecifications {
		union[k] = true
	}

	keys := make([]string, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []string
	if _, hasA := fieldValue(a, "price"); hasA {
		fields = append(fields, "price")
	} else if _, hasB := fieldValue(b, "price"); hasB {
		fields = append(fields, "price")
	}
	return append(fields, keys...)
}

// prioritizeByQuery stably moves fields mentioned in the query to the front.
func prioritizeByQuery(fields []string, query string) []string {
	if query == "" {
		return fields
	}
	queryLower := strings.ToLower(query)

	var mentioned, rest []string
	for _, f := range fields {
		if strings.Contains(queryLower, strings.ToLower(f)) {
			mentioned = append(mentioned, f)
		} else {
			rest = append(rest, f)
		}
	}
	return append(mentioned, rest...)
}

func fieldValue(p catalog.Product, field string) (string, bool) {
	if field == "price" {
		if p.Pricing != nil {
			if v, ok := p.Pricing["price"]; ok {
				return formatValue(v), true
			}
		}
		return "", false
	}
	if v, ok := p.TechnicalSpecifications[field]; ok && v != "" {
		return v, true
	}
	if p.CustomAttributes != nil {
		if v, ok := p.CustomAttributes[field]; ok {
			return formatValue(v), true
		}
	}
	return "", false
}

func formatValue(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func displayName(p catalog.Product) string {
	if p.ProductName != "" {
		return p.ProductName
	}
	return p.ID
}

func missingFeatures(of, in catalog.Product) []string {
	present := make(map[string]bool, len(in.Features))
	for _, f := range in.Features {
		present[strings.ToLower(f)] = true
	}

	var missing []string
	for _, f := range of.Features {
		if !present[strings.ToLower(f)] {
			missing = append(missing, f)
		}
	}
	return missing
}

// compareValues classifies a pair of field values. Numeric and unit-suffixed
// values compare numerically; everything else compares as text.
func compareValues(va, vb string) Outcome {
	na, aok := parseMeasure(va)
	nb, bok := parseMeasure(vb)

	switch {
	case aok && bok:
		switch {
		case na == nb:
			return OutcomeEqual
		case na > nb:
			return OutcomeAGreater
		default:
			return OutcomeBGreater
		}
	case aok || bok:
		return OutcomeIncomparable
	default:
		if strings.EqualFold(strings.TrimSpace(va), strings.TrimSpace(vb)) && va != "" {
			return OutcomeEqual
		}
		return OutcomeIncomparable
	}
}

var measurePattern = regexp.MustCompile(`^(-?\d+(?:[.,]\d+)?)\s*([a-z"%č]*)$`)

// knownUnits are suffixes stripped before numeric comparison.
var knownUnits = map[string]bool{
	"": true, "w": true, "kw": true, "gb": true, "mb": true, "tb": true,
	"ghz": true, "mhz": true, "hz": true, "mm": true, "cm": true, "m": true,
	"kg": true, "g": true, "mah": true, "wh": true, "px": true, "in": true,
	"\"": true, "%": true, "kč": true, "czk": true, "eur": true, "usd": true,
}

func parseMeasure(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	m := measurePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	if !knownUnits[m[2]] {
		return 0, false
	}

	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
