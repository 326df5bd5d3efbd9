package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvoBelohlav/chatcore/catalog"
	"github.com/IvoBelohlav/chatcore/configstore"
)

func phoneA() catalog.Product {
	return catalog.Product{
		ID:          "phone-a",
		ProductName: "Nova X1",
		Category:    "phones",
		Features:    []string{"Wireless charging", "Dual SIM"},
		Pricing:     map[string]any{"price": 14990},
		TechnicalSpecifications: map[string]string{
			"battery": "5000 mAh",
			"display": "6.5 in",
			"storage": "128 GB",
		},
	}
}

func phoneB() catalog.Product {
	return catalog.Product{
		ID:          "phone-b",
		ProductName: "Orbit S2",
		Category:    "phones",
		Features:    []string{"Dual SIM", "Water resistance"},
		Pricing:     map[string]any{"price": 12490},
		TechnicalSpecifications: map[string]string{
			"battery": "4200 mAh",
			"display": "6.5 in",
			"storage": "256 GB",
		},
	}
}

func TestCompareSummaryNamesBothProducts(t *testing.T) {
	e := NewEngine(nil)

	result := e.Compare(phoneA(), phoneB(), "which phone is better?", nil)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Summary)
	assert.Contains(t, result.Summary, "Nova X1")
	assert.Contains(t, result.Summary, "Orbit S2")
}

func TestCompareDefaultFieldOrder(t *testing.T) {
	e := NewEngine(nil)

	result := e.Compare(phoneA(), phoneB(), "", nil)

	// Price first, then spec union in sorted order.
	got := make([]string, 0, len(result.Comparison))
	for _, fc := range result.Comparison {
		got = append(got, fc.Field)
	}
	assert.Equal(t, []string{"price", "battery", "display", "storage"}, got)
}

func TestCompareDeterministic(t *testing.T) {
	e := NewEngine(nil)

	first := e.Compare(phoneA(), phoneB(), "battery life", nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Compare(phoneA(), phoneB(), "battery life", nil))
	}
}

func TestCompareQueryPrioritizesFields(t *testing.T) {
	e := NewEngine(nil)

	result := e.Compare(phoneA(), phoneB(), "how much storage do they have?", nil)
	require.NotEmpty(t, result.Comparison)
	assert.Equal(t, "storage", result.Comparison[0].Field)
}

func TestCompareOutcomes(t *testing.T) {
	e := NewEngine(nil)

	result := e.Compare(phoneA(), phoneB(), "", nil)
	outcomes := make(map[string]Outcome, len(result.Comparison))
	for _, fc := range result.Comparison {
		outcomes[fc.Field] = fc.Outcome
	}

	assert.Equal(t, OutcomeAGreater, outcomes["price"])
	assert.Equal(t, OutcomeAGreater, outcomes["battery"])
	assert.Equal(t, OutcomeEqual, outcomes["display"])
	assert.Equal(t, OutcomeBGreater, outcomes["storage"])
}

func TestCompareFeatureInsights(t *testing.T) {
	e := NewEngine(nil)

	result := e.Compare(phoneA(), phoneB(), "", nil)

	assert.Contains(t, result.Insights,
		"Nova X1 offers Wireless charging, which Orbit S2 does not")
	assert.Contains(t, result.Insights,
		"Orbit S2 offers Water resistance, which Nova X1 does not")
}

func TestCompareConfiguredFields(t *testing.T) {
	e := NewEngine(nil)
	cfg := &configstore.ComparisonConfig{
		KeyFeatures:       []string{"storage", "battery"},
		ComparisonMetrics: []string{"price", "warranty"},
	}

	result := e.Compare(phoneA(), phoneB(), "", cfg)

	got := make([]string, 0, len(result.Comparison))
	for _, fc := range result.Comparison {
		got = append(got, fc.Field)
	}
	// Declared order, restricted to fields either product carries:
	// "warranty" is absent from both and drops out.
	assert.Equal(t, []string{"storage", "battery", "price"}, got)
}

func TestCompareIdenticalProducts(t *testing.T) {
	e := NewEngine(nil)

	result := e.Compare(phoneA(), phoneA(), "", nil)
	assert.Empty(t, result.Insights)
	assert.Contains(t, result.Summary, "no meaningful difference")
}

func TestCompareSparseProducts(t *testing.T) {
	e := NewEngine(nil)
	a := catalog.Product{ID: "a", ProductName: "Mystery A"}
	b := catalog.Product{ID: "b", ProductName: "Mystery B"}

	result := e.Compare(a, b, "", nil)
	require.NotNil(t, result)
	assert.Empty(t, result.Comparison)
	assert.Contains(t, result.Summary, "limited")
	assert.Contains(t, result.Summary, "Mystery A")
	assert.Contains(t, result.Summary, "Mystery B")
}

func TestCompareRecommendationTemplate(t *testing.T) {
	e := NewEngine(nil)
	cfg := &configstore.ComparisonConfig{
		KeyFeatures:            []string{"battery", "storage"},
		RecommendationTemplate: "Pick between {product_a} and {product_b} by {top_feature}.",
	}

	result := e.Compare(phoneA(), phoneB(), "", cfg)
	assert.Equal(t, "Pick between Nova X1 and Orbit S2 by battery.", result.Summary)
}

func TestComparisonResultJSONRoundTrip(t *testing.T) {
	e := NewEngine(nil)

	original := e.Compare(phoneA(), phoneB(), "battery and storage", nil)

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ComparisonResult
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, original.Summary, decoded.Summary)
	assert.Equal(t, original.Insights, decoded.Insights)
	require.Len(t, decoded.Comparison, len(original.Comparison))
	for i := range original.Comparison {
		assert.Equal(t, original.Comparison[i], decoded.Comparison[i])
	}
	require.Len(t, decoded.Products, 2)
	assert.Equal(t, "phone-a", decoded.Products[0].ID)
	assert.Equal(t, "phone-b", decoded.Products[1].ID)
}

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"5000 mAh", 5000, true},
		{"1,4 kg", 1.4, true},
		{"6.5 in", 6.5, true},
		{"12990 Kč", 12990, true},
		{"128GB", 128, true},
		{"-10", -10, true},
		{"fast", 0, false},
		{"8 cores", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseMeasure(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
