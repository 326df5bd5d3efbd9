package qa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries() []Entry {
	return []Entry{
		{
			ID:              "shipping-eng",
			Question:        "How long does shipping take?",
			Answer:          "Standard shipping takes 2-3 business days.",
			Keywords:        []string{"shipping", "delivery", "long"},
			Language:        "eng",
			ImportanceLevel: 5,
			Order:           1,
			Followup:        "Would you like express options?",
		},
		{
			ID:              "returns-eng",
			Question:        "What is your return policy?",
			Answer:          "Returns are accepted within 30 days.",
			Keywords:        []string{"return", "refund", "policy"},
			Language:        "eng",
			ImportanceLevel: 3,
			Order:           2,
		},
		{
			ID:              "doprava-cze",
			Question:        "Jak dlouho trvá doprava?",
			Answer:          "Doprava trvá 2-3 pracovní dny.",
			Keywords:        []string{"doprava", "dlouho", "doručení"},
			Language:        "cze",
			ImportanceLevel: 5,
			Order:           1,
		},
	}
}

func TestResolveGreeting(t *testing.T) {
	r := NewResolver(testEntries(), Options{})

	tests := []struct {
		query    string
		language string
	}{
		{"hello", "eng"},
		{"Hello!", "eng"},
		{"hi there", "eng"},
		{"good morning", "eng"},
		{"Dobrý den", "cze"},
		{"ahoj, potřebuji poradit", "cze"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, ok := r.Resolve(tt.query, tt.language)
			require.True(t, ok)
			assert.Equal(t, IntentGreeting, c.Intent)
			assert.Equal(t, 1.0, c.Confidence)
		})
	}
}

func TestResolveGreetingNotSubstring(t *testing.T) {
	r := NewResolver(testEntries(), Options{})

	// "hi" inside another word is not a greeting.
	c, ok := r.Resolve("shipping cost", "eng")
	if ok {
		assert.NotEqual(t, IntentGreeting, c.Intent)
	}
}

func TestResolveFAQ(t *testing.T) {
	r := NewResolver(testEntries(), Options{})

	c, ok := r.Resolve("How long does delivery take?", "eng")
	require.True(t, ok)
	assert.Equal(t, IntentFAQ, c.Intent)
	assert.Equal(t, "Standard shipping takes 2-3 business days.", c.Answer)
	assert.Equal(t, "Would you like express options?", c.Followup)
	assert.Equal(t, "eng", c.Language)
	assert.InDelta(t, 2.0/3.0, c.Confidence, 1e-9)
}

func TestResolveAbstainsBelowThreshold(t *testing.T) {
	r := NewResolver(testEntries(), Options{})

	_, ok := r.Resolve("qwerty asdf zxcv", "eng")
	assert.False(t, ok)
}

func TestResolveCustomThreshold(t *testing.T) {
	r := NewResolver(testEntries(), Options{MinConfidence: 0.9})

	// Two of three keywords is not enough at 0.9.
	_, ok := r.Resolve("How long does delivery take?", "eng")
	assert.False(t, ok)
}

func TestResolveTieBreaking(t *testing.T) {
	entries := []Entry{
		{ID: "low", Answer: "low", Keywords: []string{"opening"}, Language: "eng", ImportanceLevel: 1, Order: 1},
		{ID: "high", Answer: "high", Keywords: []string{"opening"}, Language: "eng", ImportanceLevel: 9, Order: 5},
		{ID: "mid", Answer: "mid", Keywords: []string{"opening"}, Language: "eng", ImportanceLevel: 9, Order: 2},
	}
	r := NewResolver(entries, Options{})

	// Equal scores: highest importance wins, then lowest order.
	c, ok := r.Resolve("opening hours", "eng")
	require.True(t, ok)
	assert.Equal(t, "mid", c.Answer)
}

func TestResolveUnknownLanguageFallsBack(t *testing.T) {
	r := NewResolver(testEntries(), Options{})

	c, ok := r.Resolve("How long does shipping take?", "deu")
	require.True(t, ok)
	assert.Equal(t, "eng", c.Language)
	assert.Equal(t, "Standard shipping takes 2-3 business days.", c.Answer)
}

func TestResolveCzech(t *testing.T) {
	r := NewResolver(testEntries(), Options{})

	c, ok := r.Resolve("Jak dlouho trvá doprava?", "cze")
	require.True(t, ok)
	assert.Equal(t, "Doprava trvá 2-3 pracovní dny.", c.Answer)
	assert.Equal(t, "cze", c.Language)
}

func TestResolveEmptyQuery(t *testing.T) {
	r := NewResolver(testEntries(), Options{})

	_, ok := r.Resolve("   ", "eng")
	assert.False(t, ok)
}

func TestResolveQuestionContainment(t *testing.T) {
	entries := []Entry{
		{ID: "plain", Question: "where are you located", Answer: "Prague", Language: "eng"},
	}
	r := NewResolver(entries, Options{})

	c, ok := r.Resolve("Where are you located?", "eng")
	require.True(t, ok)
	assert.Equal(t, "Prague", c.Answer)
	assert.Equal(t, 1.0, c.Confidence)
}
