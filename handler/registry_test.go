package handler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvoBelohlav/chatcore/configstore"
)

func newTestRegistry(t *testing.T, configs ...configstore.BusinessConfig) *Registry {
	t.Helper()
	store := configstore.NewStore(nil)
	require.NoError(t, store.Load(context.Background(), configstore.StaticSource(configs)))
	return NewRegistry(store, nil)
}

func retailConfig() configstore.BusinessConfig {
	return configstore.BusinessConfig{
		Type: "retail",
		ValidationRules: map[string]configstore.Rule{
			"product_name": {Required: true},
			"category":     {Required: true},
		},
		CategoryConfigs: map[string]configstore.CategoryConfig{
			"electronics": {
				Comparison: &configstore.ComparisonConfig{
					KeyFeatures: []string{"processor", "memory"},
				},
			},
		},
	}
}

func TestGetReturnsCachedInstance(t *testing.T) {
	r := newTestRegistry(t, retailConfig())

	first, err := r.Get("retail", "")
	require.NoError(t, err)
	second, err := r.Get("retail", "")
	require.NoError(t, err)

	// Identity, not just equality.
	assert.Same(t, first, second)
}

func TestGetCategorySpecialization(t *testing.T) {
	r := newTestRegistry(t, retailConfig())

	base, err := r.Get("retail", "")
	require.NoError(t, err)
	electronics, err := r.Get("retail", "electronics")
	require.NoError(t, err)

	assert.NotSame(t, base, electronics)
	assert.Equal(t, "retail", electronics.BusinessType())
	assert.Equal(t, "electronics", electronics.Category())

	again, err := r.Get("retail", "electronics")
	require.NoError(t, err)
	assert.Same(t, electronics, again)
}

func TestGetUnknownCategorySharesDefault(t *testing.T) {
	r := newTestRegistry(t, retailConfig())

	base, err := r.Get("retail", "")
	require.NoError(t, err)
	unknown, err := r.Get("retail", "groceries")
	require.NoError(t, err)

	assert.Same(t, base, unknown)
}

func TestGetUnknownBusinessType(t *testing.T) {
	r := newTestRegistry(t, retailConfig())

	_, err := r.Get("unknown_business_type", "")
	var unknownErr *UnknownBusinessTypeError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "unknown_business_type", unknownErr.BusinessType)

	// Category does not change the outcome.
	_, err = r.Get("unknown_business_type", "electronics")
	assert.ErrorAs(t, err, &unknownErr)
}

func TestGetConcurrentFirstUse(t *testing.T) {
	r := newTestRegistry(t, retailConfig())

	const goroutines = 16
	results := make([]Handler, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := r.Get("retail", "electronics")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = h
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestLoadResetsHandlerCache(t *testing.T) {
	store := configstore.NewStore(nil)
	require.NoError(t, store.Load(context.Background(), configstore.StaticSource{retailConfig()}))
	r := NewRegistry(store, nil)

	before, err := r.Get("retail", "")
	require.NoError(t, err)

	require.NoError(t, r.Load(context.Background(), configstore.StaticSource{retailConfig()}))

	after, err := r.Get("retail", "")
	require.NoError(t, err)
	assert.NotSame(t, before, after)
}

func TestLoadFailureKeepsHandlers(t *testing.T) {
	r := newTestRegistry(t, retailConfig())

	before, err := r.Get("retail", "")
	require.NoError(t, err)

	bad := configstore.BusinessConfig{
		Type:            "broken",
		ValidationRules: map[string]configstore.Rule{"product_name": {Required: true}},
	}
	err = r.Load(context.Background(), configstore.StaticSource{bad})
	require.ErrorIs(t, err, configstore.ErrConfigLoad)

	after, err := r.Get("retail", "")
	require.NoError(t, err)
	assert.Same(t, before, after)
}
