package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededCatalog() *MemoryCatalog {
	c := NewMemoryCatalog()
	c.Add(Product{
		ID: "wm-1", ProductName: "Washer X200", Category: "appliances", BusinessType: "retail",
		Keywords: []string{"washer", "laundry"},
	})
	c.Add(Product{
		ID: "wm-2", ProductName: "Washer X400", Category: "appliances", BusinessType: "retail",
		Keywords: []string{"washer", "laundry"},
	})
	c.Add(Product{
		ID: "tv-1", ProductName: "Vista 55", Category: "electronics", BusinessType: "retail",
		Keywords: []string{"tv"},
	})
	return c
}

func TestGetProduct(t *testing.T) {
	c := seededCatalog()

	p, err := c.GetProduct(context.Background(), "wm-1")
	require.NoError(t, err)
	assert.Equal(t, "Washer X200", p.ProductName)

	_, err = c.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSearchProducts(t *testing.T) {
	c := seededCatalog()

	t.Run("by keyword", func(t *testing.T) {
		got, err := c.SearchProducts(context.Background(), Criteria{Query: "washer"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		// Insertion order is preserved.
		assert.Equal(t, "wm-1", got[0].ID)
		assert.Equal(t, "wm-2", got[1].ID)
	})

	t.Run("by category", func(t *testing.T) {
		got, err := c.SearchProducts(context.Background(), Criteria{Category: "electronics"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "tv-1", got[0].ID)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := c.SearchProducts(context.Background(), Criteria{Query: "washer", Limit: 1})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("no match", func(t *testing.T) {
		got, err := c.SearchProducts(context.Background(), Criteria{Query: "drone"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
