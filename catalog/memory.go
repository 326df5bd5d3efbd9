package catalog

import (
	"context"
	"strings"
	"sync"
)

// MemoryCatalog is an in-memory Catalog, used in tests and small deployments.
type MemoryCatalog struct {
	mu      sync.RWMutex
	byID    map[string]Product
	ordered []string
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		byID: make(map[string]Product),
	}
}

// Add inserts or replaces a product.
func (c *MemoryCatalog) Add(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[p.ID]; !exists {
		c.ordered = append(c.ordered, p.ID)
	}
	c.byID[p.ID] = p
}

// GetProduct returns the product with the given ID.
func (c *MemoryCatalog) GetProduct(ctx context.Context, id string) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// SearchProducts returns products matching the criteria in insertion order.
func (c *MemoryCatalog) SearchProducts(ctx context.Context, criteria Criteria) ([]Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query := strings.ToLower(criteria.Query)

	var results []Product
	for _, id := range c.ordered {
		p := c.byID[id]
		if criteria.BusinessType != "" && p.BusinessType != criteria.BusinessType {
			continue
		}
		if criteria.Category != "" && p.Category != criteria.Category {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		results = append(results, p)
		if criteria.Limit > 0 && len(results) >= criteria.Limit {
			break
		}
	}
	return results, nil
}

func matchesQuery(p Product, queryLower string) bool {
	if strings.Contains(queryLower, strings.ToLower(p.ProductName)) {
		return true
	}
	if strings.Contains(strings.ToLower(p.ProductName), queryLower) {
		return true
	}
	for _, kw := range p.Keywords {
		if strings.Contains(queryLower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
