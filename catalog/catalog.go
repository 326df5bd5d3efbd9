// Package catalog provides read-only access to tenant product catalogs.
package catalog

import (
	"context"
	"errors"
)

// ErrProductNotFound indicates no product matched the requested ID.
var ErrProductNotFound = errors.New("product not found")

// Product is a single catalog entry. The catalog owns these records;
// the resolution core only reads them.
type Product struct {
	// ID uniquely identifies the product.
	ID string `json:"id"`

	// ProductName is the display name.
	ProductName string `json:"productName"`

	// Category is the sub-classification within the business type.
	Category string `json:"category"`

	// BusinessType links the product to a tenant business configuration.
	BusinessType string `json:"businessType"`

	// Features is an ordered list of feature descriptions.
	Features []string `json:"features,omitempty"`

	// Pricing holds price-related values (e.g. "price", "currency").
	Pricing map[string]any `json:"pricing,omitempty"`

	// TechnicalSpecifications holds spec fields used for comparison
	// (e.g. "processor", "memory", "power": "125W").
	TechnicalSpecifications map[string]string `json:"technicalSpecifications,omitempty"`

	// Keywords support query matching.
	Keywords []string `json:"keywords,omitempty"`

	// CustomAttributes is an open per-tenant extension map.
	CustomAttributes map[string]any `json:"customAttributes,omitempty"`
}

// Criteria narrows a product search.
type Criteria struct {
	// BusinessType restricts results to one tenant business type.
	BusinessType string

	// Category restricts results to a category within the business type.
	Category string

	// Query is matched against product names and keywords.
	Query string

	// Limit bounds the number of results. Zero means no limit.
	Limit int
}

// Catalog is the product source consumed by the resolution core.
type Catalog interface {
	// GetProduct returns the product with the given ID,
	// or ErrProductNotFound.
	GetProduct(ctx context.Context, id string) (*Product, error)

	// SearchProducts returns products matching the criteria,
	// in a stable order.
	SearchProducts(ctx context.Context, criteria Criteria) ([]Product, error)
}
