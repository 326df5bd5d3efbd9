package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCatalog implements Catalog backed by PostgreSQL.
type PostgresCatalog struct {
	pool      *pgxpool.Pool
	tableName string
}

// PostgresOption configures the catalog.
type PostgresOption func(*PostgresCatalog)

// WithTableName sets a custom table name.
func WithTableName(name string) PostgresOption {
	return func(c *PostgresCatalog) {
		c.tableName = name
	}
}

// NewPostgresCatalog creates a catalog on top of an existing connection pool.
func NewPostgresCatalog(pool *pgxpool.Pool, opts ...PostgresOption) *PostgresCatalog {
	c := &PostgresCatalog{
		pool:      pool,
		tableName: "products",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetProduct returns the product with the given ID.
func (c *PostgresCatalog) GetProduct(ctx context.Context, id string) (*Product, error) {
	query := fmt.Sprintf(`
		SELECT id, product_name, category, business_type,
		       features, pricing, technical_specifications, keywords, custom_attributes
		FROM %s
		WHERE id = $1
	`, c.tableName)

	row := c.pool.QueryRow(ctx, query, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning product: %w", err)
	}
	return p, nil
}

// SearchProducts returns products matching the criteria, ordered by ID for
// stable results.
func (c *PostgresCatalog) SearchProducts(ctx context.Context, criteria Criteria) ([]Product, error) {
	query := fmt.Sprintf(`
		SELECT id, product_name, category, business_type,
		       features, pricing, technical_specifications, keywords, custom_attributes
		FROM %s
		WHERE ($1 = '' OR business_type = $1)
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR product_name ILIKE '%%' || $3 || '%%')
		ORDER BY id
	`, c.tableName)

	args := []any{criteria.BusinessType, criteria.Category, criteria.Query}
	if criteria.Limit > 0 {
		query += " LIMIT $4"
		args = append(args, criteria.Limit)
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	defer rows.Close()

	var results []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		results = append(results, *p)
	}
	return results, rows.Err()
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var featuresJSON, pricingJSON, specsJSON, keywordsJSON, customJSON []byte

	err := row.Scan(
		&p.ID,
		&p.ProductName,
		&p.Category,
		&p.BusinessType,
		&featuresJSON,
		&pricingJSON,
		&specsJSON,
		&keywordsJSON,
		&customJSON,
	)
	if err != nil {
		return nil, err
	}

	if featuresJSON != nil {
		if err := json.Unmarshal(featuresJSON, &p.Features); err != nil {
			return nil, fmt.Errorf("unmarshaling features: %w", err)
		}
	}
	if pricingJSON != nil {
		if err := json.Unmarshal(pricingJSON, &p.Pricing); err != nil {
			return nil, fmt.Errorf("unmarshaling pricing: %w", err)
		}
	}
	if specsJSON != nil {
		if err := json.Unmarshal(specsJSON, &p.TechnicalSpecifications); err != nil {
			return nil, fmt.Errorf("unmarshaling technical specifications: %w", err)
		}
	}
	if keywordsJSON != nil {
		if err := json.Unmarshal(keywordsJSON, &p.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshaling keywords: %w", err)
		}
	}
	if customJSON != nil {
		if err := json.Unmarshal(customJSON, &p.CustomAttributes); err != nil {
			return nil, fmt.Errorf("unmarshaling custom attributes: %w", err)
		}
	}

	return &p, nil
}
