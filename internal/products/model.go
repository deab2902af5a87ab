// Package products holds the read-only product master consumed by the stock
// engine. Product data is owned by an external collaborator; this catalog
// only caches it by code and coordinates the one mutation that cascades into
// stock history: a product code rename.
package products

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Product is reference data keyed by code.
type Product struct {
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	DefaultUnit     string          `json:"default_unit"`
	DefaultCategory string          `json:"default_category"`
	MinStockLevel   decimal.Decimal `json:"min_stock_level"`
}

// ErrUnknownProduct indicates a code missing from the master.
var ErrUnknownProduct = errors.New("products: unknown product")

// ErrDuplicateProduct indicates a code collision on upsert or rename.
var ErrDuplicateProduct = errors.New("products: duplicate product code")
