// Package catalog resolves product price lines for order creation. Orders
// reference a price line, not a bare product, so the unit price charged is
// the one that was listed when the order was placed.
package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

// PriceLine is a product listing at a concrete unit price.
type PriceLine struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	Article     string          `json:"article"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ErrPriceLineNotFound indicates the referenced price line does not exist.
var ErrPriceLineNotFound = errors.New("catalog: price line not found")
