// Package ledger tracks per (product, office) stock: on-hand quantity and the
// reserved quantity promised to open orders. It is the unit of contention for
// the whole order core; every mutation happens against a row read under lock
// inside the caller's transaction.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one inventory ledger record.
type Row struct {
	ProductID int64           `json:"product_id"`
	OfficeID  int64           `json:"office_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Ordered   decimal.Decimal `json:"ordered_quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Available returns the quantity still sellable.
func (r Row) Available() decimal.Decimal {
	return r.Quantity.Sub(r.Ordered)
}

// Availability is the read-only view served to catalog browsing.
type Availability struct {
	ProductID int64           `json:"product_id"`
	OfficeID  int64           `json:"office_id"`
	Total     decimal.Decimal `json:"total"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
}

// MovementKind enumerates ledger adjustments recorded in the journal.
type MovementKind string

const (
	MovementReserve MovementKind = "RESERVE"
	MovementRelease MovementKind = "RELEASE"
	MovementRestock MovementKind = "RESTOCK"
	MovementConsume MovementKind = "CONSUME"
)

// Movement is one journal entry describing a ledger adjustment.
type Movement struct {
	ID        int64
	ProductID int64
	OfficeID  int64
	Kind      MovementKind
	Qty       decimal.Decimal
	RefID     string
	Note      string
	PostedAt  time.Time
}

// Violation describes a ledger row breaking the reserved-within-on-hand
// invariant. Reported by the integrity scan, never silently repaired.
type Violation struct {
	ProductID int64
	OfficeID  int64
	Quantity  decimal.Decimal
	Ordered   decimal.Decimal
	Reason    string
}

// InsufficientStockError reports a reservation that does not fit within the
// available quantity. ProductName is filled in by callers that know it.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %q: available %s, requested %s",
		name, e.Available.String(), e.Requested.String())
}

var (
	// ErrRowNotFound indicates the (product, office) ledger row is absent.
	ErrRowNotFound = errors.New("ledger: inventory row not found")
	// ErrInvalidQuantity indicates a non-positive adjustment quantity.
	ErrInvalidQuantity = errors.New("ledger: quantity must be positive")
	// ErrCorrupt signals reserved quantity out of bounds. This is a data
	// corruption signal, not a condition to clamp over.
	ErrCorrupt = errors.New("ledger: reserved quantity out of bounds")
)
