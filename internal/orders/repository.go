package orders

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-shop/meridian/internal/catalog"
	"github.com/meridian-shop/meridian/internal/ledger"
)

// Ref addresses an order by internal id or public code. All-digit inputs
// are tried as ids first; the repository falls back to the code column, so
// an all-digit public code still resolves.
type Ref struct {
	ID   int64
	Code string
}

// ParseRef interprets a path segment as an order reference.
func ParseRef(raw string) Ref {
	ref := Ref{Code: raw}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		ref.ID = id
	}
	return ref
}

// Repository is the read side plus the transaction entrypoint.
type Repository interface {
	// WithTx runs fn inside one transaction; every mutation of an order and
	// its ledger rows goes through the TxRepository it is handed.
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, ref Ref) (*Order, error)
	ListByClient(ctx context.Context, clientID int64) ([]Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int, error)
}

// TxRepository exposes order mutations bound to one transaction, together
// with the ledger store and price resolver bound to the same transaction.
type TxRepository interface {
	// GetForUpdate loads the order header with its row locked. Items are
	// loaded separately via Items.
	GetForUpdate(ctx context.Context, ref Ref) (*Order, error)
	Items(ctx context.Context, orderID int64) ([]Item, error)
	Insert(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, item *Item) error
	UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal) error
	UpdateStatus(ctx context.Context, orderID int64, status Status, at time.Time) error
	// FindOrCreateAddress returns the id of an existing identical address
	// or inserts a new row.
	FindOrCreateAddress(ctx context.Context, a Address) (int64, error)
	LinkAddress(ctx context.Context, orderID, addressID int64) error
	CodeExists(ctx context.Context, code string) (bool, error)
	PriceLine(ctx context.Context, priceLineID int64) (catalog.PriceLine, error)
	// Ledger returns the inventory store bound to this transaction.
	Ledger() ledger.TxStore
}
