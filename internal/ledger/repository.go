package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-shop/meridian/internal/platform/db"
)

// Repository persists ledger data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes the callback against a tx-bound store.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewTxStore(tx))
	})
}

// GetAvailability reads the availability view without side effects. The
// result may be stale the moment it returns; reservation re-checks under
// lock.
func (r *Repository) GetAvailability(ctx context.Context, productID, officeID int64) (Availability, error) {
	var av Availability
	err := r.pool.QueryRow(ctx, `SELECT product_id, office_id, quantity, ordered_quantity, quantity - ordered_quantity
FROM inventory_ledger WHERE product_id=$1 AND office_id=$2`, productID, officeID).
		Scan(&av.ProductID, &av.OfficeID, &av.Total, &av.Reserved, &av.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Availability{}, ErrRowNotFound
		}
		return Availability{}, err
	}
	return av, nil
}

// ScanViolations lists rows breaking the reserved-within-on-hand invariant.
func (r *Repository) ScanViolations(ctx context.Context) ([]Violation, error) {
	rows, err := r.pool.Query(ctx, `SELECT product_id, office_id, quantity, ordered_quantity
FROM inventory_ledger
WHERE ordered_quantity < 0 OR ordered_quantity > quantity OR quantity < 0
ORDER BY office_id, product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []Violation
	for rows.Next() {
		var v Violation
		if err := rows.Scan(&v.ProductID, &v.OfficeID, &v.Quantity, &v.Ordered); err != nil {
			return nil, err
		}
		switch {
		case v.Ordered.IsNegative():
			v.Reason = "negative reserved quantity"
		case v.Quantity.IsNegative():
			v.Reason = "negative on-hand quantity"
		default:
			v.Reason = "reserved exceeds on-hand"
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}
