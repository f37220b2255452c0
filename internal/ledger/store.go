package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TxStore exposes ledger mutations bound to an enclosing transaction. Every
// operation re-reads the row with SELECT ... FOR UPDATE; a previously loaded
// in-memory copy is never trusted.
type TxStore interface {
	GetForUpdate(ctx context.Context, productID, officeID int64) (Row, error)
	// Reserve increments the reserved quantity and returns the
	// post-reservation available amount. Fails with *InsufficientStockError
	// when the request does not fit.
	Reserve(ctx context.Context, productID, officeID int64, qty decimal.Decimal) (decimal.Decimal, error)
	// Release decrements the reserved quantity. A release below zero is a
	// corruption signal and aborts the transaction.
	Release(ctx context.Context, productID, officeID int64, qty decimal.Decimal) error
	// Restock increases the on-hand quantity.
	Restock(ctx context.Context, productID, officeID int64, qty decimal.Decimal) error
	// Consume decreases the on-hand quantity, keeping it within the
	// reserved quantity so availability never goes negative.
	Consume(ctx context.Context, productID, officeID int64, qty decimal.Decimal) error
}

type txStore struct {
	tx pgx.Tx
}

// NewTxStore binds ledger operations to tx.
func NewTxStore(tx pgx.Tx) TxStore {
	return &txStore{tx: tx}
}

func (s *txStore) GetForUpdate(ctx context.Context, productID, officeID int64) (Row, error) {
	var row Row
	err := s.tx.QueryRow(ctx, `SELECT product_id, office_id, quantity, ordered_quantity, updated_at
FROM inventory_ledger WHERE product_id=$1 AND office_id=$2 FOR UPDATE`, productID, officeID).
		Scan(&row.ProductID, &row.OfficeID, &row.Quantity, &row.Ordered, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Row{ProductID: productID, OfficeID: officeID}, ErrRowNotFound
		}
		return Row{}, err
	}
	return row, nil
}

func (s *txStore) Reserve(ctx context.Context, productID, officeID int64, qty decimal.Decimal) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, ErrInvalidQuantity
	}
	row, err := s.GetForUpdate(ctx, productID, officeID)
	if err != nil {
		return decimal.Zero, err
	}
	available := row.Available()
	if available.LessThan(qty) {
		return decimal.Zero, &InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: available,
		}
	}
	if err := s.update(ctx, productID, officeID, row.Quantity, row.Ordered.Add(qty)); err != nil {
		return decimal.Zero, err
	}
	if err := s.record(ctx, productID, officeID, MovementReserve, qty); err != nil {
		return decimal.Zero, err
	}
	return available.Sub(qty), nil
}

func (s *txStore) Release(ctx context.Context, productID, officeID int64, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	row, err := s.GetForUpdate(ctx, productID, officeID)
	if err != nil {
		return err
	}
	newOrdered := row.Ordered.Sub(qty)
	if newOrdered.IsNegative() {
		return ErrCorrupt
	}
	if err := s.update(ctx, productID, officeID, row.Quantity, newOrdered); err != nil {
		return err
	}
	return s.record(ctx, productID, officeID, MovementRelease, qty)
}

func (s *txStore) Restock(ctx context.Context, productID, officeID int64, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	row, err := s.GetForUpdate(ctx, productID, officeID)
	if err != nil {
		return err
	}
	if err := s.update(ctx, productID, officeID, row.Quantity.Add(qty), row.Ordered); err != nil {
		return err
	}
	return s.record(ctx, productID, officeID, MovementRestock, qty)
}

func (s *txStore) Consume(ctx context.Context, productID, officeID int64, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	row, err := s.GetForUpdate(ctx, productID, officeID)
	if err != nil {
		return err
	}
	newQty := row.Quantity.Sub(qty)
	if newQty.IsNegative() {
		return &InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: row.Quantity,
		}
	}
	if newQty.LessThan(row.Ordered) {
		return &InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: row.Available(),
		}
	}
	if err := s.update(ctx, productID, officeID, newQty, row.Ordered); err != nil {
		return err
	}
	return s.record(ctx, productID, officeID, MovementConsume, qty)
}

func (s *txStore) update(ctx context.Context, productID, officeID int64, quantity, ordered decimal.Decimal) error {
	tag, err := s.tx.Exec(ctx, `UPDATE inventory_ledger
SET quantity=$3, ordered_quantity=$4, updated_at=NOW()
WHERE product_id=$1 AND office_id=$2`, productID, officeID, quantity, ordered)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRowNotFound
	}
	return nil
}

func (s *txStore) record(ctx context.Context, productID, officeID int64, kind MovementKind, qty decimal.Decimal) error {
	_, err := s.tx.Exec(ctx, `INSERT INTO ledger_movements (product_id, office_id, kind, qty, ref_id, posted_at)
VALUES ($1,$2,$3,$4,$5,$6)`, productID, officeID, string(kind), qty, uuid.NewString(), time.Now().UTC())
	return err
}
