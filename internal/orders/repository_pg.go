package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-shop/meridian/internal/catalog"
	"github.com/meridian-shop/meridian/internal/ledger"
	"github.com/meridian-shop/meridian/internal/platform/db"
)

const orderColumns = `o.id, o.public_code, o.client_id, o.office_id, o.status,
o.delivery_method, o.payment_method, o.total, o.comment, o.address_id,
o.ordered_at, o.last_change, o.created_at, o.updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) Get(ctx context.Context, ref Ref) (*Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM orders o
WHERE ($1::bigint > 0 AND o.id = $1) OR o.public_code = $2`, orderColumns), ref.ID, ref.Code))
	if err != nil {
		return nil, err
	}
	o.Items, err = queryItems(ctx, r.pool, o.ID)
	if err != nil {
		return nil, err
	}
	if o.AddressID != nil {
		o.Address, err = queryAddress(ctx, r.pool, *o.AddressID)
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID int64) ([]Order, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM orders o
WHERE o.client_id = $1 ORDER BY o.ordered_at DESC, o.id DESC`, orderColumns), clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Order, int, error) {
	where := "WHERE 1=1"
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		where += " AND o.status = " + arg(*filter.Status)
	}
	if filter.DeliveryMethod != nil {
		where += " AND o.delivery_method = " + arg(*filter.DeliveryMethod)
	}
	if filter.PaymentMethod != nil {
		where += " AND o.payment_method = " + arg(*filter.PaymentMethod)
	}
	if filter.DateFrom != nil {
		where += " AND o.ordered_at >= " + arg(*filter.DateFrom)
	}
	if filter.DateTo != nil {
		where += " AND o.ordered_at <= " + arg(*filter.DateTo)
	}
	if filter.AmountMin != nil {
		where += " AND o.total >= " + arg(*filter.AmountMin)
	}
	if filter.AmountMax != nil {
		where += " AND o.total <= " + arg(*filter.AmountMax)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders o "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM orders o %s
ORDER BY o.ordered_at DESC, o.id DESC LIMIT %s OFFSET %s`,
		orderColumns, where, arg(limit), arg(filter.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	orders, err := collectOrders(rows)
	return orders, total, err
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetForUpdate(ctx context.Context, ref Ref) (*Order, error) {
	return scanOrder(r.tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM orders o
WHERE ($1::bigint > 0 AND o.id = $1) OR o.public_code = $2 FOR UPDATE OF o`, orderColumns), ref.ID, ref.Code))
}

func (r *txRepository) Items(ctx context.Context, orderID int64) ([]Item, error) {
	return queryItems(ctx, r.tx, orderID)
}

func (r *txRepository) Insert(ctx context.Context, o *Order) error {
	return r.tx.QueryRow(ctx, `INSERT INTO orders
(public_code, client_id, office_id, status, delivery_method, payment_method, total, comment, ordered_at, last_change)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
RETURNING id, created_at, updated_at`,
		o.Code, o.ClientID, o.OfficeID, o.Status, o.DeliveryMethod, o.PaymentMethod,
		o.Total, o.Comment, o.OrderedAt).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *txRepository) InsertItem(ctx context.Context, item *Item) error {
	return r.tx.QueryRow(ctx, `INSERT INTO order_items
(order_id, price_line_id, product_id, product_name, article, unit_price, quantity)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		item.OrderID, item.PriceLineID, item.ProductID, item.ProductName,
		item.Article, item.UnitPrice, item.Quantity).
		Scan(&item.ID)
}

func (r *txRepository) UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	return r.exec(ctx, `UPDATE orders SET total=$2, updated_at=NOW() WHERE id=$1`, orderID, total)
}

func (r *txRepository) UpdateStatus(ctx context.Context, orderID int64, status Status, at time.Time) error {
	return r.exec(ctx, `UPDATE orders SET status=$2, last_change=$3, updated_at=NOW() WHERE id=$1`,
		orderID, status, at)
}

func (r *txRepository) FindOrCreateAddress(ctx context.Context, a Address) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM addresses
WHERE line1=$1 AND line2=$2 AND settlement=$3 AND region=$4 AND postal_code=$5 AND country=$6`,
		a.Line1, a.Line2, a.Settlement, a.Region, a.PostalCode, a.Country).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	err = r.tx.QueryRow(ctx, `INSERT INTO addresses (line1, line2, settlement, region, postal_code, country)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		a.Line1, a.Line2, a.Settlement, a.Region, a.PostalCode, a.Country).Scan(&id)
	return id, err
}

func (r *txRepository) LinkAddress(ctx context.Context, orderID, addressID int64) error {
	return r.exec(ctx, `UPDATE orders SET address_id=$2, updated_at=NOW() WHERE id=$1`, orderID, addressID)
}

func (r *txRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE public_code=$1)`, code).Scan(&exists)
	return exists, err
}

func (r *txRepository) PriceLine(ctx context.Context, priceLineID int64) (catalog.PriceLine, error) {
	return catalog.NewResolver(r.tx).PriceLine(ctx, priceLineID)
}

func (r *txRepository) Ledger() ledger.TxStore {
	return ledger.NewTxStore(r.tx)
}

func (r *txRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.tx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Code, &o.ClientID, &o.OfficeID, &o.Status,
		&o.DeliveryMethod, &o.PaymentMethod, &o.Total, &o.Comment, &o.AddressID,
		&o.OrderedAt, &o.LastChange, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func queryItems(ctx context.Context, q querier, orderID int64) ([]Item, error) {
	rows, err := q.Query(ctx, `SELECT id, order_id, price_line_id, product_id, product_name, article, unit_price, quantity
FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.PriceLineID, &it.ProductID,
			&it.ProductName, &it.Article, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func queryAddress(ctx context.Context, q querier, addressID int64) (*Address, error) {
	var a Address
	err := q.QueryRow(ctx, `SELECT id, line1, line2, settlement, region, postal_code, country
FROM addresses WHERE id=$1`, addressID).
		Scan(&a.ID, &a.Line1, &a.Line2, &a.Settlement, &a.Region, &a.PostalCode, &a.Country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
