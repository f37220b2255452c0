package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgx used for lookups. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so resolution can run inside the caller's transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Resolver loads price lines from PostgreSQL.
type Resolver struct {
	q Querier
}

// NewResolver constructs Resolver over q.
func NewResolver(q Querier) *Resolver {
	return &Resolver{q: q}
}

// PriceLine returns the price line with the given id.
func (r *Resolver) PriceLine(ctx context.Context, priceLineID int64) (PriceLine, error) {
	var line PriceLine
	err := r.q.QueryRow(ctx, `SELECT pp.id, pp.product_id, p.article, p.name, pp.unit_price
FROM product_prices pp
JOIN products p ON p.id = pp.product_id
WHERE pp.id = $1`, priceLineID).
		Scan(&line.ID, &line.ProductID, &line.Article, &line.ProductName, &line.UnitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PriceLine{}, ErrPriceLineNotFound
		}
		return PriceLine{}, err
	}
	return line, nil
}
