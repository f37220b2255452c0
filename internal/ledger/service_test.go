package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memKey struct {
	productID int64
	officeID  int64
}

// memStore is an in-memory StorePort/TxStore with the same semantics as the
// SQL-backed store.
type memStore struct {
	rows      map[memKey]Row
	movements []Movement
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[memKey]Row)}
}

func (m *memStore) seed(productID, officeID int64, quantity, ordered string) {
	m.rows[memKey{productID, officeID}] = Row{
		ProductID: productID,
		OfficeID:  officeID,
		Quantity:  decimal.RequireFromString(quantity),
		Ordered:   decimal.RequireFromString(ordered),
		UpdatedAt: time.Now().UTC(),
	}
}

func (m *memStore) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return fn(ctx, m)
}

func (m *memStore) GetAvailability(ctx context.Context, productID, officeID int64) (Availability, error) {
	row, ok := m.rows[memKey{productID, officeID}]
	if !ok {
		return Availability{}, ErrRowNotFound
	}
	return Availability{
		ProductID: productID,
		OfficeID:  officeID,
		Total:     row.Quantity,
		Reserved:  row.Ordered,
		Available: row.Available(),
	}, nil
}

func (m *memStore) GetForUpdate(ctx context.Context, productID, officeID int64) (Row, error) {
	row, ok := m.rows[memKey{productID, officeID}]
	if !ok {
		return Row{ProductID: productID, OfficeID: officeID}, ErrRowNotFound
	}
	return row, nil
}

func (m *memStore) Reserve(ctx context.Context, productID, officeID int64, qty decimal.Decimal) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, ErrInvalidQuantity
	}
	row, err := m.GetForUpdate(ctx, productID, officeID)
	if err != nil {
		return decimal.Zero, err
	}
	available := row.Available()
	if available.LessThan(qty) {
		return decimal.Zero, &InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
	}
	row.Ordered = row.Ordered.Add(qty)
	m.put(row, MovementReserve, qty)
	return available.Sub(qty), nil
}

func (m *memStore) Release(ctx context.Context, productID, officeID int64, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	row, err := m.GetForUpdate(ctx, productID, officeID)
	if err != nil {
		return err
	}
	newOrdered := row.Ordered.Sub(qty)
	if newOrdered.IsNegative() {
		return ErrCorrupt
	}
	row.Ordered = newOrdered
	m.put(row, MovementRelease, qty)
	return nil
}

func (m *memStore) Restock(ctx context.Context, productID, officeID int64, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	row, err := m.GetForUpdate(ctx, productID, officeID)
	if err != nil {
		return err
	}
	row.Quantity = row.Quantity.Add(qty)
	m.put(row, MovementRestock, qty)
	return nil
}

func (m *memStore) Consume(ctx context.Context, productID, officeID int64, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	row, err := m.GetForUpdate(ctx, productID, officeID)
	if err != nil {
		return err
	}
	newQty := row.Quantity.Sub(qty)
	if newQty.IsNegative() || newQty.LessThan(row.Ordered) {
		return &InsufficientStockError{ProductID: productID, Requested: qty, Available: row.Available()}
	}
	row.Quantity = newQty
	m.put(row, MovementConsume, qty)
	return nil
}

func (m *memStore) put(row Row, kind MovementKind, qty decimal.Decimal) {
	row.UpdatedAt = time.Now().UTC()
	m.rows[memKey{row.ProductID, row.OfficeID}] = row
	m.movements = append(m.movements, Movement{
		ProductID: row.ProductID,
		OfficeID:  row.OfficeID,
		Kind:      kind,
		Qty:       qty,
	})
}

type memCache struct {
	entries     map[memKey]Availability
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[memKey]Availability)}
}

func (c *memCache) Get(ctx context.Context, productID, officeID int64) (Availability, bool) {
	av, ok := c.entries[memKey{productID, officeID}]
	return av, ok
}

func (c *memCache) Set(ctx context.Context, av Availability) {
	c.entries[memKey{av.ProductID, av.OfficeID}] = av
}

func (c *memCache) Invalidate(ctx context.Context, productID, officeID int64) {
	delete(c.entries, memKey{productID, officeID})
	c.invalidated++
}

func TestServiceAvailability(t *testing.T) {
	store := newMemStore()
	store.seed(1, 10, "8", "3")
	cache := newMemCache()
	svc := NewService(store, cache, nil)

	av, err := svc.Availability(context.Background(), 1, 10)
	require.NoError(t, err)
	require.True(t, av.Total.Equal(decimal.NewFromInt(8)))
	require.True(t, av.Reserved.Equal(decimal.NewFromInt(3)))
	require.True(t, av.Available.Equal(decimal.NewFromInt(5)))

	// second read is served from cache even if the row changed underneath
	store.seed(1, 10, "0", "0")
	av, err = svc.Availability(context.Background(), 1, 10)
	require.NoError(t, err)
	require.True(t, av.Available.Equal(decimal.NewFromInt(5)))
}

func TestServiceAvailabilityUnknownRow(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)

	_, err := svc.Availability(context.Background(), 99, 10)
	require.ErrorIs(t, err, ErrRowNotFound)

	_, err = svc.Availability(context.Background(), 0, 10)
	require.ErrorIs(t, err, ErrRowNotFound)
}

func TestServiceIntake(t *testing.T) {
	store := newMemStore()
	store.seed(1, 10, "2", "1")
	cache := newMemCache()
	cache.Set(context.Background(), Availability{ProductID: 1, OfficeID: 10})
	svc := NewService(store, cache, nil)

	av, err := svc.Intake(context.Background(), AdjustmentInput{ProductID: 1, OfficeID: 10, Qty: decimal.NewFromInt(5)})
	require.NoError(t, err)
	require.True(t, av.Total.Equal(decimal.NewFromInt(7)))
	require.True(t, av.Available.Equal(decimal.NewFromInt(6)))
	require.Equal(t, 1, cache.invalidated)
	require.Len(t, store.movements, 1)
	require.Equal(t, MovementRestock, store.movements[0].Kind)
}

func TestServiceIssue(t *testing.T) {
	store := newMemStore()
	store.seed(1, 10, "7", "3")
	svc := NewService(store, nil, nil)

	av, err := svc.Issue(context.Background(), AdjustmentInput{ProductID: 1, OfficeID: 10, Qty: decimal.NewFromInt(4)})
	require.NoError(t, err)
	require.True(t, av.Total.Equal(decimal.NewFromInt(3)))
	require.True(t, av.Available.Equal(decimal.Zero))
}

func TestServiceIssueCannotTouchReserved(t *testing.T) {
	store := newMemStore()
	store.seed(1, 10, "7", "3")
	svc := NewService(store, nil, nil)

	_, err := svc.Issue(context.Background(), AdjustmentInput{ProductID: 1, OfficeID: 10, Qty: decimal.NewFromInt(5)})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.True(t, insufficient.Available.Equal(decimal.NewFromInt(4)))

	// the failed issue must not move the row
	row := store.rows[memKey{1, 10}]
	require.True(t, row.Quantity.Equal(decimal.NewFromInt(7)))
}

func TestServiceAdjustValidation(t *testing.T) {
	store := newMemStore()
	store.seed(1, 10, "7", "3")
	svc := NewService(store, nil, nil)

	_, err := svc.Intake(context.Background(), AdjustmentInput{ProductID: 1, OfficeID: 10, Qty: decimal.Zero})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Intake(context.Background(), AdjustmentInput{ProductID: 1, OfficeID: 10, Qty: decimal.NewFromInt(-2)})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Intake(context.Background(), AdjustmentInput{ProductID: 0, OfficeID: 10, Qty: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrRowNotFound)
}

func TestStoreReserveRelease(t *testing.T) {
	store := newMemStore()
	store.seed(1, 10, "5", "0")
	ctx := context.Background()

	left, err := store.Reserve(ctx, 1, 10, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.True(t, left.Equal(decimal.NewFromInt(2)))

	_, err = store.Reserve(ctx, 1, 10, decimal.NewFromInt(3))
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.True(t, insufficient.Available.Equal(decimal.NewFromInt(2)))

	require.NoError(t, store.Release(ctx, 1, 10, decimal.NewFromInt(3)))
	require.ErrorIs(t, store.Release(ctx, 1, 10, decimal.NewFromInt(1)), ErrCorrupt)
}
