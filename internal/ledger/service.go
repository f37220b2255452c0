package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// StorePort abstracts repository usage for the service.
type StorePort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
	GetAvailability(ctx context.Context, productID, officeID int64) (Availability, error)
}

// CachePort abstracts the availability read cache.
type CachePort interface {
	Get(ctx context.Context, productID, officeID int64) (Availability, bool)
	Set(ctx context.Context, av Availability)
	Invalidate(ctx context.Context, productID, officeID int64)
}

// Service coordinates ledger reads and back-office stock adjustments.
type Service struct {
	repo   StorePort
	cache  CachePort
	logger *slog.Logger
}

// NewService builds Service. cache may be nil.
func NewService(repo StorePort, cache CachePort, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// AdjustmentInput describes a back-office stock intake or issue.
type AdjustmentInput struct {
	ProductID int64
	OfficeID  int64
	Qty       decimal.Decimal
}

// Availability serves the read-only availability query.
func (s *Service) Availability(ctx context.Context, productID, officeID int64) (Availability, error) {
	if productID <= 0 || officeID <= 0 {
		return Availability{}, ErrRowNotFound
	}
	if s.cache != nil {
		if av, ok := s.cache.Get(ctx, productID, officeID); ok {
			return av, nil
		}
	}
	av, err := s.repo.GetAvailability(ctx, productID, officeID)
	if err != nil {
		return Availability{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, av)
	}
	return av, nil
}

// Intake restocks on-hand quantity and returns the fresh availability.
func (s *Service) Intake(ctx context.Context, input AdjustmentInput) (Availability, error) {
	return s.adjust(ctx, input, func(ctx context.Context, store TxStore) error {
		return store.Restock(ctx, input.ProductID, input.OfficeID, input.Qty)
	})
}

// Issue consumes on-hand quantity and returns the fresh availability.
func (s *Service) Issue(ctx context.Context, input AdjustmentInput) (Availability, error) {
	return s.adjust(ctx, input, func(ctx context.Context, store TxStore) error {
		return store.Consume(ctx, input.ProductID, input.OfficeID, input.Qty)
	})
}

func (s *Service) adjust(ctx context.Context, input AdjustmentInput, op func(context.Context, TxStore) error) (Availability, error) {
	if input.ProductID <= 0 || input.OfficeID <= 0 {
		return Availability{}, ErrRowNotFound
	}
	if !input.Qty.IsPositive() {
		return Availability{}, ErrInvalidQuantity
	}
	if err := s.repo.WithTx(ctx, op); err != nil {
		return Availability{}, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, input.ProductID, input.OfficeID)
	}
	av, err := s.repo.GetAvailability(ctx, input.ProductID, input.OfficeID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("ledger availability reload", slog.Any("error", err))
		}
		return Availability{}, err
	}
	return av, nil
}
