package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-shop/meridian/internal/authz"
	"github.com/meridian-shop/meridian/internal/catalog"
	"github.com/meridian-shop/meridian/internal/ledger"
	"github.com/meridian-shop/meridian/internal/platform/db"
)

const (
	codeAttempts   = 5
	createAttempts = 2
)

// Service implements order creation, the status workflow and client
// cancellation. Every mutation of an order and its ledger rows happens in
// one transaction.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create places a new order for the acting client: order row first, then
// the shipping address when delivering, then one reservation and line
// insert per item, then the total. Any failure rolls the whole thing back.
func (s *Service) Create(ctx context.Context, actor authz.Actor, req CreateOrderRequest) (*Order, error) {
	if actor.IsZero() {
		return nil, ErrForbidden
	}
	if err := ValidateCreate(req); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		order, err := s.create(ctx, actor, req)
		if err == nil {
			return order, nil
		}
		// Another order claimed the same public code between our probe and
		// the insert. Rare; retry with a fresh code.
		if db.IsUniqueViolation(err) {
			if s.logger != nil {
				s.logger.Warn("public code collision, retrying", slog.Int("attempt", attempt+1))
			}
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: %v", ErrCodeExhausted, lastErr)
}

func (s *Service) create(ctx context.Context, actor authz.Actor, req CreateOrderRequest) (*Order, error) {
	var orderID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		code, err := s.allocateCode(ctx, repo)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		order := &Order{
			Code:           code,
			ClientID:       actor.ID,
			OfficeID:       req.OfficeID,
			Status:         StatusNew,
			DeliveryMethod: DeliveryMethod(req.DeliveryMethod),
			PaymentMethod:  PaymentMethod(req.PaymentMethod),
			Total:          decimal.Zero,
			Comment:        req.Comment,
			OrderedAt:      now,
			LastChange:     now,
		}
		if err := repo.Insert(ctx, order); err != nil {
			return err
		}
		orderID = order.ID

		if order.DeliveryMethod == DeliveryCourier {
			addressID, err := repo.FindOrCreateAddress(ctx, Address{
				Line1:      req.Address.Line1,
				Line2:      req.Address.Line2,
				Settlement: req.Address.Settlement,
				Region:     req.Address.Region,
				PostalCode: req.Address.PostalCode,
				Country:    req.Address.Country,
			})
			if err != nil {
				return fmt.Errorf("resolve address: %w", err)
			}
			if err := repo.LinkAddress(ctx, order.ID, addressID); err != nil {
				return err
			}
		}

		store := repo.Ledger()
		total := decimal.Zero
		for _, item := range req.Items {
			line, err := repo.PriceLine(ctx, item.PriceLineID)
			if err != nil {
				if errors.Is(err, catalog.ErrPriceLineNotFound) {
					return fmt.Errorf("%w: price line %d", ErrMissingPriceLine, item.PriceLineID)
				}
				return err
			}

			if _, err := store.Reserve(ctx, line.ProductID, order.OfficeID, item.Quantity); err != nil {
				var insufficient *ledger.InsufficientStockError
				if errors.As(err, &insufficient) {
					insufficient.ProductName = line.ProductName
				}
				return err
			}

			if err := repo.InsertItem(ctx, &Item{
				OrderID:     order.ID,
				PriceLineID: line.ID,
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Article:     line.Article,
				UnitPrice:   line.UnitPrice,
				Quantity:    item.Quantity,
			}); err != nil {
				return err
			}
			total = total.Add(line.UnitPrice.Mul(item.Quantity))
		}

		return repo.UpdateTotal(ctx, order.ID, total)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, Ref{ID: orderID})
}

func (s *Service) allocateCode(ctx context.Context, repo TxRepository) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := NewCode()
		if err != nil {
			return "", err
		}
		exists, err := repo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

// ChangeStatus moves the order along the workflow. Back-office roles only.
// A request naming the current status is a no-op, so retried requests never
// double-apply the ledger effect.
func (s *Service) ChangeStatus(ctx context.Context, actor authz.Actor, ref Ref, rawStatus string) (*Order, error) {
	if !actor.CanManageOrders() {
		return nil, ErrForbidden
	}
	status := Status(rawStatus)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}

	var orderID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		order, err := repo.GetForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		orderID = order.ID

		if order.Status == status {
			return nil
		}
		if !CanTransition(order.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, status)
		}
		if err := s.applyEffect(ctx, repo, order, TransitionEffect(order.Status, status)); err != nil {
			return err
		}
		return repo.UpdateStatus(ctx, order.ID, status, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, Ref{ID: orderID})
}

// Cancel is the client-facing cancellation: owner only, Completed orders
// cannot be cancelled, a cancelled order is rejected rather than restored
// twice.
func (s *Service) Cancel(ctx context.Context, actor authz.Actor, ref Ref) (*Order, error) {
	if actor.IsZero() {
		return nil, ErrForbidden
	}

	var orderID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		order, err := repo.GetForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		orderID = order.ID

		if order.ClientID != actor.ID {
			return ErrForbidden
		}
		switch order.Status {
		case StatusCompleted:
			return ErrOrderCompleted
		case StatusCancelled:
			return ErrAlreadyCancelled
		}
		if err := s.applyEffect(ctx, repo, order, EffectReturnToShelf); err != nil {
			return err
		}
		return repo.UpdateStatus(ctx, order.ID, StatusCancelled, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, Ref{ID: orderID})
}

func (s *Service) applyEffect(ctx context.Context, repo TxRepository, order *Order, effect LedgerEffect) error {
	if effect == EffectNone {
		return nil
	}
	items, err := repo.Items(ctx, order.ID)
	if err != nil {
		return err
	}
	store := repo.Ledger()

	for _, item := range items {
		switch effect {
		case EffectReturnToShelf:
			if err := store.Restock(ctx, item.ProductID, order.OfficeID, item.Quantity); err != nil {
				return err
			}
			if err := store.Release(ctx, item.ProductID, order.OfficeID, item.Quantity); err != nil {
				return err
			}
		case EffectTakeFromShelf:
			// Reserve then consume, so the stock freed by cancellation is
			// claimed back only when it is still on the shelf.
			if _, err := store.Reserve(ctx, item.ProductID, order.OfficeID, item.Quantity); err != nil {
				return s.nameStock(err, item)
			}
			if err := store.Consume(ctx, item.ProductID, order.OfficeID, item.Quantity); err != nil {
				return s.nameStock(err, item)
			}
		}
	}
	return nil
}

func (s *Service) nameStock(err error, item Item) error {
	var insufficient *ledger.InsufficientStockError
	if errors.As(err, &insufficient) && insufficient.ProductName == "" {
		insufficient.ProductName = item.ProductName
	}
	return err
}

// Get loads one order for the owner or a back-office actor.
func (s *Service) Get(ctx context.Context, actor authz.Actor, ref Ref) (*Order, error) {
	order, err := s.repo.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if order.ClientID != actor.ID && !actor.CanManageOrders() {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListMine returns the acting client's orders, newest first.
func (s *Service) ListMine(ctx context.Context, actor authz.Actor) ([]Order, error) {
	if actor.IsZero() {
		return nil, ErrForbidden
	}
	return s.repo.ListByClient(ctx, actor.ID)
}

// List returns filtered orders for back-office actors.
func (s *Service) List(ctx context.Context, actor authz.Actor, filter ListFilter) ([]Order, int, error) {
	if !actor.CanManageOrders() {
		return nil, 0, ErrForbidden
	}
	return s.repo.List(ctx, filter)
}
