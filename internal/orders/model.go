// Package orders implements the order aggregate: header, immutable line
// items, optional deduplicated shipping address, and the status workflow
// with its inventory ledger effects.
package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order workflow state. Values are stored as-is and are
// case-sensitive.
type Status string

const (
	StatusNew        Status = "New"
	StatusProcessing Status = "Processing"
	StatusShipping   Status = "Shipping"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusProcessing, StatusShipping, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// DeliveryMethod is how the order reaches the client.
type DeliveryMethod string

const (
	DeliveryPickup  DeliveryMethod = "Pickup"
	DeliveryCourier DeliveryMethod = "Delivery"
)

func (d DeliveryMethod) IsValid() bool {
	return d == DeliveryPickup || d == DeliveryCourier
}

// PaymentMethod is how the order is paid.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CashOnDelivery"
	PaymentOnline         PaymentMethod = "Online"
)

func (p PaymentMethod) IsValid() bool {
	return p == PaymentCashOnDelivery || p == PaymentOnline
}

// Order is the aggregate header.
type Order struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	ClientID       int64           `json:"client_id"`
	OfficeID       int64           `json:"office_id"`
	Status         Status          `json:"status"`
	DeliveryMethod DeliveryMethod  `json:"delivery_method"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Total          decimal.Decimal `json:"total"`
	Comment        *string         `json:"comment,omitempty"`
	AddressID      *int64          `json:"-"`
	Address        *Address        `json:"address,omitempty"`
	Items          []Item          `json:"items,omitempty"`
	OrderedAt      time.Time       `json:"ordered_at"`
	LastChange     time.Time       `json:"last_change"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Item is one order line. Items are immutable once the order exists; the
// unit price is a snapshot of the price line at creation time.
type Item struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	PriceLineID int64           `json:"price_line_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Article     string          `json:"article"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// LineTotal returns unit price times quantity, exact.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(i.Quantity)
}

// Address is a shipping address, deduplicated across orders: two orders
// shipping to the same place share one row.
type Address struct {
	ID         int64  `json:"id"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	Settlement string `json:"settlement"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}
