package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the order creation payload.
type CreateOrderRequest struct {
	OfficeID       int64               `json:"office_id" validate:"required,gt=0"`
	DeliveryMethod string              `json:"delivery_method" validate:"required"`
	PaymentMethod  string              `json:"payment_method" validate:"required"`
	Comment        *string             `json:"comment,omitempty"`
	Address        *AddressRequest     `json:"address,omitempty"`
	Items          []CreateItemRequest `json:"items"`
}

// AddressRequest is the shipping address payload. Line2 and Region are
// optional; everything else is required for delivery orders.
type AddressRequest struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	Settlement string `json:"settlement"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// CreateItemRequest is one requested order line.
type CreateItemRequest struct {
	PriceLineID int64           `json:"price_line_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ChangeStatusRequest is the back-office status change payload.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListFilter narrows the back-office order listing.
type ListFilter struct {
	Status         *Status
	DeliveryMethod *DeliveryMethod
	PaymentMethod  *PaymentMethod
	DateFrom       *time.Time
	DateTo         *time.Time
	AmountMin      *decimal.Decimal
	AmountMax      *decimal.Decimal
	Limit          int
	Offset         int
}
