package orders

import (
	"fmt"
	"strings"
)

// ValidateCreate checks the creation payload before any transaction work.
// Checks run in a fixed order: top-level fields, then address subfields
// when the order is a delivery, then the item list.
func ValidateCreate(req CreateOrderRequest) error {
	if req.OfficeID <= 0 {
		return fmt.Errorf("%w: office_id is required", ErrValidationFailed)
	}
	delivery := DeliveryMethod(req.DeliveryMethod)
	if !delivery.IsValid() {
		return fmt.Errorf("%w: delivery_method must be %q or %q", ErrValidationFailed, DeliveryPickup, DeliveryCourier)
	}
	if !PaymentMethod(req.PaymentMethod).IsValid() {
		return fmt.Errorf("%w: payment_method must be %q or %q", ErrValidationFailed, PaymentCashOnDelivery, PaymentOnline)
	}

	if delivery == DeliveryCourier {
		if req.Address == nil {
			return ErrMissingAddress
		}
		if missing := missingAddressFields(*req.Address); len(missing) > 0 {
			return fmt.Errorf("%w: missing %s", ErrMissingAddress, strings.Join(missing, ", "))
		}
	}

	if len(req.Items) == 0 {
		return ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.PriceLineID <= 0 {
			return fmt.Errorf("%w: item %d", ErrMissingPriceLine, i)
		}
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("%w: item %d", ErrInvalidQuantity, i)
		}
	}
	return nil
}

func missingAddressFields(a AddressRequest) []string {
	var missing []string
	if strings.TrimSpace(a.Line1) == "" {
		missing = append(missing, "line1")
	}
	if strings.TrimSpace(a.Settlement) == "" {
		missing = append(missing, "settlement")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	return missing
}
