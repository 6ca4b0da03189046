package orderbook

import (
	"errors"
	"fmt"

	"lightning-orderbook/domain"
)

var (
	// ErrOrderNotFound is returned by LookupOrderByID only. Every other
	// operation treats a missing id as a no-op or a zero result.
	ErrOrderNotFound = errors.New("order not found")

	ErrIDOutOfRange    = fmt.Errorf("order id outside [0, %d)", domain.MaxOrders)
	ErrPriceOutOfRange = fmt.Errorf("price outside [0, %d)", domain.PriceMax)
	ErrZeroQuantity    = errors.New("order quantity must be positive")
	ErrInvalidSide     = errors.New("invalid order side")
)

// validate rejects out-of-contract orders before anything is touched
func validate(o domain.Order) error {
	switch {
	case !domain.ValidID(o.ID):
		return ErrIDOutOfRange
	case !domain.ValidPrice(o.Price):
		return ErrPriceOutOfRange
	case o.Quantity == 0:
		return ErrZeroQuantity
	case !o.Side.Valid():
		return ErrInvalidSide
	}
	return nil
}
