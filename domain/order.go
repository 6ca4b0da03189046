package domain

import "fmt"

// Domain bounds. Both the price ladder and the order registry are sized from
// these at construction and never grow.
const (
	// PriceMax is one past the highest representable price tick.
	PriceMax = 4500

	// MaxOrders is one past the highest addressable order id.
	MaxOrders = 10000
)

// Side represents the order side (Buy or Sell)
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

// OrderID is both the public identifier of an order and its registry slot.
type OrderID uint32

// Price is a price expressed in ticks.
type Price uint16

// Quantity is the remaining unfilled amount of an order.
type Quantity uint16

// Order represents a plain resting limit order.
// Memory layout: 4 + 2 + 2 + 1 bytes, padded to 12, so a registry slot
// (order + presence flag) stays within 16 bytes.
type Order struct {
	ID       OrderID
	Price    Price
	Quantity Quantity
	Side     Side
}

// NewLimitOrder creates a new limit order
func NewLimitOrder(id OrderID, side Side, price Price, quantity Quantity) Order {
	return Order{
		ID:       id,
		Price:    price,
		Quantity: quantity,
		Side:     side,
	}
}

// Valid reports whether s is one of the two defined sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the contra side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// ValidID reports whether id addresses a registry slot.
func ValidID(id OrderID) bool {
	return id < MaxOrders
}

// ValidPrice reports whether p addresses a ladder level.
func ValidPrice(p Price) bool {
	return p < PriceMax
}

func (o Order) String() string {
	return fmt.Sprintf("Order{ID=%d, %s %d@%d}", o.ID, o.Side, o.Quantity, o.Price)
}
