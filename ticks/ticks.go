// Package ticks converts between decimal prices and the integer price ticks
// the book works in.
package ticks

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"lightning-orderbook/domain"
)

var (
	ErrOffTick     = errors.New("price is not a multiple of the tick size")
	ErrOutOfBand   = fmt.Errorf("price outside the %d-tick band", domain.PriceMax)
	ErrInvalidTick = errors.New("tick size must be positive")
)

// Converter maps decimal prices onto ticks of a fixed size, with tick 0 at base
type Converter struct {
	size decimal.Decimal
	base decimal.Decimal
}

// NewConverter parses the tick size, e.g. "0.01", with tick 0 at price zero
func NewConverter(size string) (Converter, error) {
	return NewBandConverter(size, "0")
}

// NewBandConverter parses the tick size and the price of tick 0, so the
// book's fixed band of domain.PriceMax ticks can sit around a reference price.
func NewBandConverter(size, base string) (Converter, error) {
	s, err := decimal.NewFromString(size)
	if err != nil {
		return Converter{}, fmt.Errorf("parse tick size %q: %w", size, err)
	}
	if !s.IsPositive() {
		return Converter{}, fmt.Errorf("tick size %s: %w", size, ErrInvalidTick)
	}
	b, err := decimal.NewFromString(base)
	if err != nil {
		return Converter{}, fmt.Errorf("parse band base %q: %w", base, err)
	}
	return Converter{size: s, base: b}, nil
}

// TickSize returns the configured tick size
func (c Converter) TickSize() decimal.Decimal {
	return c.size
}

// ToPrice converts a decimal price to ticks
func (c Converter) ToPrice(p decimal.Decimal) (domain.Price, error) {
	offset := p.Sub(c.base)
	if !offset.Mod(c.size).IsZero() {
		return 0, fmt.Errorf("price %s, tick %s: %w", p, c.size, ErrOffTick)
	}
	n := offset.Div(c.size)
	if n.IsNegative() || n.GreaterThanOrEqual(decimal.NewFromInt(domain.PriceMax)) {
		return 0, fmt.Errorf("price %s: %w", p, ErrOutOfBand)
	}
	return domain.Price(n.IntPart()), nil
}

// ParsePrice converts a decimal string to ticks
func (c Converter) ParsePrice(s string) (domain.Price, error) {
	p, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	return c.ToPrice(p)
}

// ToDecimal converts ticks back to a decimal price
func (c Converter) ToDecimal(p domain.Price) decimal.Decimal {
	return c.base.Add(c.size.Mul(decimal.NewFromInt(int64(p))))
}
