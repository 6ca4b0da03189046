package orderbook

import (
	"fmt"

	"go.uber.org/zap"

	"lightning-orderbook/domain"
)

// FillHandler receives every trade step of a match, in execution order.
// It runs on the matching path and must not call back into the book.
type FillHandler func(domain.Fill)

// Option configures a Book at construction
type Option func(*Book)

// WithLogger sets the logger used for rejected input and id overwrites
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(b *Book) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithFillHandler registers a callback for each trade step
func WithFillHandler(fn FillHandler) Option {
	return func(b *Book) {
		b.onFill = fn
	}
}

// WithPriceIndex selects the price index behind both ladder sides
func WithPriceIndex(indexType IndexType) Option {
	return func(b *Book) {
		b.indexType = indexType
	}
}

// Book is a single-instrument limit order book with price-time priority.
//
// Architecture: fixed arrays for everything
//   - bids/asks: one Level per representable price plus a PriceIndex of
//     occupied prices and a cached best price per side
//   - registry:  one slot per order id, the single source of truth for
//     whether an order is live
//
// All storage is allocated in New and never grows, apart from the per-level
// id slices which reuse their backing arrays once drained.
//
// A Book is NOT safe for concurrent use. Price-time priority only means
// something under a total order of events, so callers serialize access,
// for example through matching.Engine.
type Book struct {
	bids     ladder
	asks     ladder
	registry Registry

	indexType IndexType
	onFill    FillHandler
	logger    *zap.SugaredLogger
}

// New creates an empty order book: every level empty, every registry slot
// empty, best bid and best ask set to "no liquidity".
func New(opts ...Option) *Book {
	b := &Book{
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.bids.init(domain.SideBuy, NewPriceIndex(b.indexType))
	b.asks.init(domain.SideSell, NewPriceIndex(b.indexType))
	return b
}

// IndexType returns the price index implementation in use
func (b *Book) IndexType() IndexType {
	return b.indexType
}

func (b *Book) ladder(side domain.Side) *ladder {
	if side == domain.SideBuy {
		return &b.bids
	}
	return &b.asks
}

// ModifyOrderByID sets the remaining quantity of a resting order.
//
//   - unknown or already removed id: no-op
//   - newQuantity == 0: the order is cancelled. Its registry slot is cleared
//     and its quantity leaves the level volume at once; the id itself stays
//     in the level queue until the next match walk drops it.
//   - newQuantity > 0: the level volume moves by the delta and the order
//     keeps its place in the queue.
//
// Only an id outside the registry is an error.
func (b *Book) ModifyOrderByID(id domain.OrderID, newQuantity domain.Quantity) error {
	if !domain.ValidID(id) {
		b.logger.Warnw("modify rejected", "id", id, "error", ErrIDOutOfRange)
		return fmt.Errorf("modify order %d: %w", id, ErrIDOutOfRange)
	}

	s := b.registry.at(id)
	if !s.live {
		return nil
	}

	lvl := &b.ladder(s.order.Side).levels[s.order.Price]
	if newQuantity == 0 {
		lvl.volume -= uint32(s.order.Quantity)
		b.registry.Clear(id)
		return nil
	}

	lvl.volume = lvl.volume - uint32(s.order.Quantity) + uint32(newQuantity)
	s.order.Quantity = newQuantity
	return nil
}

// CancelOrder removes a resting order. Same as ModifyOrderByID(id, 0).
func (b *Book) CancelOrder(id domain.OrderID) error {
	return b.ModifyOrderByID(id, 0)
}

// GetVolumeAtLevel returns the total resting quantity at price on side.
// Prices never traded at and prices fully cleared both report 0, as do
// out-of-range prices and sides.
func (b *Book) GetVolumeAtLevel(side domain.Side, price domain.Price) uint32 {
	if !side.Valid() || !domain.ValidPrice(price) {
		return 0
	}
	return b.ladder(side).volumeAt(int(price))
}

// OrderExists reports whether id is resting with a positive quantity
func (b *Book) OrderExists(id domain.OrderID) bool {
	if !domain.ValidID(id) {
		return false
	}
	o, live := b.registry.Get(id)
	return live && o.Quantity > 0
}

// LookupOrderByID returns the live order for id.
// Not performance sensitive: used for correctness checks.
func (b *Book) LookupOrderByID(id domain.OrderID) (domain.Order, error) {
	if domain.ValidID(id) {
		if o, live := b.registry.Get(id); live {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("lookup order %d: %w", id, ErrOrderNotFound)
}

// Reusable reports whether id can be given to a new order without aliasing
// an old one: it is not live and no level queue still carries it.
func (b *Book) Reusable(id domain.OrderID) bool {
	return domain.ValidID(id) && !b.registry.at(id).live && !b.registry.Referenced(id)
}

// Len returns the number of live orders on both sides
func (b *Book) Len() int {
	return b.registry.Len()
}

// BestBid returns the highest occupied bid price.
// A level holding only cancelled entries still counts until it is walked.
func (b *Book) BestBid() (domain.Price, bool) {
	if b.bids.empty() {
		return 0, false
	}
	return domain.Price(b.bids.best), true
}

// BestAsk returns the lowest occupied ask price.
func (b *Book) BestAsk() (domain.Price, bool) {
	if b.asks.empty() {
		return 0, false
	}
	return domain.Price(b.asks.best), true
}

// Depth returns up to levels price levels with resting volume on side, best first
func (b *Book) Depth(side domain.Side, levels int) []PriceLevel {
	if !side.Valid() {
		return nil
	}
	return b.ladder(side).depth(levels, &b.registry)
}
