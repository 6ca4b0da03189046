package orderbook

import (
	"fmt"

	"lightning-orderbook/domain"
)

// MatchOrder matches an incoming limit order against the contra side and
// books any remainder on its own side. It returns the number of resting
// orders traded against (trade steps, not filled quantity).
//
// Matching walks the contra ladder from its best price while that price
// crosses the incoming limit. Within a level ids are consumed front to back:
//   - an id whose registry slot is empty, or now holds an order resting
//     elsewhere, is stale and dropped
//   - otherwise min(remaining, resting) trades; a resting order that reaches
//     zero leaves both its level and the registry in the same step, a
//     partially filled one stays at the front with its priority
//
// An emptied level is retired and the walk moves to the next occupied price.
// The remainder, if any, is written to the registry at o.ID, replacing any
// previous occupant. Self-matching is not prevented.
func (b *Book) MatchOrder(o domain.Order) (uint32, error) {
	if err := validate(o); err != nil {
		b.logger.Warnw("order rejected", "order", o, "error", err)
		return 0, fmt.Errorf("match order %d: %w", o.ID, err)
	}

	own, contra := &b.bids, &b.asks
	if o.Side == domain.SideSell {
		own, contra = contra, own
	}

	remaining := o.Quantity
	limit := int(o.Price)
	var trades uint32

	for remaining > 0 && contra.crosses(limit) {
		price := contra.best
		lvl := &contra.levels[price]

		for remaining > 0 && lvl.Len() > 0 {
			id := lvl.front()
			s := b.registry.at(id)
			if !s.live || s.order.Side != contra.side || int(s.order.Price) != price {
				lvl.pop()
				b.registry.unref(id)
				continue
			}

			trade := min(remaining, s.order.Quantity)
			remaining -= trade
			s.order.Quantity -= trade
			lvl.volume -= uint32(trade)
			trades++

			if b.onFill != nil {
				b.onFill(domain.Fill{
					TakerID:  o.ID,
					MakerID:  id,
					Side:     o.Side,
					Price:    domain.Price(price),
					Quantity: trade,
				})
			}

			if s.order.Quantity == 0 {
				b.registry.Clear(id)
				lvl.pop()
				b.registry.unref(id)
			}
		}

		if lvl.Len() > 0 {
			// incoming order exhausted with quantity left at this price
			break
		}
		contra.retire(price)
	}

	if remaining > 0 {
		rest := o
		rest.Quantity = remaining
		b.rest(own, rest)
	}
	return trades, nil
}

// rest books o on its own side and registers it
func (b *Book) rest(own *ladder, o domain.Order) {
	if prev := b.registry.at(o.ID); prev.live {
		// Caller reused a live id. The old order stops being live here, so its
		// quantity leaves its level now and its queue entry becomes stale.
		b.logger.Warnw("order id overwritten", "id", o.ID, "previous", prev.order)
		b.ladder(prev.order.Side).levels[prev.order.Price].volume -= uint32(prev.order.Quantity)
	}

	own.insert(int(o.Price), o.ID, o.Quantity)
	b.registry.ref(o.ID)
	b.registry.Set(o.ID, o)
}
