package orderbook

import "lightning-orderbook/domain"

// compactThreshold is the consumed-prefix length after which a level that
// never fully drains shifts its live entries back to the start of the slice.
const compactThreshold = 64

// Level holds all resting order ids at one price on one side.
// orders[head:] is the FIFO queue, earliest first. It may contain ids whose
// registry slot was cleared by a cancel; those are dropped on the next walk.
// volume is the sum of quantities of the live orders in the queue.
type Level struct {
	orders []domain.OrderID
	head   int
	volume uint32
}

// Len returns the number of queued entries, stale ones included.
// A level with Len() == 0 is absent from the ladder.
func (l *Level) Len() int {
	return len(l.orders) - l.head
}

// Volume returns the aggregate resting volume at this level
func (l *Level) Volume() uint32 {
	return l.volume
}

func (l *Level) front() domain.OrderID {
	return l.orders[l.head]
}

func (l *Level) push(id domain.OrderID) {
	l.orders = append(l.orders, id)
}

// pop removes the front entry. The backing array is kept for reuse.
func (l *Level) pop() {
	l.head++
	switch {
	case l.head == len(l.orders):
		l.orders = l.orders[:0]
		l.head = 0
	case l.head >= compactThreshold && l.head*2 >= len(l.orders):
		n := copy(l.orders, l.orders[l.head:])
		l.orders = l.orders[:n]
		l.head = 0
	}
}

// queue returns the queued ids, earliest first. Callers must not retain it.
func (l *Level) queue() []domain.OrderID {
	return l.orders[l.head:]
}

// PriceLevel is an exported view of one level for depth queries
type PriceLevel struct {
	Price  domain.Price
	Volume uint32
	Orders int // live orders at this level
}

// ladder is one side of the book: a level per representable price, a
// PriceIndex of the non-empty ones and the cached best price.
//
// best is the highest bid price (-1 when there are no bids) or the lowest ask
// price (domain.PriceMax when there are no asks). Both sentinels fail every
// crossing test, so the matcher needs no separate emptiness check.
type ladder struct {
	side   domain.Side
	levels [domain.PriceMax]Level
	index  PriceIndex
	best   int
}

func (ld *ladder) init(side domain.Side, index PriceIndex) {
	ld.side = side
	ld.index = index
	ld.best = ld.none()
}

func (ld *ladder) none() int {
	if ld.side == domain.SideBuy {
		return -1
	}
	return domain.PriceMax
}

// empty reports whether no price on this side holds a level
func (ld *ladder) empty() bool {
	return ld.best == ld.none()
}

// better reports whether price is more aggressive than the current best
func (ld *ladder) better(price int) bool {
	if ld.side == domain.SideBuy {
		return price > ld.best
	}
	return price < ld.best
}

// crosses reports whether an incoming contra order limited at limit can trade
// against this side's best price: bids at or above a sell limit, asks at or
// below a buy limit.
func (ld *ladder) crosses(limit int) bool {
	if ld.side == domain.SideBuy {
		return ld.best >= limit
	}
	return ld.best <= limit
}

// insert appends id to the level at price and adds quantity to its volume.
// A level that was empty becomes occupied and may become the new best.
func (ld *ladder) insert(price int, id domain.OrderID, quantity domain.Quantity) {
	lvl := &ld.levels[price]
	if lvl.Len() == 0 {
		ld.index.Set(price)
		if ld.better(price) {
			ld.best = price
		}
	}
	lvl.push(id)
	lvl.volume += uint32(quantity)
}

// retire clears an emptied level and, if it was the best, moves best to the
// next occupied price away from the book center.
func (ld *ladder) retire(price int) {
	ld.index.Clear(price)
	if price == ld.best {
		ld.best = ld.next(price)
	}
}

// next returns the next occupied price strictly worse than price
func (ld *ladder) next(price int) int {
	if ld.side == domain.SideBuy {
		return ld.index.PrevAtOrBefore(price - 1)
	}
	return ld.index.NextAtOrAfter(price + 1)
}

func (ld *ladder) volumeAt(price int) uint32 {
	return ld.levels[price].volume
}

// depth returns up to n levels with non-zero volume, best first.
// Levels holding only cancelled entries are skipped.
func (ld *ladder) depth(n int, reg *Registry) []PriceLevel {
	if n <= 0 || ld.empty() {
		return nil
	}

	out := make([]PriceLevel, 0, min(n, ld.index.Len()))
	for p := ld.best; p >= 0 && p < domain.PriceMax && len(out) < n; p = ld.next(p) {
		lvl := &ld.levels[p]
		if lvl.volume == 0 {
			continue
		}
		out = append(out, PriceLevel{
			Price:  domain.Price(p),
			Volume: lvl.volume,
			Orders: ld.liveOrders(p, reg),
		})
	}
	return out
}

// liveOrders counts the queued ids at price that still resolve to a live
// order resting on this side at this price.
func (ld *ladder) liveOrders(price int, reg *Registry) int {
	count := 0
	for _, id := range ld.levels[price].queue() {
		if s := reg.at(id); s.live && s.order.Side == ld.side && int(s.order.Price) == price {
			count++
		}
	}
	return count
}
