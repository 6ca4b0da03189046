package matching

import (
	"errors"

	"lightning-orderbook/domain"
	"lightning-orderbook/orderbook"
)

// ErrNoFreeID is returned when every order id is live or still queued
var ErrNoFreeID = errors.New("no reusable order id")

// IDAllocator hands out order ids from the dense, bounded id domain.
// Ids double as registry slots, so they are recycled rather than counted up
// forever: the cursor walks [0, domain.MaxOrders) round-robin and returns
// the first id the book reports reusable. Round-robin keeps a just-freed id
// out of circulation for as long as possible.
//
// Not safe for concurrent use. The engine calls it on its own goroutine,
// in the same command that submits the order.
type IDAllocator struct {
	next domain.OrderID
}

// NewIDAllocator creates an allocator starting at id 0
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns the next reusable id, or false if there is none
func (a *IDAllocator) Next(book *orderbook.Book) (domain.OrderID, bool) {
	for i := 0; i < domain.MaxOrders; i++ {
		id := a.next
		a.next++
		if a.next == domain.MaxOrders {
			a.next = 0
		}
		if book.Reusable(id) {
			return id, true
		}
	}
	return 0, false
}
