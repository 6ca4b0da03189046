package orderbook

import "lightning-orderbook/domain"

// slot is one registry entry: Empty (live == false) or Occupied(order)
type slot struct {
	order domain.Order
	live  bool
}

// Registry is a direct-addressed table of live orders indexed by order id.
// The id domain is small and dense, so there is no hashing and no collision
// handling on the hot path. Bounds are the caller's responsibility.
//
// refs counts how many ladder sequence entries currently carry each id.
// Cancelled orders leave their id behind in the level (lazy deletion), so an
// id is only safe to hand out again once it is neither live nor referenced.
type Registry struct {
	slots [domain.MaxOrders]slot
	refs  [domain.MaxOrders]uint32
	live  int
}

// Get returns the live order for id, if any
func (r *Registry) Get(id domain.OrderID) (domain.Order, bool) {
	s := &r.slots[id]
	return s.order, s.live
}

// Set overwrites the slot for id
func (r *Registry) Set(id domain.OrderID, o domain.Order) {
	s := &r.slots[id]
	if !s.live {
		r.live++
	}
	s.order = o
	s.live = true
}

// Clear empties the slot for id
func (r *Registry) Clear(id domain.OrderID) {
	s := &r.slots[id]
	if s.live {
		r.live--
	}
	*s = slot{}
}

// Len returns the number of live orders
func (r *Registry) Len() int {
	return r.live
}

// at returns the entry for in-place mutation by the matcher
func (r *Registry) at(id domain.OrderID) *slot {
	return &r.slots[id]
}

func (r *Registry) ref(id domain.OrderID) {
	r.refs[id]++
}

func (r *Registry) unref(id domain.OrderID) {
	if r.refs[id] > 0 {
		r.refs[id]--
	}
}

// Referenced reports whether id still appears in some level's sequence
func (r *Registry) Referenced(id domain.OrderID) bool {
	return r.refs[id] > 0
}
