package orderbook

// PriceIndex tracks which prices on one side of the book currently hold a
// non-empty level, and answers "nearest occupied price" queries.
//
// Implementations:
//   - BitsetIndex:  fixed bit vector over the price domain, word-wise bit scans (default)
//   - TreeIndex:    red-black tree of occupied prices (ordered-set exploration)
//   - ShardedIndex: red-black tree of 64-price buckets with a bitmask per bucket
//
// Prices are ints so that both sentinels fit: NextAtOrAfter returns
// domain.PriceMax when nothing is found, PrevAtOrBefore returns -1.
type PriceIndex interface {
	// Set marks price as occupied
	Set(price int)

	// Clear marks price as empty
	Clear(price int)

	// Test reports whether price is occupied
	Test(price int) bool

	// NextAtOrAfter returns the lowest occupied price >= price, or domain.PriceMax
	NextAtOrAfter(price int) int

	// PrevAtOrBefore returns the highest occupied price <= price, or -1
	PrevAtOrBefore(price int) int

	// Len returns the number of occupied prices
	Len() int
}
