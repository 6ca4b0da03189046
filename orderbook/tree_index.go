package orderbook

import (
	"cmp"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"lightning-orderbook/domain"
)

// TreeIndex keeps occupied prices in a red-black tree.
// This is the ordered-set layout the bitset replaced: every step to the next
// occupied price is O(log n) and chases pointers. It is kept selectable so
// the two can be benchmarked and cross-checked against each other.
type TreeIndex struct {
	prices *rbt.Tree[int, struct{}]
}

// Ensure TreeIndex implements PriceIndex
var _ PriceIndex = (*TreeIndex)(nil)

// NewTreeIndex creates an empty tree index
func NewTreeIndex() *TreeIndex {
	return &TreeIndex{
		prices: rbt.NewWith[int, struct{}](cmp.Compare[int]),
	}
}

func (t *TreeIndex) Set(price int) {
	t.prices.Put(price, struct{}{})
}

func (t *TreeIndex) Clear(price int) {
	t.prices.Remove(price)
}

func (t *TreeIndex) Test(price int) bool {
	_, found := t.prices.Get(price)
	return found
}

func (t *TreeIndex) NextAtOrAfter(price int) int {
	node, found := t.prices.Ceiling(price)
	if !found {
		return domain.PriceMax
	}
	return node.Key
}

func (t *TreeIndex) PrevAtOrBefore(price int) int {
	node, found := t.prices.Floor(price)
	if !found {
		return -1
	}
	return node.Key
}

func (t *TreeIndex) Len() int {
	return t.prices.Size()
}
