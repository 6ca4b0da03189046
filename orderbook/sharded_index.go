package orderbook

import (
	"cmp"
	"math/bits"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"lightning-orderbook/domain"
)

// ShardedIndex splits the price domain into buckets of 64 prices.
// Outer: red-black tree of non-empty bucket ids (O(log m), m = buckets in use)
// Inner: one uint64 mask per bucket, scanned with a single bit instruction
//
// Sits between BitsetIndex and TreeIndex: the tree only grows with the
// number of occupied buckets, and a scan that leaves a bucket jumps straight
// to the next occupied one instead of walking empty words.
type ShardedIndex struct {
	buckets *rbt.Tree[int, uint64]
	count   int
}

// Ensure ShardedIndex implements PriceIndex
var _ PriceIndex = (*ShardedIndex)(nil)

// NewShardedIndex creates an empty sharded index
func NewShardedIndex() *ShardedIndex {
	return &ShardedIndex{
		buckets: rbt.NewWith[int, uint64](cmp.Compare[int]),
	}
}

func (s *ShardedIndex) Set(price int) {
	id, bit := price/wordBits, uint64(1)<<(uint(price)%wordBits)
	mask, _ := s.buckets.Get(id)
	if mask&bit == 0 {
		s.buckets.Put(id, mask|bit)
		s.count++
	}
}

func (s *ShardedIndex) Clear(price int) {
	id, bit := price/wordBits, uint64(1)<<(uint(price)%wordBits)
	mask, found := s.buckets.Get(id)
	if !found || mask&bit == 0 {
		return
	}
	s.count--
	if mask &^= bit; mask == 0 {
		// empty buckets leave the tree
		s.buckets.Remove(id)
		return
	}
	s.buckets.Put(id, mask)
}

func (s *ShardedIndex) Test(price int) bool {
	if price < 0 || price >= domain.PriceMax {
		return false
	}
	mask, _ := s.buckets.Get(price / wordBits)
	return mask&(uint64(1)<<(uint(price)%wordBits)) != 0
}

func (s *ShardedIndex) NextAtOrAfter(price int) int {
	if price < 0 {
		price = 0
	}
	if price >= domain.PriceMax {
		return domain.PriceMax
	}

	id := price / wordBits
	if mask, found := s.buckets.Get(id); found {
		if m := mask & (^uint64(0) << (uint(price) % wordBits)); m != 0 {
			return id*wordBits + bits.TrailingZeros64(m)
		}
	}
	node, found := s.buckets.Ceiling(id + 1)
	if !found {
		return domain.PriceMax
	}
	return node.Key*wordBits + bits.TrailingZeros64(node.Value)
}

func (s *ShardedIndex) PrevAtOrBefore(price int) int {
	if price < 0 {
		return -1
	}
	if price >= domain.PriceMax {
		price = domain.PriceMax - 1
	}

	id := price / wordBits
	if mask, found := s.buckets.Get(id); found {
		if m := mask & (^uint64(0) >> (wordBits - 1 - uint(price)%wordBits)); m != 0 {
			return id*wordBits + wordBits - 1 - bits.LeadingZeros64(m)
		}
	}
	node, found := s.buckets.Floor(id - 1)
	if !found {
		return -1
	}
	return node.Key*wordBits + wordBits - 1 - bits.LeadingZeros64(node.Value)
}

func (s *ShardedIndex) Len() int {
	return s.count
}
