package orderbook

import (
	"math/bits"

	"lightning-orderbook/domain"
)

const (
	wordBits = 64
	numWords = (domain.PriceMax + wordBits - 1) / wordBits
)

// BitsetIndex is a fixed-capacity bitset over [0, domain.PriceMax).
//
// Performance:
//   - Set/Clear/Test: O(1), one word
//   - NextAtOrAfter/PrevAtOrBefore: one masked word plus a scan of the
//     following words only while they are empty; 71 words worst case
//
// Bits at or beyond domain.PriceMax are never set, so scans never report
// a price outside the domain.
type BitsetIndex struct {
	words [numWords]uint64
	count int
}

// Ensure BitsetIndex implements PriceIndex
var _ PriceIndex = (*BitsetIndex)(nil)

// NewBitsetIndex creates an empty bitset index
func NewBitsetIndex() *BitsetIndex {
	return &BitsetIndex{}
}

func (b *BitsetIndex) Set(price int) {
	w, mask := price/wordBits, uint64(1)<<(uint(price)%wordBits)
	if b.words[w]&mask == 0 {
		b.words[w] |= mask
		b.count++
	}
}

func (b *BitsetIndex) Clear(price int) {
	w, mask := price/wordBits, uint64(1)<<(uint(price)%wordBits)
	if b.words[w]&mask != 0 {
		b.words[w] &^= mask
		b.count--
	}
}

func (b *BitsetIndex) Test(price int) bool {
	if price < 0 || price >= domain.PriceMax {
		return false
	}
	return b.words[price/wordBits]&(uint64(1)<<(uint(price)%wordBits)) != 0
}

func (b *BitsetIndex) NextAtOrAfter(price int) int {
	if price < 0 {
		price = 0
	}
	if price >= domain.PriceMax {
		return domain.PriceMax
	}

	w := price / wordBits
	// drop bits below price in the first word
	if word := b.words[w] & (^uint64(0) << (uint(price) % wordBits)); word != 0 {
		return w*wordBits + bits.TrailingZeros64(word)
	}
	for w++; w < numWords; w++ {
		if b.words[w] != 0 {
			return w*wordBits + bits.TrailingZeros64(b.words[w])
		}
	}
	return domain.PriceMax
}

func (b *BitsetIndex) PrevAtOrBefore(price int) int {
	if price < 0 {
		return -1
	}
	if price >= domain.PriceMax {
		price = domain.PriceMax - 1
	}

	w := price / wordBits
	// keep bits 0..offset in the first word
	if word := b.words[w] & (^uint64(0) >> (wordBits - 1 - uint(price)%wordBits)); word != 0 {
		return w*wordBits + wordBits - 1 - bits.LeadingZeros64(word)
	}
	for w--; w >= 0; w-- {
		if b.words[w] != 0 {
			return w*wordBits + wordBits - 1 - bits.LeadingZeros64(b.words[w])
		}
	}
	return -1
}

func (b *BitsetIndex) Len() int {
	return b.count
}
