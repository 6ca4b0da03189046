package orderbook

import "fmt"

// IndexType selects the price index implementation behind each ladder side
type IndexType int

const (
	// BitsetIndexType fixed bitset + hardware bit scan (default)
	// Best price after a level empties: a few word scans, no allocation
	BitsetIndexType IndexType = iota

	// TreeIndexType red-black tree of occupied prices
	// Best price after a level empties: O(log n), allocates a node per new price
	TreeIndexType

	// ShardedIndexType red-black tree of 64-price buckets, bitmask inside each
	// Best price after a level empties: one bit scan, O(log m) only when the bucket is exhausted
	ShardedIndexType
)

func (t IndexType) String() string {
	switch t {
	case BitsetIndexType:
		return "bitset"
	case TreeIndexType:
		return "tree"
	case ShardedIndexType:
		return "sharded"
	default:
		return fmt.Sprintf("IndexType(%d)", int(t))
	}
}

// ParseIndexType maps a name accepted on command lines to an IndexType
func ParseIndexType(name string) (IndexType, error) {
	switch name {
	case "bitset", "":
		return BitsetIndexType, nil
	case "tree":
		return TreeIndexType, nil
	case "sharded":
		return ShardedIndexType, nil
	default:
		return 0, fmt.Errorf("unknown price index %q", name)
	}
}

// NewPriceIndex creates a price index of the requested type
func NewPriceIndex(indexType IndexType) PriceIndex {
	switch indexType {
	case TreeIndexType:
		return NewTreeIndex()
	case ShardedIndexType:
		return NewShardedIndex()
	case BitsetIndexType:
		fallthrough
	default:
		return NewBitsetIndex()
	}
}
