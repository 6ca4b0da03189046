package orderbook

import (
	"math/rand"
	"testing"

	"lightning-orderbook/domain"
)

// Bitset vs red-black tree vs sharded tree for the occupied-price index.
// Scenario: a few hundred live levels spread over the full tick range,
// best price repeatedly retired and the next one looked up.

func generatePrices(n int) []int {
	rng := rand.New(rand.NewSource(42))
	prices := make([]int, n)
	for i := range prices {
		prices[i] = rng.Intn(domain.PriceMax)
	}
	return prices
}

func benchmarkIndexSet(b *testing.B, it IndexType, n int) {
	prices := generatePrices(n)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx := NewPriceIndex(it)
		for _, p := range prices {
			idx.Set(p)
		}
	}
}

func BenchmarkBitsetIndex_Set_100(b *testing.B)   { benchmarkIndexSet(b, BitsetIndexType, 100) }
func BenchmarkBitsetIndex_Set_1000(b *testing.B)  { benchmarkIndexSet(b, BitsetIndexType, 1000) }
func BenchmarkTreeIndex_Set_100(b *testing.B)     { benchmarkIndexSet(b, TreeIndexType, 100) }
func BenchmarkTreeIndex_Set_1000(b *testing.B)    { benchmarkIndexSet(b, TreeIndexType, 1000) }
func BenchmarkShardedIndex_Set_100(b *testing.B)  { benchmarkIndexSet(b, ShardedIndexType, 100) }
func BenchmarkShardedIndex_Set_1000(b *testing.B) { benchmarkIndexSet(b, ShardedIndexType, 1000) }

// benchmarkIndexNextBest pops the lowest price and scans for the next one,
// the work a sell ladder does each time its best level empties.
func benchmarkIndexNextBest(b *testing.B, it IndexType) {
	prices := generatePrices(300)
	idx := NewPriceIndex(it)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if idx.Len() == 0 {
			b.StopTimer()
			for _, p := range prices {
				idx.Set(p)
			}
			b.StartTimer()
		}
		best := idx.NextAtOrAfter(0)
		idx.Clear(best)
		_ = idx.NextAtOrAfter(best + 1)
	}
}

func BenchmarkBitsetIndex_NextBest(b *testing.B)  { benchmarkIndexNextBest(b, BitsetIndexType) }
func BenchmarkTreeIndex_NextBest(b *testing.B)    { benchmarkIndexNextBest(b, TreeIndexType) }
func BenchmarkShardedIndex_NextBest(b *testing.B) { benchmarkIndexNextBest(b, ShardedIndexType) }

// benchmarkMatchOrder replays a fixed stream of random limit orders around a
// mid price, recycling ids only once the book reports them reusable.
func benchmarkMatchOrder(b *testing.B, it IndexType) {
	const streamLen = 1 << 16
	rng := rand.New(rand.NewSource(1))
	stream := make([]domain.Order, streamLen)
	for i := range stream {
		side := domain.SideBuy
		if rng.Intn(2) == 1 {
			side = domain.SideSell
		}
		price := domain.Price(domain.PriceMax/2 - 50 + rng.Intn(100))
		stream[i] = domain.NewLimitOrder(0, side, price, domain.Quantity(1+rng.Intn(100)))
	}

	book := New(WithPriceIndex(it))
	var nextID domain.OrderID
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o := stream[i%streamLen]
		for scanned := 0; !book.Reusable(nextID); scanned++ {
			if scanned == domain.MaxOrders {
				b.Fatal("no reusable order id")
			}
			nextID = (nextID + 1) % domain.MaxOrders
		}
		o.ID = nextID
		nextID = (nextID + 1) % domain.MaxOrders
		if _, err := book.MatchOrder(o); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMatchOrder_Bitset(b *testing.B)  { benchmarkMatchOrder(b, BitsetIndexType) }
func BenchmarkMatchOrder_Tree(b *testing.B)    { benchmarkMatchOrder(b, TreeIndexType) }
func BenchmarkMatchOrder_Sharded(b *testing.B) { benchmarkMatchOrder(b, ShardedIndexType) }
