package matching

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lightning-orderbook/domain"
	"lightning-orderbook/orderbook"
)

// TestMatchingEngineReliableQPS throughput measured as completed trades:
// fill one side, then time the contra side crossing it 1:1.
func TestMatchingEngineReliableQPS(t *testing.T) {
	if testing.Short() {
		t.Skip("throughput test")
	}
	for _, it := range []orderbook.IndexType{orderbook.BitsetIndexType, orderbook.TreeIndexType, orderbook.ShardedIndexType} {
		t.Run(it.String(), func(t *testing.T) {
			runReliableQPS(t, it, 1)
		})
	}
}

// TestMatchingEngineConcurrentReliableQPS same scenario with several submitters
func TestMatchingEngineConcurrentReliableQPS(t *testing.T) {
	if testing.Short() {
		t.Skip("throughput test")
	}
	runReliableQPS(t, orderbook.BitsetIndexType, 8)
}

func runReliableQPS(t *testing.T, it orderbook.IndexType, producers int) {
	const numOrders = domain.MaxOrders / 2

	var trades atomic.Int64
	e := startEngine(t,
		WithPriceIndex(it),
		WithFillHandler(func(domain.Fill) { trades.Add(1) }),
	)
	ctx := context.Background()

	// step 1: rest the sells, spread over 50 ticks
	for i := 0; i < numOrders; i++ {
		o := domain.NewLimitOrder(domain.OrderID(i), domain.SideSell, domain.Price(2000+i%50), 100)
		_, err := e.Submit(ctx, o)
		require.NoError(t, err)
	}

	// step 2: buys that cross every level, timed
	start := time.Now()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := p; i < numOrders; i += producers {
				o := domain.NewLimitOrder(domain.OrderID(numOrders+i), domain.SideBuy, 2100, 100)
				if _, err := e.Submit(ctx, o); err != nil {
					t.Error(err)
					return
				}
			}
		}(p)
	}
	wg.Wait()
	elapsed := time.Since(start)

	require.Equal(t, int64(numOrders), trades.Load())
	for id := domain.OrderID(0); id < 2*numOrders; id += 997 {
		ok, err := e.Exists(ctx, id)
		require.NoError(t, err)
		require.False(t, ok)
	}

	qps := float64(numOrders) / elapsed.Seconds()
	t.Logf("index=%s producers=%d orders=%d trades=%d elapsed=%v", it, producers, numOrders, trades.Load(), elapsed)
	t.Logf("QPS: %.0f orders/sec, %.2f us/order (round trip through the engine)", qps, float64(elapsed.Microseconds())/numOrders)
}
