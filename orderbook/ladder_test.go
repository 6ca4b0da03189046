package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightning-orderbook/domain"
)

func newTestLadder(side domain.Side) *ladder {
	ld := &ladder{}
	ld.init(side, NewBitsetIndex())
	return ld
}

// TestLadderBest best price tracks inserts and retirements on both sides
func TestLadderBest(t *testing.T) {
	bids := newTestLadder(domain.SideBuy)
	asks := newTestLadder(domain.SideSell)

	assert.True(t, bids.empty())
	assert.True(t, asks.empty())
	assert.Equal(t, -1, bids.best)
	assert.Equal(t, domain.PriceMax, asks.best)

	// sentinels never cross
	assert.False(t, bids.crosses(0))
	assert.False(t, asks.crosses(domain.PriceMax-1))

	bids.insert(100, 1, 5)
	bids.insert(90, 2, 5)
	bids.insert(95, 3, 5)
	assert.Equal(t, 100, bids.best)
	assert.True(t, bids.crosses(100))
	assert.False(t, bids.crosses(101))

	asks.insert(200, 4, 5)
	asks.insert(210, 5, 5)
	assert.Equal(t, 200, asks.best)
	assert.True(t, asks.crosses(200))
	assert.False(t, asks.crosses(199))

	bids.levels[100] = Level{}
	bids.retire(100)
	assert.Equal(t, 95, bids.best)

	// retiring a non-best level leaves best alone
	bids.levels[90] = Level{}
	bids.retire(90)
	assert.Equal(t, 95, bids.best)

	bids.levels[95] = Level{}
	bids.retire(95)
	assert.True(t, bids.empty())

	asks.levels[200] = Level{}
	asks.retire(200)
	assert.Equal(t, 210, asks.best)
}

// TestLevelFIFO ids leave a level in arrival order and storage is reused
func TestLevelFIFO(t *testing.T) {
	var lvl Level
	for id := domain.OrderID(0); id < 200; id++ {
		lvl.push(id)
	}
	require.Equal(t, 200, lvl.Len())

	for want := domain.OrderID(0); want < 150; want++ {
		require.Equal(t, want, lvl.front())
		lvl.pop()
	}
	// compacted once, at the halfway point
	assert.Equal(t, 100, len(lvl.orders))
	assert.Equal(t, 50, lvl.Len())
	assert.Equal(t, domain.OrderID(150), lvl.front())

	for lvl.Len() > 0 {
		lvl.pop()
	}
	assert.Equal(t, 0, len(lvl.orders))
	assert.Positive(t, cap(lvl.orders))
}

// TestLadderDepth skips levels whose volume was cancelled away
func TestLadderDepth(t *testing.T) {
	var reg Registry
	asks := newTestLadder(domain.SideSell)

	add := func(id domain.OrderID, price int, qty domain.Quantity) {
		asks.insert(price, id, qty)
		reg.ref(id)
		reg.Set(id, domain.NewLimitOrder(id, domain.SideSell, domain.Price(price), qty))
	}
	add(1, 101, 3)
	add(2, 101, 4)
	add(3, 102, 5)
	add(4, 105, 6)

	// cancel id 3 the way the book does
	asks.levels[102].volume -= 5
	reg.Clear(3)

	depth := asks.depth(10, &reg)
	require.Len(t, depth, 2)
	assert.Equal(t, PriceLevel{Price: 101, Volume: 7, Orders: 2}, depth[0])
	assert.Equal(t, PriceLevel{Price: 105, Volume: 6, Orders: 1}, depth[1])

	assert.Len(t, asks.depth(1, &reg), 1)
	assert.Nil(t, asks.depth(0, &reg))
}

// TestRegistryRefs an id is reusable only once neither live nor queued
func TestRegistryRefs(t *testing.T) {
	var reg Registry
	o := domain.NewLimitOrder(7, domain.SideBuy, 10, 1)

	reg.ref(7)
	reg.Set(7, o)
	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Referenced(7))

	got, live := reg.Get(7)
	assert.True(t, live)
	assert.Equal(t, o, got)

	reg.Clear(7)
	reg.Clear(7)
	assert.Equal(t, 0, reg.Len())
	assert.True(t, reg.Referenced(7))

	reg.unref(7)
	reg.unref(7)
	assert.False(t, reg.Referenced(7))
}
