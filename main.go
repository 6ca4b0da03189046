package main

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"lightning-orderbook/domain"
	"lightning-orderbook/matching"
	"lightning-orderbook/orderbook"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck
	log := logger.Sugar()

	// Initialize the matching engine and its dedicated matching thread
	engine := matching.NewEngine(
		matching.WithLogger(log),
		matching.WithFillHandler(func(f domain.Fill) {
			log.Infow("trade executed",
				"price", f.Price,
				"quantity", f.Quantity,
				"buy", f.BuyOrderID(),
				"sell", f.SellOrderID(),
				"buyer_maker", f.IsBuyerMaker(),
			)
		}),
	)
	engine.Start()
	defer engine.Stop()

	if err := demo(context.Background(), engine, log); err != nil {
		log.Errorw("demo failed", "error", err)
		os.Exit(1)
	}
}

func demo(ctx context.Context, engine *matching.Engine, log *zap.SugaredLogger) error {
	// A: a bid rests on an empty book
	n, err := engine.Submit(ctx, domain.NewLimitOrder(1, domain.SideBuy, 100, 10))
	if err != nil {
		return err
	}
	exists, _ := engine.Exists(ctx, 1)
	vol, _ := engine.Volume(ctx, domain.SideBuy, 100)
	log.Infow("A: buy 10@100", "trades", n, "exists", exists, "bid_volume_100", vol)

	// B: a smaller sell trades at the resting bid price
	n, err = engine.Submit(ctx, domain.NewLimitOrder(2, domain.SideSell, 90, 4))
	if err != nil {
		return err
	}
	o, _ := engine.Lookup(ctx, 1)
	exists, _ = engine.Exists(ctx, 2)
	vol, _ = engine.Volume(ctx, domain.SideBuy, 100)
	log.Infow("B: sell 4@90", "trades", n, "order_1", o, "order_2_exists", exists, "bid_volume_100", vol)

	// C: one sell consumes two bids in arrival order
	if err := engine.Cancel(ctx, 1); err != nil {
		return err
	}
	for _, id := range []domain.OrderID{4, 5} {
		if _, err := engine.Submit(ctx, domain.NewLimitOrder(id, domain.SideBuy, 100, 5)); err != nil {
			return err
		}
	}
	n, err = engine.Submit(ctx, domain.NewLimitOrder(3, domain.SideSell, 100, 10))
	if err != nil {
		return err
	}
	vol, _ = engine.Volume(ctx, domain.SideBuy, 100)
	log.Infow("C: sell 10@100 against 5+5", "trades", n, "bid_volume_100", vol)

	// D: modify of an unknown id is a no-op, lookup fails
	if err := engine.Modify(ctx, 42, 7); err != nil {
		return err
	}
	_, err = engine.Lookup(ctx, 42)
	log.Infow("D: modify/lookup unknown id", "not_found", errors.Is(err, orderbook.ErrOrderNotFound))

	return nil
}
