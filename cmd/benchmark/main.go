package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lightning-orderbook/domain"
	"lightning-orderbook/matching"
	"lightning-orderbook/metrics"
	"lightning-orderbook/orderbook"
	"lightning-orderbook/ticks"
)

type config struct {
	orders     int
	workers    int
	seed       int64
	index      string
	tick       string
	base       string
	spread     int
	depth      int
	cpuprofile string
	dev        bool
}

func parseFlags() config {
	var cfg config
	flag.IntVar(&cfg.orders, "orders", 1_000_000, "total orders to submit")
	flag.IntVar(&cfg.workers, "workers", max(1, runtime.NumCPU()-2), "concurrent submitters (one CPU is left to the matching thread)")
	flag.Int64Var(&cfg.seed, "seed", 1, "random seed")
	flag.StringVar(&cfg.index, "index", "bitset", "price index: bitset, tree or sharded")
	flag.StringVar(&cfg.tick, "tick", "0.01", "tick size for printed prices")
	flag.StringVar(&cfg.base, "base", "0", "price of tick 0")
	flag.IntVar(&cfg.spread, "spread", 100, "orders are priced within +/- spread ticks of mid")
	flag.IntVar(&cfg.depth, "depth", 5, "levels per side to print at the end")
	flag.StringVar(&cfg.cpuprofile, "cpuprofile", "", "write a CPU profile to this file")
	flag.BoolVar(&cfg.dev, "dev", false, "human-readable development logging")
	flag.Parse()
	return cfg
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg := parseFlags()

	logger, err := newLogger(cfg.dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	runID := uuid.New()
	log := logger.Sugar().With("run", runID.String())

	if err := run(cfg, log); err != nil {
		log.Errorw("benchmark failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config, log *zap.SugaredLogger) error {
	indexType, err := orderbook.ParseIndexType(cfg.index)
	if err != nil {
		return err
	}
	conv, err := ticks.NewBandConverter(cfg.tick, cfg.base)
	if err != nil {
		return err
	}
	if cfg.spread <= 0 || cfg.spread >= domain.PriceMax/2 {
		return fmt.Errorf("spread %d outside (0, %d)", cfg.spread, domain.PriceMax/2)
	}

	if cfg.cpuprofile != "" {
		f, err := os.Create(cfg.cpuprofile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Infow("cpu profiling", "file", cfg.cpuprofile)
	}

	collector := metrics.NewCollector(metrics.DefaultNamespace)
	engine := matching.NewEngine(
		matching.WithLogger(log),
		matching.WithObserver(collector),
		matching.WithPriceIndex(indexType),
	)
	engine.Start()
	defer engine.Stop()

	log.Infow("benchmark starting",
		"orders", cfg.orders,
		"workers", cfg.workers,
		"index", indexType.String(),
		"seed", cfg.seed,
		"tick", conv.TickSize().String(),
	)

	var (
		submitted atomic.Int64
		trades    atomic.Int64
		evicted   atomic.Int64
	)
	ctx := context.Background()
	mid := domain.PriceMax / 2

	start := time.Now()
	var wg sync.WaitGroup
	errs := make(chan error, cfg.workers)
	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.seed + int64(w)))
			for i := w; i < cfg.orders; i += cfg.workers {
				side := domain.SideBuy
				if rng.Intn(2) == 1 {
					side = domain.SideSell
				}
				price := domain.Price(mid - cfg.spread + rng.Intn(2*cfg.spread+1))
				qty := domain.Quantity(1 + rng.Intn(100))

				_, n, err := engine.SubmitNew(ctx, side, price, qty)
				if errors.Is(err, matching.ErrNoFreeID) {
					// book is full: make room and move on
					if err := engine.Cancel(ctx, domain.OrderID(rng.Intn(domain.MaxOrders))); err != nil {
						errs <- err
						return
					}
					evicted.Add(1)
					continue
				}
				if err != nil {
					errs <- err
					return
				}
				submitted.Add(1)
				trades.Add(int64(n))
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)
	close(errs)
	if err := <-errs; err != nil {
		return err
	}

	log.Infow("benchmark finished",
		"elapsed", elapsed,
		"submitted", submitted.Load(),
		"trades", trades.Load(),
		"evicted", evicted.Load(),
		"orders_per_sec", float64(submitted.Load())/elapsed.Seconds(),
		"ns_per_order", float64(elapsed.Nanoseconds())/float64(max(1, submitted.Load())),
	)

	if err := printDepth(ctx, engine, conv, cfg.depth); err != nil {
		return err
	}
	return printMetrics(collector)
}

func printDepth(ctx context.Context, engine *matching.Engine, conv ticks.Converter, levels int) error {
	asks, err := engine.Depth(ctx, domain.SideSell, levels)
	if err != nil {
		return err
	}
	bids, err := engine.Depth(ctx, domain.SideBuy, levels)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Depth ===")
	for i := len(asks) - 1; i >= 0; i-- {
		lvl := asks[i]
		fmt.Printf("  ASK %12s  %8d  (%d orders)\n", conv.ToDecimal(lvl.Price).StringFixed(int32(-conv.TickSize().Exponent())), lvl.Volume, lvl.Orders)
	}
	fmt.Println("  ----------------------------------")
	for _, lvl := range bids {
		fmt.Printf("  BID %12s  %8d  (%d orders)\n", conv.ToDecimal(lvl.Price).StringFixed(int32(-conv.TickSize().Exponent())), lvl.Volume, lvl.Orders)
	}
	return nil
}

func printMetrics(collector *metrics.Collector) error {
	families, err := collector.Registry().Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	fmt.Println("\n=== Metrics ===")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				labels := ""
				for _, lp := range m.GetLabel() {
					labels += fmt.Sprintf("{%s=%q}", lp.GetName(), lp.GetValue())
				}
				fmt.Printf("  %s%s %.0f\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				mean := 0.0
				if h.GetSampleCount() > 0 {
					mean = h.GetSampleSum() / float64(h.GetSampleCount())
				}
				fmt.Printf("  %s count=%d mean=%.0f\n", mf.GetName(), h.GetSampleCount(), mean)
			}
		}
	}
	return nil
}
