package matching

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"lightning-orderbook/domain"
	"lightning-orderbook/orderbook"
)

// ErrStopped is returned for commands that reach an engine after Stop
var ErrStopped = errors.New("matching engine stopped")

const defaultQueueSize = 4096

// Observer is notified of every book operation from the engine goroutine.
// metrics.Collector implements it.
type Observer interface {
	ObserveMatch(d time.Duration, trades uint32, err error)
	ObserveModify(err error)
	OnFill(f domain.Fill)
}

type nopObserver struct{}

func (nopObserver) ObserveMatch(time.Duration, uint32, error) {}
func (nopObserver) ObserveModify(error)                       {}
func (nopObserver) OnFill(domain.Fill)                        {}

// IMatchingEngine defines the interface for a matching engine
type IMatchingEngine interface {
	Start()
	Stop()

	Submit(ctx context.Context, order domain.Order) (uint32, error)
	Modify(ctx context.Context, id domain.OrderID, quantity domain.Quantity) error
	Cancel(ctx context.Context, id domain.OrderID) error

	Volume(ctx context.Context, side domain.Side, price domain.Price) (uint32, error)
	Lookup(ctx context.Context, id domain.OrderID) (domain.Order, error)
	Exists(ctx context.Context, id domain.OrderID) (bool, error)
}

// Ensure Engine implements IMatchingEngine
var _ IMatchingEngine = (*Engine)(nil)

// command is one unit of work for the engine goroutine
type command struct {
	fn   func(*orderbook.Book)
	done chan struct{}
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger. The book inherits it.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver installs a metrics observer
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithFillHandler forwards every fill, after the observer has seen it
func WithFillHandler(fn orderbook.FillHandler) Option {
	return func(e *Engine) {
		e.onFill = fn
	}
}

// WithPriceIndex selects the book's price index
func WithPriceIndex(indexType orderbook.IndexType) Option {
	return func(e *Engine) {
		e.indexType = indexType
	}
}

// WithQueueSize sets the command queue capacity
func WithQueueSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.queueSize = n
		}
	}
}

// Engine serializes all access to one order book.
// Architecture:
//   - Runs in a dedicated goroutine with runtime.LockOSThread() to reduce context switches
//   - Every operation, reads included, is a command on one channel, so the book
//     sees a single total order of events and needs no locks
//   - Callers block until their command has run, or until ctx is done
//
// A command that was already queued when its ctx is cancelled still runs;
// the caller just stops waiting for it.
type Engine struct {
	book      *orderbook.Book
	ids       *IDAllocator
	cmds      chan command
	stopChan  chan struct{}
	exited    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once

	indexType orderbook.IndexType
	queueSize int
	observer  Observer
	onFill    orderbook.FillHandler
	logger    *zap.SugaredLogger
}

// NewEngine creates an engine and its book. Call Start before submitting.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		stopChan:  make(chan struct{}),
		exited:    make(chan struct{}),
		queueSize: defaultQueueSize,
		observer:  nopObserver{},
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.cmds = make(chan command, e.queueSize)
	e.ids = NewIDAllocator()
	e.book = orderbook.New(
		orderbook.WithLogger(e.logger),
		orderbook.WithPriceIndex(e.indexType),
		orderbook.WithFillHandler(e.handleFill),
	)
	return e
}

func (e *Engine) handleFill(f domain.Fill) {
	e.observer.OnFill(f)
	if e.onFill != nil {
		e.onFill(f)
	}
}

// Start starts the matching loop in a dedicated goroutine
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.logger.Infow("matching engine starting",
			"index", e.indexType.String(),
			"queue", e.queueSize,
		)
		go e.run()
	})
}

func (e *Engine) run() {
	// Lock this goroutine to an OS thread to reduce context switches
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.exited)

	for {
		// stop takes precedence over queued work
		select {
		case <-e.stopChan:
			return
		default:
		}

		select {
		case cmd := <-e.cmds:
			cmd.fn(e.book)
			close(cmd.done)
		case <-e.stopChan:
			return
		}
	}
}

// Stop stops the matching loop. Commands still queued are not run and
// their callers get ErrStopped. Stop waits for the loop to exit if it
// was started.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
		e.logger.Infow("matching engine stopping")
	})
	started := true
	e.startOnce.Do(func() {
		started = false
		close(e.exited)
	})
	if started {
		<-e.exited
	}
}

// do queues fn and waits for it to run on the engine goroutine
func (e *Engine) do(ctx context.Context, fn func(*orderbook.Book)) error {
	select {
	case <-e.stopChan:
		return ErrStopped
	default:
	}

	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case e.cmds <- cmd:
	case <-e.stopChan:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-cmd.done:
		return nil
	case <-e.exited:
		// the loop may have run cmd right before exiting
		select {
		case <-cmd.done:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit matches order against the book and rests any remainder.
// Returns the number of trade steps.
func (e *Engine) Submit(ctx context.Context, order domain.Order) (uint32, error) {
	var (
		trades uint32
		err    error
	)
	if cerr := e.do(ctx, func(b *orderbook.Book) {
		start := time.Now()
		trades, err = b.MatchOrder(order)
		e.observer.ObserveMatch(time.Since(start), trades, err)
	}); cerr != nil {
		return 0, cerr
	}
	return trades, err
}

// SubmitNew allocates a reusable id for a new order and submits it in the
// same command, so no other command can take the id in between.
func (e *Engine) SubmitNew(ctx context.Context, side domain.Side, price domain.Price, quantity domain.Quantity) (domain.OrderID, uint32, error) {
	var (
		id     domain.OrderID
		trades uint32
		err    error
	)
	if cerr := e.do(ctx, func(b *orderbook.Book) {
		var ok bool
		if id, ok = e.ids.Next(b); !ok {
			err = ErrNoFreeID
			e.observer.ObserveMatch(0, 0, err)
			return
		}
		start := time.Now()
		trades, err = b.MatchOrder(domain.NewLimitOrder(id, side, price, quantity))
		e.observer.ObserveMatch(time.Since(start), trades, err)
	}); cerr != nil {
		return 0, 0, cerr
	}
	return id, trades, err
}

// Modify sets the remaining quantity of a resting order; 0 cancels it
func (e *Engine) Modify(ctx context.Context, id domain.OrderID, quantity domain.Quantity) error {
	var err error
	if cerr := e.do(ctx, func(b *orderbook.Book) {
		err = b.ModifyOrderByID(id, quantity)
		e.observer.ObserveModify(err)
	}); cerr != nil {
		return cerr
	}
	return err
}

// Cancel removes a resting order
func (e *Engine) Cancel(ctx context.Context, id domain.OrderID) error {
	return e.Modify(ctx, id, 0)
}

// Volume returns the resting volume at price on side
func (e *Engine) Volume(ctx context.Context, side domain.Side, price domain.Price) (uint32, error) {
	var v uint32
	err := e.do(ctx, func(b *orderbook.Book) {
		v = b.GetVolumeAtLevel(side, price)
	})
	return v, err
}

// Lookup returns the live order for id
func (e *Engine) Lookup(ctx context.Context, id domain.OrderID) (domain.Order, error) {
	var (
		o   domain.Order
		err error
	)
	if cerr := e.do(ctx, func(b *orderbook.Book) {
		o, err = b.LookupOrderByID(id)
	}); cerr != nil {
		return domain.Order{}, cerr
	}
	return o, err
}

// Exists reports whether id is resting with a positive quantity
func (e *Engine) Exists(ctx context.Context, id domain.OrderID) (bool, error) {
	var ok bool
	err := e.do(ctx, func(b *orderbook.Book) {
		ok = b.OrderExists(id)
	})
	return ok, err
}

// Depth returns up to levels aggregated price levels on side, best first
func (e *Engine) Depth(ctx context.Context, side domain.Side, levels int) ([]orderbook.PriceLevel, error) {
	var depth []orderbook.PriceLevel
	err := e.do(ctx, func(b *orderbook.Book) {
		depth = b.Depth(side, levels)
	})
	return depth, err
}
