package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"lightning-orderbook/domain"
	"lightning-orderbook/orderbook"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "orderbook"

// Collector counts book operations into its own Prometheus registry.
// It is fed from the matching goroutine; Prometheus collectors are safe
// for the concurrent scrape.
type Collector struct {
	registry *prometheus.Registry

	ordersSubmitted prometheus.Counter
	ordersRejected  *prometheus.CounterVec
	ordersModified  prometheus.Counter
	tradesExecuted  prometheus.Counter
	filledQuantity  prometheus.Counter
	matchingLatency prometheus.Histogram
}

// NewCollector creates a collector and registers its metrics
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,

		ordersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Total number of orders submitted for matching",
		}),

		ordersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Total number of orders and modifications rejected, by reason",
		}, []string{"reason"}),

		ordersModified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_modified_total",
			Help:      "Total number of modify and cancel requests",
		}),

		tradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_executed_total",
			Help:      "Total number of trade steps executed",
		}),

		filledQuantity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filled_quantity_total",
			Help:      "Total quantity traded",
		}),

		matchingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_latency_nanoseconds",
			Help:      "Order matching latency in nanoseconds",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
	}

	registry.MustRegister(
		c.ordersSubmitted,
		c.ordersRejected,
		c.ordersModified,
		c.tradesExecuted,
		c.filledQuantity,
		c.matchingLatency,
	)
	return c
}

// Registry returns the registry to gather from or serve
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveMatch records one MatchOrder call. Trade steps are counted by OnFill.
func (c *Collector) ObserveMatch(d time.Duration, _ uint32, err error) {
	c.ordersSubmitted.Inc()
	if err != nil {
		c.ordersRejected.WithLabelValues(reason(err)).Inc()
		return
	}
	c.matchingLatency.Observe(float64(d.Nanoseconds()))
}

// ObserveModify records one ModifyOrderByID call
func (c *Collector) ObserveModify(err error) {
	c.ordersModified.Inc()
	if err != nil {
		c.ordersRejected.WithLabelValues(reason(err)).Inc()
	}
}

// OnFill records one trade step
func (c *Collector) OnFill(f domain.Fill) {
	c.tradesExecuted.Inc()
	c.filledQuantity.Add(float64(f.Quantity))
}

func reason(err error) string {
	switch {
	case errors.Is(err, orderbook.ErrIDOutOfRange):
		return "id_out_of_range"
	case errors.Is(err, orderbook.ErrPriceOutOfRange):
		return "price_out_of_range"
	case errors.Is(err, orderbook.ErrZeroQuantity):
		return "zero_quantity"
	case errors.Is(err, orderbook.ErrInvalidSide):
		return "invalid_side"
	default:
		return "other"
	}
}
