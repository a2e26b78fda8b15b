package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Order placement outcomes used as the "result" label.
const (
	ResultSuccess           = "success"
	ResultEmptyCart         = "empty_cart"
	ResultInsufficientStock = "insufficient_stock"
	ResultError             = "error"
)

// Metrics groups the collectors exported by the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	ordersPlaced *prometheus.CounterVec
	orderAmount  prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		ordersPlaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_placed_total",
				Help: "Order placement attempts by result",
			},
			[]string{"result"},
		),
		orderAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_placed_amount_total",
			Help: "Sum of total_amount over successfully placed orders",
		}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.ordersPlaced, m.orderAmount)
	return m
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		chainErr := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := chainErr.(*fiber.Error); ok {
			status = fe.Code
		}
		endpoint := c.Route().Path
		if endpoint == "" || endpoint == "/" {
			endpoint = c.Path()
		}

		m.httpRequests.WithLabelValues(c.Method(), endpoint, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), endpoint).Observe(time.Since(start).Seconds())
		return chainErr
	}
}

// OrderPlaced counts one placement attempt; amount is added only on success.
func (m *Metrics) OrderPlaced(result string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(result).Inc()
	if result == ResultSuccess && amount.IsPositive() {
		m.orderAmount.Add(amount.InexactFloat64())
	}
}

// Handler exposes the collectors gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
