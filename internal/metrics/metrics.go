package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	OrdersCreated   prometheus.Counter
	PaymentAttempts *prometheus.CounterVec
	GatewayDuration prometheus.Histogram
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkout_orders_created_total",
			Help: "Number of orders created.",
		}),
		PaymentAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_payment_attempts_total",
			Help: "Payment attempts by outcome (success, declined, rejected, error).",
		}, []string{"outcome"}),
		GatewayDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_gateway_request_duration_seconds",
			Help:    "Duration of payment gateway charge requests.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// NewDefault registers on the default registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
