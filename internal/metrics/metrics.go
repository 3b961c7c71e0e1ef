// Package metrics collects and exposes the Prometheus metrics of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers the payment and login counters.
type Collector struct {
	paymentsCompleted prometheus.Counter
	paymentsFailed    prometheus.Counter
	paymentDuration   prometheus.Histogram
	logins            *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		paymentsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matrixpay_payments_completed_total",
			Help: "Total number of completed payments.",
		}),
		paymentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matrixpay_payments_failed_total",
			Help: "Total number of failed or cancelled payments.",
		}),
		paymentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matrixpay_payment_duration_seconds",
			Help:    "End-to-end duration of completed payments in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matrixpay_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.paymentsCompleted,
		c.paymentsFailed,
		c.paymentDuration,
		c.logins,
	)

	return c
}

// PaymentCompleted records one completed payment and its duration.
func (c *Collector) PaymentCompleted(duration time.Duration) {
	c.paymentsCompleted.Inc()
	c.paymentDuration.Observe(duration.Seconds())
}

// PaymentFailed records one failed or cancelled payment.
func (c *Collector) PaymentFailed() {
	c.paymentsFailed.Inc()
}

// LoginAttempt records a login attempt with the given outcome label,
// "success" or "failure".
func (c *Collector) LoginAttempt(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
