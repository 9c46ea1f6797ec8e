package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	TaxOutcomeCalculated = "calculated"
	TaxOutcomeSkipped    = "skipped"
	TaxOutcomeFailed     = "failed"

	ResolutionAdopted = "adopted"
	ResolutionMerged  = "merged"
)

// QuoteMetrics records cart and checkout activity. A nil *QuoteMetrics is a
// valid no-op recorder.
type QuoteMetrics struct {
	taxCalculations *prometheus.CounterVec
	taxDuration     *prometheus.HistogramVec
	resolutions     *prometheus.CounterVec
	ordersPlaced    *prometheus.CounterVec
	outboxPublished *prometheus.CounterVec
}

// NewQuoteMetrics registers the quote metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	taxCalculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_tax_calculations_total",
		Help: "Quote tax recalculations by outcome.",
	}, []string{"outcome"})
	taxDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_tax_provider_duration_seconds",
		Help:    "Latency of tax provider calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_resolutions_total",
		Help: "Anonymous quotes adopted or merged into customer quotes.",
	}, []string{"outcome"})
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders created from quotes by payment method.",
	}, []string{"payment_method"})
	outboxPublished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_dispatched_total",
		Help: "Outbox events dispatched by event type and result.",
	}, []string{"event_type", "result"})
	reg.MustRegister(taxCalculations, taxDuration, resolutions, ordersPlaced, outboxPublished)
	return &QuoteMetrics{
		taxCalculations: taxCalculations,
		taxDuration:     taxDuration,
		resolutions:     resolutions,
		ordersPlaced:    ordersPlaced,
		outboxPublished: outboxPublished,
	}
}

// IncTaxCalculation counts a tax recalculation with the given outcome.
func (m *QuoteMetrics) IncTaxCalculation(outcome string) {
	if m == nil || m.taxCalculations == nil {
		return
	}
	m.taxCalculations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveTaxProvider records how long a tax provider call took.
func (m *QuoteMetrics) ObserveTaxProvider(outcome string, duration time.Duration) {
	if m == nil || m.taxDuration == nil {
		return
	}
	m.taxDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncResolution counts an adopted or merged anonymous quote.
func (m *QuoteMetrics) IncResolution(outcome string) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncOrderPlaced counts an order by payment method name.
func (m *QuoteMetrics) IncOrderPlaced(paymentMethod string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncOutboxDispatch counts a dispatched outbox event.
func (m *QuoteMetrics) IncOutboxDispatch(eventType, result string) {
	if m == nil || m.outboxPublished == nil {
		return
	}
	m.outboxPublished.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
