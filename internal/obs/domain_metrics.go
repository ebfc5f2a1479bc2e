package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics groups the collectors describing invoice activity.
type BillingMetrics struct {
	QuotesTotal     *prometheus.CounterVec
	InvoicesTotal   *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec
	NetTotalAriary  *prometheus.HistogramVec
	LastRenderEpoch prometheus.Gauge
}

// NewBillingMetrics registers and returns billing collectors. A nil registerer
// uses the default Prometheus registry.
func NewBillingMetrics(namespace string, buckets []float64, reg prometheus.Registerer) *BillingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000}
	}
	m := &BillingMetrics{
		QuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Count of quote computations by circuit and outcome.",
		}, []string{"circuit", "result"}),
		InvoicesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_rendered_total",
			Help:      "Count of invoice documents rendered by page size and outcome.",
		}, []string{"page_size", "result"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_render_duration_ms",
			Help:      "Time spent composing and rendering an invoice in milliseconds.",
			Buckets:   buckets,
		}, []string{"page_size"}),
		NetTotalAriary: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_net_total_ariary",
			Help:      "Distribution of billed net totals in Ariary.",
			Buckets:   prometheus.ExponentialBuckets(100_000, 2, 10),
		}, []string{"circuit"}),
		LastRenderEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "invoice_last_render_timestamp_seconds",
			Help:      "Unix time of the last successful invoice render.",
		}),
	}
	register(reg, &m.QuotesTotal)
	register(reg, &m.InvoicesTotal)
	register(reg, &m.RenderDuration)
	register(reg, &m.NetTotalAriary)
	register(reg, &m.LastRenderEpoch)
	return m
}
