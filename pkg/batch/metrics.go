package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts conversion outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	items    *prometheus.CounterVec
	bytes    prometheus.Counter
	duration prometheus.Histogram
}

// NewMetrics creates the conversion metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webp_converter",
			Name:      "items_total",
			Help:      "Conversion attempts by outcome.",
		}, []string{"outcome"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "webp_converter",
			Name:      "output_bytes_total",
			Help:      "Bytes of WebP written.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "webp_converter",
			Name:      "item_duration_seconds",
			Help:      "Time to load, crop and encode one image.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.items, m.bytes, m.duration)
	}
	return m
}

func (m *Metrics) observe(start time.Time, size int64, err error) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.items.WithLabelValues("error").Inc()
		return
	}
	m.items.WithLabelValues("done").Inc()
	m.bytes.Add(float64(size))
}

func (m *Metrics) cancelled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.items.WithLabelValues("cancelled").Add(float64(n))
}
