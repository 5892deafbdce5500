// Package qmetrics exposes Prometheus instrumentation for a
// blockingqueue.Queue instance: current depth, offer/poll/rejection
// counters, and a histogram of time spent waiting inside Await, built
// directly on github.com/prometheus/client_golang via a ProviderSet +
// New constructor.
package qmetrics

import (
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
)

// ProviderSet is the Wire provider set for the qmetrics package.
var ProviderSet = wire.NewSet(New)

// QueueMetrics is the set of Prometheus collectors registered for one
// named queue instance.
type QueueMetrics struct {
	depth       prometheus.Gauge
	offers      *prometheus.CounterVec
	polls       *prometheus.CounterVec
	waitLatency prometheus.Histogram
}

// New registers and returns a QueueMetrics for the given queue name on
// reg. Passing prometheus.NewRegistry() (or prometheus.DefaultRegisterer)
// is the caller's choice; qmetrics never reaches for the default
// registry implicitly.
func New(reg prometheus.Registerer, queueName string) (*QueueMetrics, error) {
	m := &QueueMetrics{
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "concurrentqueue",
			Name:        "depth",
			Help:        "Current number of elements held by the queue.",
			ConstLabels: prometheus.Labels{"queue": queueName},
		}),
		offers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "concurrentqueue",
			Name:        "offers_total",
			Help:        "Total Offer calls, partitioned by whether the ring accepted the element.",
			ConstLabels: prometheus.Labels{"queue": queueName},
		}, []string{"result"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "concurrentqueue",
			Name:        "polls_total",
			Help:        "Total Poll calls, partitioned by whether the ring yielded an element.",
			ConstLabels: prometheus.Labels{"queue": queueName},
		}, []string{"result"}),
		waitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "concurrentqueue",
			Name:        "wait_seconds",
			Help:        "Time a blocking Put/Take spent waiting on a condition before succeeding.",
			ConstLabels: prometheus.Labels{"queue": queueName},
			Buckets:     prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{m.depth, m.offers, m.polls, m.waitLatency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SetDepth records the queue's current occupancy.
func (m *QueueMetrics) SetDepth(n int) { m.depth.Set(float64(n)) }

// RecordOffer increments the accepted or rejected offer counter.
func (m *QueueMetrics) RecordOffer(accepted bool) {
	m.offers.WithLabelValues(resultLabel(accepted)).Inc()
}

// RecordPoll increments the hit or miss poll counter.
func (m *QueueMetrics) RecordPoll(hit bool) {
	m.polls.WithLabelValues(resultLabel(hit)).Inc()
}

// ObserveWait records how long a blocking call waited before succeeding.
func (m *QueueMetrics) ObserveWait(d time.Duration) {
	m.waitLatency.Observe(d.Seconds())
}

func resultLabel(ok bool) string {
	if ok {
		return "accepted"
	}
	return "rejected"
}
