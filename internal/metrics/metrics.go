// Package metrics wires rudp's runtime counters into Prometheus, the way
// the rest of the corpus exposes operational metrics rather than logging
// them ad hoc.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every collector a Socket reports to. A nil *Metrics is
// never constructed directly; use New or NewUnregistered.
type Metrics struct {
	ActiveConnections  prometheus.Gauge
	PacketsReceived    *prometheus.CounterVec
	PacketsSent        *prometheus.CounterVec
	PacketsDropped     *prometheus.CounterVec
	ConnectionTimeouts prometheus.Counter
	RTTMilliseconds    prometheus.Histogram
}

const namespace = "rudp"

func newCollectors() *Metrics {
	return &Metrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of virtual connections currently tracked.",
		}),
		PacketsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_received_total",
			Help:      "Datagrams received, labeled by delivery method.",
		}, []string{"delivery_method"}),
		PacketsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_sent_total",
			Help:      "Datagrams sent, labeled by delivery method.",
		}, []string{"delivery_method"}),
		PacketsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_dropped_total",
			Help:      "Reliable sends never acknowledged within the ack window, labeled by delivery method.",
		}, []string{"delivery_method"}),
		ConnectionTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_timeouts_total",
			Help:      "Virtual connections torn down for inactivity.",
		}),
		RTTMilliseconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rtt_milliseconds",
			Help:      "Measured round-trip time for acknowledged reliable sends.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// New builds a Metrics bundle and registers it with reg. Passing nil
// registers against prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := newCollectors()
	reg.MustRegister(
		m.ActiveConnections,
		m.PacketsReceived,
		m.PacketsSent,
		m.PacketsDropped,
		m.ConnectionTimeouts,
		m.RTTMilliseconds,
	)
	return m
}

// NewUnregistered builds a Metrics bundle without registering it anywhere,
// for tests that want to assert on collector values without touching the
// global registry.
func NewUnregistered() *Metrics {
	return newCollectors()
}
