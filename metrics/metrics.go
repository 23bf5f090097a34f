// Package metrics exposes Prometheus counters for the chat client. Every
// method is safe to call on a nil *Metrics so callers can leave it unset.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry      *prometheus.Registry
	received      *prometheus.CounterVec
	sent          *prometheus.CounterVec
	lineBytes     prometheus.Histogram
	bufferRecords prometheus.Counter
	reconnects    prometheus.Counter
	handlerPanics prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irc_messages_received_total",
			Help: "Inbound IRC messages by kind",
		}, []string{"kind"}),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irc_messages_sent_total",
			Help: "Outbound IRC messages by command",
		}, []string{"command"}),
		lineBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "irc_line_bytes",
			Help:    "Size of inbound IRC lines in bytes",
			Buckets: prometheus.ExponentialBuckets(16, 2, 8),
		}),
		bufferRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irc_buffer_records_total",
			Help: "Messages written to the channel buffer",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irc_connections_total",
			Help: "Connections established to the server",
		}),
		handlerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irc_handler_panics_total",
			Help: "Panics recovered from event handlers",
		}),
	}
	m.registry.MustRegister(
		m.received,
		m.sent,
		m.lineBytes,
		m.bufferRecords,
		m.reconnects,
		m.handlerPanics,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Received(kind string, size int) {
	if m == nil {
		return
	}
	m.received.WithLabelValues(kind).Inc()
	m.lineBytes.Observe(float64(size))
}

func (m *Metrics) Sent(command string) {
	if m == nil {
		return
	}
	m.sent.WithLabelValues(command).Inc()
}

func (m *Metrics) BufferRecorded() {
	if m == nil {
		return
	}
	m.bufferRecords.Inc()
}

func (m *Metrics) Connected() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) HandlerPanicked() {
	if m == nil {
		return
	}
	m.handlerPanics.Inc()
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
