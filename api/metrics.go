package api

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	bidsAccepted   prometheus.Counter
	bidsRejected   *prometheus.CounterVec
	settlements    *prometheus.CounterVec
	bridgeFailures prometheus.Counter
	eventFailures  prometheus.Counter
}

// NewMetrics 在 registerer 上註冊所有 API 指標以及 Go runtime 指標
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		bidsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lotbid",
			Name:      "bids_accepted_total",
			Help:      "Bids accepted by the admission controller.",
		}),
		bidsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lotbid",
			Name:      "bids_rejected_total",
			Help:      "Bids rejected by the admission controller.",
		}, []string{"reason"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lotbid",
			Name:      "settlements_total",
			Help:      "Settlement calls by whether this call assigned the result.",
		}, []string{"settled"}),
		bridgeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lotbid",
			Name:      "bridge_failures_total",
			Help:      "Broadcast bridge notifications that failed.",
		}),
		eventFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lotbid",
			Name:      "domain_event_failures_total",
			Help:      "Domain events that could not be published.",
		}),
	}
	registerer.MustRegister(
		m.bidsAccepted,
		m.bidsRejected,
		m.settlements,
		m.bridgeFailures,
		m.eventFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) bidAccepted() {
	m.bidsAccepted.Inc()
}

func (m *Metrics) bidRejected(reason string) {
	m.bidsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) settlement(settled bool) {
	m.settlements.WithLabelValues(strconv.FormatBool(settled)).Inc()
}

func (m *Metrics) bridgeFailed() {
	m.bridgeFailures.Inc()
}

func (m *Metrics) eventFailed() {
	m.eventFailures.Inc()
}
