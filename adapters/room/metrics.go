package room

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 是房間管理的監控指標
type Metrics struct {
	registerer    prometheus.Registerer
	droppedEvents prometheus.Counter
}

// NewMetrics 建立指標，連線數與房間數在 Manager 建立時註冊
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	droppedEvents := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lotbid",
		Subsystem: "realtime",
		Name:      "dropped_events_total",
		Help:      "Events dropped because a client queue was full.",
	})
	registerer.MustRegister(droppedEvents)
	return &Metrics{registerer: registerer, droppedEvents: droppedEvents}
}

func (m *Metrics) bind(manager *Manager) {
	m.registerer.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "lotbid",
			Subsystem: "realtime",
			Name:      "connected_clients",
			Help:      "Connected real-time clients.",
		}, func() float64 { return float64(manager.Clients()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "lotbid",
			Subsystem: "realtime",
			Name:      "active_rooms",
			Help:      "Auction rooms with at least one client.",
		}, func() float64 { return float64(manager.Rooms()) }),
	)
}

func (m *Metrics) dropped() {
	if m == nil {
		return
	}
	m.droppedEvents.Inc()
}
