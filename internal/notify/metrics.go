package notify

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Subscribers prometheus.Gauge
	Delivered   prometheus.Counter
	Dropped     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notify_subscribers",
			Help: "Currently registered connection handles.",
		}),
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notify_events_delivered_total",
			Help: "Events accepted by a subscriber queue.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notify_events_dropped_total",
			Help: "Events dropped: no subscribers or full queues.",
		}),
	}

	reg.MustRegister(m.Subscribers, m.Delivered, m.Dropped)
	return m
}
