package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	PollsTotal         *prometheus.CounterVec
	PollDuration       prometheus.Histogram
	FailuresTotal      *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	StatusChanges      *prometheus.CounterVec
	LastPollTimestamp  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hwstatus_polls_total",
			Help: "total number of poll iterations",
		}, []string{"result"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hwstatus_poll_duration_seconds",
			Help:    "duration of one poll iteration",
			Buckets: prometheus.DefBuckets,
		}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hwstatus_failures_total",
			Help: "total number of failed iterations by error kind",
		}, []string{"kind"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hwstatus_notifications_total",
			Help: "total number of notification attempts",
		}, []string{"result"}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hwstatus_status_changes_total",
			Help: "total number of observed status changes",
		}, []string{"status"}),
		LastPollTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hwstatus_last_poll_timestamp_seconds",
			Help: "unix time of the last finished poll iteration",
		}),
	}

	metrics.Enable(reg)
	return metrics
}

func (m *Metrics) Enable(reg prometheus.Registerer) {
	reg.MustRegister(m.PollsTotal)
	reg.MustRegister(m.PollDuration)
	reg.MustRegister(m.FailuresTotal)
	reg.MustRegister(m.NotificationsTotal)
	reg.MustRegister(m.StatusChanges)
	reg.MustRegister(m.LastPollTimestamp)
}
