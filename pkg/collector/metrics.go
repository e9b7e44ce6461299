package collector

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/tmon/pkg/reading"
)

// Poll results used as metric labels.
const (
	ResultOK   = "ok"
	ResultMiss = "miss"

	ResultInvalid = "invalid"
)

// Metrics are the collector's prometheus metrics. A nil *Metrics records
// nothing.
type Metrics struct {
	Polls       *prometheus.CounterVec
	Retries     *prometheus.CounterVec
	PushFrames  *prometheus.CounterVec
	LastReading *prometheus.GaugeVec
	Celsius     *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them to reg if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tmon_polls_total",
			Help: "Polls per node by result.",
		}, []string{"addr", "result"}),
		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tmon_poll_retries_total",
			Help: "Poll attempts beyond the first per node.",
		}, []string{"addr"}),
		PushFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tmon_push_frames_total",
			Help: "Datagrams received from pushing nodes by result.",
		}, []string{"result"}),
		LastReading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tmon_last_reading_timestamp_seconds",
			Help: "Unix time of the last reading per node.",
		}, []string{"addr"}),
		Celsius: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tmon_channel_celsius",
			Help: "Last valid temperature per node and channel.",
		}, []string{"addr", "channel"}),
	}
	if reg != nil {
		reg.MustRegister(m.Polls, m.Retries, m.PushFrames, m.LastReading, m.Celsius)
	}
	return m
}

func addrLabel(addr byte) string {
	return strconv.Itoa(int(addr))
}

func (m *Metrics) poll(addr byte, result string) {
	if m != nil {
		m.Polls.WithLabelValues(addrLabel(addr), result).Inc()
	}
}

func (m *Metrics) retry(addr byte) {
	if m != nil {
		m.Retries.WithLabelValues(addrLabel(addr)).Inc()
	}
}

func (m *Metrics) push(result string) {
	if m != nil {
		m.PushFrames.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) observe(r reading.Reading) {
	if m == nil {
		return
	}
	addr := addrLabel(r.Address)
	m.LastReading.WithLabelValues(addr).Set(float64(r.Time.Unix()))
	for ch, c := range r.Channels {
		if c.Valid {
			m.Celsius.WithLabelValues(addr, strconv.Itoa(ch)).Set(c.Celsius())
		}
	}
}
