package session

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

type Metrics struct {
	logins *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_logins_total",
				Help: "Admin sign-in attempts by outcome.",
			},
			[]string{"outcome"},
		),
	}

	m.logins.WithLabelValues(outcomeSuccess)
	m.logins.WithLabelValues(outcomeFailure)

	reg.MustRegister(m.logins)
	return m
}

func (m *Metrics) observe(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.logins.WithLabelValues(outcomeFailure).Inc()
		return
	}
	m.logins.WithLabelValues(outcomeSuccess).Inc()
}
