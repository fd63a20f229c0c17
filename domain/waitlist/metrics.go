package waitlist

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeCreated   = "created"
	outcomeDuplicate = "duplicate"
	outcomeError     = "error"
)

type Metrics struct {
	submissions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_submissions_total",
				Help: "Waitlist submissions by outcome.",
			},
			[]string{"outcome"},
		),
	}

	for _, outcome := range []string{outcomeCreated, outcomeDuplicate, outcomeError} {
		m.submissions.WithLabelValues(outcome)
	}

	reg.MustRegister(m.submissions)
	return m
}

func (m *Metrics) observe(outcome Outcome) {
	if m == nil {
		return
	}

	label := outcomeError
	switch {
	case outcome.Duplicate:
		label = outcomeDuplicate
	case outcome.IsSuccess():
		label = outcomeCreated
	}
	m.submissions.WithLabelValues(label).Inc()
}
