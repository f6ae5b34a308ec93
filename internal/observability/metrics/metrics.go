package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the quote-intake flow.
type IntakeMetrics struct {
	conversationsStarted   prometheus.Counter
	conversationsCompleted prometheus.Counter
	repromptsTotal         *prometheus.CounterVec
	quickQuoteTotal        *prometheus.CounterVec
	persistLatency         prometheus.Histogram
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		conversationsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "intake",
			Name:      "conversations_started_total",
			Help:      "Total intake conversations started",
		}),
		conversationsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "intake",
			Name:      "conversations_completed_total",
			Help:      "Total intake conversations that reached completion",
		}),
		repromptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "intake",
			Name:      "reprompts_total",
			Help:      "Total re-prompts sent for rejected answers",
		}, []string{"step"}),
		quickQuoteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "intake",
			Name:      "quick_quote_total",
			Help:      "Quick-quote attempts by outcome",
		}, []string{"outcome"}),
		persistLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "paintquote",
			Subsystem: "intake",
			Name:      "quote_persist_latency_seconds",
			Help:      "Latency of persisting a completed quote",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.conversationsStarted,
		m.conversationsCompleted,
		m.repromptsTotal,
		m.quickQuoteTotal,
		m.persistLatency,
	)
	return m
}

func (m *IntakeMetrics) ObserveConversationStarted() {
	if m == nil {
		return
	}
	m.conversationsStarted.Inc()
}

func (m *IntakeMetrics) ObserveConversationCompleted() {
	if m == nil {
		return
	}
	m.conversationsCompleted.Inc()
}

func (m *IntakeMetrics) ObserveReprompt(step string) {
	if m == nil {
		return
	}
	m.repromptsTotal.WithLabelValues(step).Inc()
}

func (m *IntakeMetrics) ObserveQuickQuote(outcome string) {
	if m == nil {
		return
	}
	m.quickQuoteTotal.WithLabelValues(outcome).Inc()
}

func (m *IntakeMetrics) ObservePersistLatency(seconds float64) {
	if m == nil {
		return
	}
	m.persistLatency.Observe(seconds)
}
