package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIntakeMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)

	m.ObserveConversationStarted()
	m.ObserveConversationStarted()
	m.ObserveConversationCompleted()
	m.ObserveReprompt("surfaces")
	m.ObserveQuickQuote("created")
	m.ObservePersistLatency(0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.conversationsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversationsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.repromptsTotal.WithLabelValues("surfaces")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quickQuoteTotal.WithLabelValues("created")))
}

func TestIntakeMetricsNilSafe(t *testing.T) {
	var m *IntakeMetrics
	m.ObserveConversationStarted()
	m.ObserveConversationCompleted()
	m.ObserveReprompt("start")
	m.ObserveQuickQuote("rejected")
	m.ObservePersistLatency(0)
}
