package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/permwatch/internal/metrics"
)

func TestObserveSignal_LabelsByOutcome(t *testing.T) {
	m := metrics.New(nil)

	m.ObserveSignal("camera", "active", true)
	m.ObserveSignal("camera", "active", false)
	m.ObserveSignal("camera", "active", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Signals.WithLabelValues("camera", "active", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Signals.WithLabelValues("camera", "active", "rejected")))
}

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveSignal("camera", "active", true)
	m.IncDeliveryFailures()
	m.IncUsageStored("camera")
	m.IncAlerts("camera")
	m.AddUsagePruned(3)
}

func TestAddUsagePruned_IgnoresZero(t *testing.T) {
	m := metrics.New(nil)

	m.AddUsagePruned(0)
	m.AddUsagePruned(4)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.UsagePruned))
}

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.IncUsageStored("location")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["permwatch_usage_stored_total"])
}
