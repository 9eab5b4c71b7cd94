package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	// Verify all metrics are registered without conflicts
	metrics := []prometheus.Collector{
		StoreActionsTotal,
		StoreCommandChannelDepth,

		StartupResolutionsTotal,
		DeepLinkEventsTotal,

		DimensionEventsTotal,

		ThemeSubscriptionsActive,
		ThemeChangesTotal,

		BridgeConnectedHosts,
		BridgeEventsTotal,
		BridgeEventsDroppedTotal,

		SettingsOpsTotal,
	}

	for _, metric := range metrics {
		desc := make(chan *prometheus.Desc, 1)
		metric.Describe(desc)
		close(desc)

		require.NotNil(t, <-desc, "metric should have a valid descriptor")
	}
}

func TestCounterMetrics(t *testing.T) {
	tests := []struct {
		name    string
		metric  *prometheus.CounterVec
		labels  prometheus.Labels
		incBy   float64
		wantVal float64
	}{
		{
			name:    "store actions counter",
			metric:  StoreActionsTotal,
			labels:  prometheus.Labels{"action": "app_init"},
			incBy:   3,
			wantVal: 3,
		},
		{
			name:    "startup resolutions counter",
			metric:  StartupResolutionsTotal,
			labels:  prometheus.Labels{"path": "push"},
			incBy:   1,
			wantVal: 1,
		},
		{
			name:    "dimension events counter",
			metric:  DimensionEventsTotal,
			labels:  prometheus.Labels{"outcome": "coalesced"},
			incBy:   5,
			wantVal: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < int(tt.incBy); i++ {
				tt.metric.With(tt.labels).Inc()
			}
			assert.Equal(t, tt.wantVal, testutil.ToFloat64(tt.metric.With(tt.labels)))
		})
	}
}

func TestGaugeMetrics(t *testing.T) {
	ThemeSubscriptionsActive.Set(1)
	assert.Equal(t, float64(1), testutil.ToFloat64(ThemeSubscriptionsActive))

	ThemeSubscriptionsActive.Set(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(ThemeSubscriptionsActive))
}
