package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store Metrics
var (
	// StoreActionsTotal tracks dispatched store actions by action name
	StoreActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_actions_total",
			Help: "Total store actions dispatched by action name",
		},
		[]string{"action"},
	)

	// StoreCommandChannelDepth tracks the store command channel backlog
	StoreCommandChannelDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_command_channel_depth",
			Help: "Current depth of the store command channel",
		},
	)
)

// Startup Metrics
var (
	// StartupResolutionsTotal tracks which launch path won the arbitration
	StartupResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startup_resolutions_total",
			Help: "Launch intent resolutions by winning path (push/deeplink/default)",
		},
		[]string{"path"},
	)

	// DeepLinkEventsTotal tracks recurring deep-link events by parse result
	DeepLinkEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deeplink_events_total",
			Help: "Recurring deep-link open events by parse result",
		},
		[]string{"result"},
	)
)

// Dimension Metrics
var (
	// DimensionEventsTotal tracks dimension change events by debounce outcome
	DimensionEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dimension_events_total",
			Help: "Dimension change events by outcome (accepted/coalesced)",
		},
		[]string{"outcome"},
	)
)

// Theme Metrics
var (
	// ThemeSubscriptionsActive tracks live theme subscriptions (0 or 1)
	ThemeSubscriptionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "theme_subscriptions_active",
			Help: "Number of live theme preference subscriptions",
		},
	)

	// ThemeChangesTotal tracks delivered theme preference changes
	ThemeChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "theme_changes_total",
			Help: "Total theme preference changes delivered to the shell",
		},
	)
)

// Host Bridge Metrics
var (
	// BridgeConnectedHosts tracks currently connected host processes
	BridgeConnectedHosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_connected_hosts",
			Help: "Number of currently connected native host processes",
		},
	)

	// BridgeEventsTotal tracks inbound host events by event name
	BridgeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_events_total",
			Help: "Inbound host bridge events by event name",
		},
		[]string{"event"},
	)

	// BridgeEventsDroppedTotal tracks host events dropped by rate limiting
	BridgeEventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_events_dropped_total",
			Help: "Host bridge events dropped by the inbound rate limiter",
		},
	)
)

// Settings Metrics
var (
	// SettingsOpsTotal tracks settings repository operations by op and status
	SettingsOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_operations_total",
			Help: "Settings repository operations by operation and status",
		},
		[]string{"operation", "status"},
	)
)
