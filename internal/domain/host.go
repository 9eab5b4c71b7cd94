package domain

import "context"

// Host is the contract with the native host environment. One-shot queries
// (InitialURL, pending notifications) are asynchronous and may block until
// the host has announced itself; listener registrations return a remove
// function that detaches the listener.
type Host interface {
	InitialURL(ctx context.Context) (string, error)
	PendingPushNotification(ctx context.Context) (*PushPayload, error)
	InitialVideoConfNotification(ctx context.Context) (*PushPayload, error)

	// WindowMetrics is the synchronous seed query; it is always answerable,
	// falling back to host defaults before the first real snapshot arrives.
	WindowMetrics() DeviceMetrics
	IsTablet() bool

	OnURLOpened(fn func(url string)) (remove func())
	OnDimensionsChanged(fn func(metrics DeviceMetrics)) (remove func())

	SetNativeTheme(theme string)
}

// AppearanceSource reports the system-level light/dark appearance.
type AppearanceSource interface {
	Current() string
	OnChanged(fn func(appearance string)) (remove func())
}

// SettingsRepository is the process-wide settings service. Persistence
// format is owned by the implementation.
type SettingsRepository interface {
	Load(ctx context.Context) (*LocalSettings, error)
	SaveThemePreference(ctx context.Context, pref ThemePreference) error
	Close() error
}

// NotificationRouter hands a tapped push notification to the notification
// subsystem for routing.
type NotificationRouter interface {
	HandlePush(ctx context.Context, payload *PushPayload) error
}

// CrashReporter toggles crash/analytics reporting. Enabled only on build
// variants that opt in.
type CrashReporter interface {
	SetEnabled(enabled bool)
}

// NoopCrashReporter is used when the build variant ships without reporting.
type NoopCrashReporter struct{}

func (NoopCrashReporter) SetEnabled(bool) {}
