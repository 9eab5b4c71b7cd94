package domain

// --- Model types ---

// DeviceMetrics is a snapshot of the host window dimensions. It is produced
// wholesale by the host on every change event and never patched field by
// field; all four values always come from the same event.
type DeviceMetrics struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Scale     float64 `json:"scale"`
	FontScale float64 `json:"fontScale"`
}

// Active theme identifiers derived from a ThemePreference.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeBlack = "black"
)

// ThemePreference values for CurrentTheme.
const (
	PreferenceLight     = "light"
	PreferenceDark      = "dark"
	PreferenceAutomatic = "automatic"
)

// ThemePreference is the user-selected display mode. The settings service
// owns it; the shell only holds a read cache of the last resolved value.
// DarkLevel selects which dark palette applies when a dark theme is active.
type ThemePreference struct {
	CurrentTheme string `json:"currentTheme"`
	DarkLevel    string `json:"darkLevel"`
}

// Launch intent kinds.
const (
	KindRoom           = "room"
	KindAuth           = "auth"
	KindInvite         = "invite"
	KindShareExtension = "shareExtension"
)

// LaunchIntent is the classified reason the application was opened.
// Derived once per process start and never mutated afterwards.
type LaunchIntent struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params"`
}

// PushPayload is a push notification as delivered by the host. EJSON carries
// the JSON-encoded routing envelope produced by the notification subsystem.
type PushPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	EJSON   string `json:"ejson"`
}

// Palette maps semantic color names to concrete values. The palettes
// themselves are opaque to the bootstrap core.
type Palette map[string]string

// LocalSettings is what the settings service hands the shell at startup.
type LocalSettings struct {
	ThemePreference ThemePreference `json:"themePreference"`
	Server          string          `json:"server"`
}

// --- Published context values ---

// ThemeContext is the theme value republished to the presentation layer.
type ThemeContext struct {
	Theme       string
	Preferences ThemePreference
	Colors      Palette
	SetTheme    func(ThemePreference)
}

// DimensionsContext is the dimensions value republished to the presentation
// layer.
type DimensionsContext struct {
	Width         float64
	Height        float64
	Scale         float64
	FontScale     float64
	SetDimensions func(DeviceMetrics)
}
