package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	SettingsPath string

	// SettingsEncryptionKey is a hex-encoded AES-256 key for the settings
	// values at rest. Empty means plaintext storage.
	SettingsEncryptionKey string

	DeepLinkScheme string
	DeepLinkHost   string

	// DimensionDebounceWindow is the quiescence window applied to host
	// dimension-change bursts.
	DimensionDebounceWindow time.Duration

	// DeepLinkListenerDelay is how long after mount the recurring deep-link
	// listener is armed. A guard against duplicate delivery of the initial
	// URL, tunable rather than load-bearing.
	DeepLinkListenerDelay time.Duration

	// CrashReportingEnabled gates the crash/analytics toggle; official build
	// variants set it.
	CrashReportingEnabled bool
}

func Load() (*Config, error) {
	// Best effort: a missing .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
		SettingsPath:          getEnv("SETTINGS_PATH", "appshell.db"),
		SettingsEncryptionKey: getEnv("SETTINGS_ENCRYPTION_KEY", ""),
		DeepLinkScheme:        getEnv("DEEPLINK_SCHEME", "appshell"),
		DeepLinkHost:          getEnv("DEEPLINK_HOST", "go.chat.example"),
		CrashReportingEnabled: getEnv("CRASH_REPORTING_ENABLED", "false") == "true",
	}

	var err error
	if cfg.DimensionDebounceWindow, err = getDurationEnv("DIMENSION_DEBOUNCE_WINDOW", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.DeepLinkListenerDelay, err = getDurationEnv("DEEPLINK_LISTENER_DELAY", 5*time.Second); err != nil {
		return nil, err
	}

	if cfg.DeepLinkScheme == "" {
		return nil, fmt.Errorf("DEEPLINK_SCHEME must not be empty")
	}
	if cfg.DeepLinkHost == "" {
		return nil, fmt.Errorf("DEEPLINK_HOST must not be empty")
	}
	if cfg.DimensionDebounceWindow <= 0 {
		return nil, fmt.Errorf("DIMENSION_DEBOUNCE_WINDOW must be positive")
	}
	if cfg.DeepLinkListenerDelay < 0 {
		return nil, fmt.Errorf("DEEPLINK_LISTENER_DELAY must not be negative")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT must be numeric: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}
