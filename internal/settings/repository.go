// Package settings is the process-wide local settings service, backed by a
// small SQLite key/value table. The bootstrap layer treats it as opaque: it
// loads a snapshot at mount and persists theme preference changes.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/divyanshu-patil/appshell/internal/crypto"
	"github.com/divyanshu-patil/appshell/internal/domain"
	"github.com/divyanshu-patil/appshell/internal/metrics"
	"github.com/divyanshu-patil/appshell/internal/theme"
)

const schema = `
CREATE TABLE IF NOT EXISTS app_settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

const (
	themePreferenceKey = "theme_preference"
	serverKey          = "server"
)

// Repository stores local settings in SQLite. Values are run through the
// crypto service, so with a real key the database holds no plaintext.
type Repository struct {
	db     *sql.DB
	cipher crypto.Service
}

// Open opens (creating if needed) the settings database at path.
func Open(path string, cipher crypto.Service) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize settings schema: %w", err)
	}
	return &Repository{db: db, cipher: cipher}, nil
}

// Load returns the local settings snapshot, filling defaults for anything
// not yet persisted.
func (r *Repository) Load(ctx context.Context) (*domain.LocalSettings, error) {
	settings := &domain.LocalSettings{ThemePreference: theme.DefaultPreference()}

	raw, err := r.get(ctx, themePreferenceKey)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh install, keep defaults.
	case errors.Is(err, errUndecryptable):
		slog.Warn("Stored theme preference is undecryptable, using default", "error", err)
	case err != nil:
		metrics.SettingsOpsTotal.WithLabelValues("load", "error").Inc()
		return nil, fmt.Errorf("failed to load theme preference: %w", err)
	default:
		var pref domain.ThemePreference
		if err := json.Unmarshal([]byte(raw), &pref); err != nil {
			// A corrupt row degrades to the default preference.
			slog.Warn("Stored theme preference is corrupt, using default", "error", err)
		} else {
			settings.ThemePreference = pref
		}
	}

	server, err := r.get(ctx, serverKey)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case errors.Is(err, errUndecryptable):
		slog.Warn("Stored server is undecryptable, dropping it", "error", err)
	case err != nil:
		metrics.SettingsOpsTotal.WithLabelValues("load", "error").Inc()
		return nil, fmt.Errorf("failed to load server: %w", err)
	default:
		settings.Server = server
	}

	metrics.SettingsOpsTotal.WithLabelValues("load", "success").Inc()
	return settings, nil
}

// SaveThemePreference persists the preference.
func (r *Repository) SaveThemePreference(ctx context.Context, pref domain.ThemePreference) error {
	raw, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("failed to encode theme preference: %w", err)
	}
	if err := r.put(ctx, themePreferenceKey, string(raw)); err != nil {
		metrics.SettingsOpsTotal.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("failed to save theme preference: %w", err)
	}
	metrics.SettingsOpsTotal.WithLabelValues("save", "success").Inc()
	return nil
}

// SaveServer persists the last connected server.
func (r *Repository) SaveServer(ctx context.Context, server string) error {
	if err := r.put(ctx, serverKey, server); err != nil {
		metrics.SettingsOpsTotal.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("failed to save server: %w", err)
	}
	metrics.SettingsOpsTotal.WithLabelValues("save", "success").Inc()
	return nil
}

// Reset clears all persisted settings. Used by the maintenance tool, not by
// the running shell.
func (r *Repository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM app_settings`); err != nil {
		metrics.SettingsOpsTotal.WithLabelValues("reset", "error").Inc()
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	metrics.SettingsOpsTotal.WithLabelValues("reset", "success").Inc()
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// errUndecryptable marks a stored value that the current key cannot open,
// e.g. after a key change. Callers degrade rather than fail.
var errUndecryptable = errors.New("undecryptable settings value")

func (r *Repository) get(ctx context.Context, key string) (string, error) {
	var value string
	if err := r.db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value); err != nil {
		return "", err
	}
	plain, err := r.cipher.Decrypt(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errUndecryptable, err)
	}
	return plain, nil
}

func (r *Repository) put(ctx context.Context, key, value string) error {
	sealed, err := r.cipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, sealed)
	return err
}
