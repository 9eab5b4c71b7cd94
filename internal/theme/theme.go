// Package theme resolves the active theme from the user preference and the
// system appearance, and manages the single live subscription to appearance
// changes.
package theme

import "github.com/divyanshu-patil/appshell/internal/domain"

// Resolve derives the active theme identifier from a preference and the
// current system appearance. The preference is the source selection; the
// identifier is what the presentation layer actually renders.
func Resolve(pref domain.ThemePreference, systemAppearance string) string {
	switch pref.CurrentTheme {
	case domain.PreferenceAutomatic:
		if systemAppearance == domain.ThemeDark {
			return darkLevel(pref)
		}
		return domain.ThemeLight
	case domain.PreferenceDark:
		return darkLevel(pref)
	default:
		return domain.ThemeLight
	}
}

func darkLevel(pref domain.ThemePreference) string {
	if pref.DarkLevel == domain.ThemeBlack {
		return domain.ThemeBlack
	}
	return domain.ThemeDark
}

// DefaultPreference is what a fresh install resolves before any settings
// have been persisted.
func DefaultPreference() domain.ThemePreference {
	return domain.ThemePreference{
		CurrentTheme: domain.PreferenceAutomatic,
		DarkLevel:    domain.ThemeDark,
	}
}
