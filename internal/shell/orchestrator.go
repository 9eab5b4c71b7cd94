// Package shell is the root orchestrator. Mount wires the startup
// arbitration, the theme lifecycle and the dimension tracking together and
// publishes the theme and dimensions context values the presentation layer
// consumes.
package shell

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/divyanshu-patil/appshell/internal/contextval"
	"github.com/divyanshu-patil/appshell/internal/dimensions"
	"github.com/divyanshu-patil/appshell/internal/domain"
	"github.com/divyanshu-patil/appshell/internal/layout"
	"github.com/divyanshu-patil/appshell/internal/startup"
	"github.com/divyanshu-patil/appshell/internal/store"
	"github.com/divyanshu-patil/appshell/internal/theme"
)

const persistTimeout = 5 * time.Second

// Deps are the collaborators the orchestrator wires together.
type Deps struct {
	Host       domain.Host
	Appearance domain.AppearanceSource
	Settings   domain.SettingsRepository
	Crash      domain.CrashReporter
	Themes     *theme.Manager
	Arbitrator *startup.Arbitrator
	Store      store.Dispatcher
	Clock      clockwork.Clock

	DebounceWindow       time.Duration
	EnableCrashReporting bool
}

// Orchestrator owns the mount/unmount lifecycle of the shell.
type Orchestrator struct {
	deps Deps

	themeValue      *contextval.Value[domain.ThemeContext]
	dimensionsValue *contextval.Value[domain.DimensionsContext]

	mu               sync.Mutex
	mounted          bool
	pref             domain.ThemePreference
	sub              *theme.Subscription
	tracker          *dimensions.Tracker
	removeDims       func()
	masterDetailSet  bool
	lastMasterDetail bool
}

func NewOrchestrator(deps Deps) *Orchestrator {
	o := &Orchestrator{deps: deps}
	o.themeValue = contextval.New(domain.ThemeContext{})
	o.dimensionsValue = contextval.New(domain.DimensionsContext{})
	return o
}

// Mount runs the startup sequence: load settings, toggle crash reporting,
// prime the two-pane layout, arm the theme subscription, start dimension
// tracking and resolve the launch intent. Blocks until the host has
// announced itself or ctx expires.
func (o *Orchestrator) Mount(ctx context.Context) {
	o.mu.Lock()
	if o.mounted {
		o.mu.Unlock()
		return
	}
	o.mounted = true
	o.mu.Unlock()

	settings, err := o.deps.Settings.Load(ctx)
	if err != nil {
		// A broken settings store must not block startup.
		slog.Warn("Settings load failed, using defaults", "error", err)
		settings = &domain.LocalSettings{ThemePreference: theme.DefaultPreference()}
	}
	o.deps.Store.Dispatch(store.AppInitLocalSettings{Settings: settings})

	o.deps.Crash.SetEnabled(o.deps.EnableCrashReporting)

	if o.deps.Host.IsTablet() {
		enabled := layout.Resolve(true, o.deps.Host.WindowMetrics().Width)
		o.mu.Lock()
		o.masterDetailSet = true
		o.lastMasterDetail = enabled
		o.mu.Unlock()
		o.deps.Store.Dispatch(store.SetMasterDetail{Enabled: enabled})
	}

	o.deps.Themes.Prime(settings.ThemePreference)
	o.mu.Lock()
	o.pref = settings.ThemePreference
	o.sub = o.deps.Themes.Subscribe(settings.ThemePreference, o.onAppearanceShift)
	o.mu.Unlock()
	o.publishTheme(settings.ThemePreference, false)

	seed := o.deps.Host.WindowMetrics()
	tracker := dimensions.NewTracker(seed, o.deps.DebounceWindow, o.onDimensions, o.deps.Clock)
	o.mu.Lock()
	o.tracker = tracker
	o.removeDims = o.deps.Host.OnDimensionsChanged(tracker.Changed)
	o.mu.Unlock()
	o.publishDimensions(seed)

	o.deps.Arbitrator.Run(ctx)
	slog.Info("Shell mounted")
}

// Unmount tears down everything Mount armed. Safe to call on a shell that
// never mounted.
func (o *Orchestrator) Unmount() {
	o.mu.Lock()
	if !o.mounted {
		o.mu.Unlock()
		return
	}
	o.mounted = false
	sub := o.sub
	o.sub = nil
	tracker := o.tracker
	o.tracker = nil
	removeDims := o.removeDims
	o.removeDims = nil
	o.mu.Unlock()

	o.deps.Arbitrator.Close()
	if removeDims != nil {
		removeDims()
	}
	if tracker != nil {
		tracker.Stop()
	}
	o.deps.Themes.Unsubscribe(sub)
	slog.Info("Shell unmounted")
}

// Theme returns the current theme context value.
func (o *Orchestrator) Theme() domain.ThemeContext {
	return o.themeValue.Get()
}

// Dimensions returns the current dimensions context value.
func (o *Orchestrator) Dimensions() domain.DimensionsContext {
	return o.dimensionsValue.Get()
}

// OnThemeChanged subscribes to theme context updates.
func (o *Orchestrator) OnThemeChanged(fn func(domain.ThemeContext)) (remove func()) {
	return o.themeValue.Subscribe(fn)
}

// OnDimensionsUpdated subscribes to dimensions context updates.
func (o *Orchestrator) OnDimensionsUpdated(fn func(domain.DimensionsContext)) (remove func()) {
	return o.dimensionsValue.Subscribe(fn)
}

// SetTheme is the write path exposed through the theme context. A
// preference identical to the current one is a no-op; anything else is
// persisted, resubscribed and republished.
func (o *Orchestrator) SetTheme(pref domain.ThemePreference) {
	o.mu.Lock()
	if pref == o.pref {
		o.mu.Unlock()
		return
	}
	o.pref = pref
	o.sub = o.deps.Themes.Subscribe(pref, o.onAppearanceShift)
	o.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := o.deps.Settings.SaveThemePreference(ctx, pref); err != nil {
		slog.Warn("Failed to persist theme preference", "error", err)
	}

	o.publishTheme(pref, true)
}

// SetDimensions is the write path exposed through the dimensions context.
// It goes through the same debounce as host events.
func (o *Orchestrator) SetDimensions(m domain.DeviceMetrics) {
	o.mu.Lock()
	tracker := o.tracker
	o.mu.Unlock()
	if tracker != nil {
		tracker.Changed(m)
	}
}

// onAppearanceShift runs when the system appearance changes while an
// automatic preference is subscribed.
func (o *Orchestrator) onAppearanceShift(pref domain.ThemePreference) {
	o.publishTheme(pref, true)
}

func (o *Orchestrator) publishTheme(pref domain.ThemePreference, pushNative bool) {
	resolved := theme.Resolve(pref, o.deps.Appearance.Current())
	if pushNative {
		o.deps.Host.SetNativeTheme(resolved)
	}
	o.themeValue.Set(domain.ThemeContext{
		Theme:       resolved,
		Preferences: pref,
		Colors:      theme.Colors(resolved),
		SetTheme:    o.SetTheme,
	})
}

// onDimensions runs on the tracker goroutine for every accepted snapshot.
func (o *Orchestrator) onDimensions(m domain.DeviceMetrics) {
	o.publishDimensions(m)

	enabled := layout.Resolve(o.deps.Host.IsTablet(), m.Width)
	o.mu.Lock()
	changed := !o.masterDetailSet || enabled != o.lastMasterDetail
	o.masterDetailSet = true
	o.lastMasterDetail = enabled
	o.mu.Unlock()

	if changed {
		o.deps.Store.Dispatch(store.SetMasterDetail{Enabled: enabled})
	}
}

func (o *Orchestrator) publishDimensions(m domain.DeviceMetrics) {
	o.dimensionsValue.Set(domain.DimensionsContext{
		Width:         m.Width,
		Height:        m.Height,
		Scale:         m.Scale,
		FontScale:     m.FontScale,
		SetDimensions: o.SetDimensions,
	})
}
