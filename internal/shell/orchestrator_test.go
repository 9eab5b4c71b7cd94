package shell

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/divyanshu-patil/appshell/internal/deeplink"
	"github.com/divyanshu-patil/appshell/internal/domain"
	"github.com/divyanshu-patil/appshell/internal/startup"
	"github.com/divyanshu-patil/appshell/internal/store"
	"github.com/divyanshu-patil/appshell/internal/theme"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeHost struct {
	mu           sync.Mutex
	metrics      domain.DeviceMetrics
	tablet       bool
	push         *domain.PushPayload
	videoConf    *domain.PushPayload
	initialURL   string
	urlSubs      map[uuid.UUID]func(string)
	dimSubs      map[uuid.UUID]func(domain.DeviceMetrics)
	nativeThemes []string
}

func newFakeHost(metrics domain.DeviceMetrics, tablet bool) *fakeHost {
	return &fakeHost{
		metrics: metrics,
		tablet:  tablet,
		urlSubs: make(map[uuid.UUID]func(string)),
		dimSubs: make(map[uuid.UUID]func(domain.DeviceMetrics)),
	}
}

func (h *fakeHost) InitialURL(context.Context) (string, error) {
	return h.initialURL, nil
}

func (h *fakeHost) PendingPushNotification(context.Context) (*domain.PushPayload, error) {
	return h.push, nil
}

func (h *fakeHost) InitialVideoConfNotification(context.Context) (*domain.PushPayload, error) {
	return h.videoConf, nil
}

func (h *fakeHost) WindowMetrics() domain.DeviceMetrics {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.metrics
}

func (h *fakeHost) IsTablet() bool {
	return h.tablet
}

func (h *fakeHost) OnURLOpened(fn func(string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.New()
	h.urlSubs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.urlSubs, id)
	}
}

func (h *fakeHost) OnDimensionsChanged(fn func(domain.DeviceMetrics)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.New()
	h.dimSubs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.dimSubs, id)
	}
}

func (h *fakeHost) SetNativeTheme(theme string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nativeThemes = append(h.nativeThemes, theme)
}

func (h *fakeHost) fireDimensions(m domain.DeviceMetrics) {
	h.mu.Lock()
	h.metrics = m
	fns := make([]func(domain.DeviceMetrics), 0, len(h.dimSubs))
	for _, fn := range h.dimSubs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(m)
	}
}

func (h *fakeHost) pushedThemes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.nativeThemes...)
}

func (h *fakeHost) dimListenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.dimSubs)
}

type fakeAppearance struct {
	mu      sync.Mutex
	current string
	subs    map[uuid.UUID]func(string)
}

func newFakeAppearance(current string) *fakeAppearance {
	return &fakeAppearance{current: current, subs: make(map[uuid.UUID]func(string))}
}

func (a *fakeAppearance) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *fakeAppearance) OnChanged(fn func(string)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := uuid.New()
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

func (a *fakeAppearance) fire(appearance string) {
	a.mu.Lock()
	a.current = appearance
	fns := make([]func(string), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(appearance)
	}
}

type fakeSettings struct {
	mu       sync.Mutex
	settings *domain.LocalSettings
	loadErr  error
	saved    []domain.ThemePreference
}

func (s *fakeSettings) Load(context.Context) (*domain.LocalSettings, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.settings, nil
}

func (s *fakeSettings) SaveThemePreference(_ context.Context, pref domain.ThemePreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, pref)
	return nil
}

func (s *fakeSettings) Close() error { return nil }

func (s *fakeSettings) savedPrefs() []domain.ThemePreference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ThemePreference(nil), s.saved...)
}

type fakeCrash struct {
	mu      sync.Mutex
	enabled []bool
}

func (c *fakeCrash) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = append(c.enabled, enabled)
}

type recordingDispatcher struct {
	mu      sync.Mutex
	actions []store.Action
}

func (d *recordingDispatcher) Dispatch(action store.Action) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, action)
}

func (d *recordingDispatcher) names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.actions))
	for _, a := range d.actions {
		out = append(out, a.Name())
	}
	return out
}

func (d *recordingDispatcher) lastOf(name string) store.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.actions) - 1; i >= 0; i-- {
		if d.actions[i].Name() == name {
			return d.actions[i]
		}
	}
	return nil
}

type nopRouter struct{}

func (nopRouter) HandlePush(context.Context, *domain.PushPayload) error { return nil }

type nopVideoConf struct{}

func (nopVideoConf) HandleInitial(context.Context, *domain.PushPayload) {}

type fixture struct {
	host       *fakeHost
	appearance *fakeAppearance
	settings   *fakeSettings
	crash      *fakeCrash
	dispatcher *recordingDispatcher
	clock      *clockwork.FakeClock
	orch       *Orchestrator
}

const testWindow = 100 * time.Millisecond

func newFixture(t *testing.T, host *fakeHost, appearance *fakeAppearance, settings *fakeSettings) *fixture {
	t.Helper()

	f := &fixture{
		host:       host,
		appearance: appearance,
		settings:   settings,
		crash:      &fakeCrash{},
		dispatcher: &recordingDispatcher{},
		clock:      clockwork.NewFakeClock(),
	}

	parser := deeplink.NewParser("appshell", "go.chat.example")
	arbitrator := startup.NewArbitrator(host, parser, nopRouter{}, nopVideoConf{}, f.dispatcher, f.clock, time.Second)

	f.orch = NewOrchestrator(Deps{
		Host:                 host,
		Appearance:           appearance,
		Settings:             settings,
		Crash:                f.crash,
		Themes:               theme.NewManager(appearance, host),
		Arbitrator:           arbitrator,
		Store:                f.dispatcher,
		Clock:                f.clock,
		DebounceWindow:       testWindow,
		EnableCrashReporting: true,
	})
	t.Cleanup(f.orch.Unmount)

	return f
}

func defaultSettings() *fakeSettings {
	return &fakeSettings{settings: &domain.LocalSettings{ThemePreference: theme.DefaultPreference()}}
}

func phoneMetrics() domain.DeviceMetrics {
	return domain.DeviceMetrics{Width: 375, Height: 812, Scale: 2, FontScale: 1}
}

func TestOrchestrator_MountPublishesInitialContexts(t *testing.T) {
	f := newFixture(t, newFakeHost(phoneMetrics(), false), newFakeAppearance(domain.ThemeLight), defaultSettings())

	f.orch.Mount(context.Background())

	themeCtx := f.orch.Theme()
	assert.Equal(t, domain.ThemeLight, themeCtx.Theme)
	assert.Equal(t, theme.DefaultPreference(), themeCtx.Preferences)
	assert.NotEmpty(t, themeCtx.Colors)
	require.NotNil(t, themeCtx.SetTheme)

	dims := f.orch.Dimensions()
	assert.Equal(t, 375.0, dims.Width)
	assert.Equal(t, 812.0, dims.Height)
	require.NotNil(t, dims.SetDimensions)

	assert.Contains(t, f.dispatcher.names(), "app_init_local_settings")
	assert.Contains(t, f.dispatcher.names(), "app_init")
	assert.Equal(t, []bool{true}, f.crash.enabled)
	assert.Equal(t, []string{domain.ThemeLight}, f.host.pushedThemes())
}

func TestOrchestrator_MountDegradesOnSettingsError(t *testing.T) {
	broken := &fakeSettings{loadErr: errors.New("disk gone")}
	f := newFixture(t, newFakeHost(phoneMetrics(), false), newFakeAppearance(domain.ThemeDark), broken)

	f.orch.Mount(context.Background())

	action := f.dispatcher.lastOf("app_init_local_settings")
	require.NotNil(t, action)
	init := action.(store.AppInitLocalSettings)
	assert.Equal(t, theme.DefaultPreference(), init.Settings.ThemePreference)

	// Automatic preference on a dark system resolves dark.
	assert.Equal(t, domain.ThemeDark, f.orch.Theme().Theme)
}

func TestOrchestrator_TabletPrimesMasterDetail(t *testing.T) {
	host := newFakeHost(domain.DeviceMetrics{Width: 820, Height: 1180, Scale: 2, FontScale: 1}, true)
	f := newFixture(t, host, newFakeAppearance(domain.ThemeLight), defaultSettings())

	f.orch.Mount(context.Background())

	action := f.dispatcher.lastOf("set_master_detail")
	require.NotNil(t, action)
	assert.True(t, action.(store.SetMasterDetail).Enabled)
}

func TestOrchestrator_DimensionEventUpdatesContextAndLayout(t *testing.T) {
	host := newFakeHost(domain.DeviceMetrics{Width: 820, Height: 1180, Scale: 2, FontScale: 1}, true)
	f := newFixture(t, host, newFakeAppearance(domain.ThemeLight), defaultSettings())

	f.orch.Mount(context.Background())

	host.fireDimensions(domain.DeviceMetrics{Width: 600, Height: 960, Scale: 2, FontScale: 1})
	// Wait for the debounce timer (the arbitrator's listener-delay timer is
	// the other waiter) before advancing, so the advance can fire it.
	require.NoError(t, f.clock.BlockUntilContext(context.Background(), 2))
	f.clock.Advance(testWindow)

	require.Eventually(t, func() bool {
		return f.orch.Dimensions().Width == 600.0
	}, time.Second, 10*time.Millisecond)

	action := f.dispatcher.lastOf("set_master_detail")
	require.NotNil(t, action)
	assert.False(t, action.(store.SetMasterDetail).Enabled)
}

func TestOrchestrator_SetDimensionsGoesThroughDebounce(t *testing.T) {
	f := newFixture(t, newFakeHost(phoneMetrics(), false), newFakeAppearance(domain.ThemeLight), defaultSettings())

	f.orch.Mount(context.Background())

	f.orch.Dimensions().SetDimensions(domain.DeviceMetrics{Width: 812, Height: 375, Scale: 2, FontScale: 1})
	assert.Equal(t, 375.0, f.orch.Dimensions().Width)

	// Wait for the debounce timer (the arbitrator's listener-delay timer is
	// the other waiter) before advancing, so the advance can fire it.
	require.NoError(t, f.clock.BlockUntilContext(context.Background(), 2))
	f.clock.Advance(testWindow)
	require.Eventually(t, func() bool {
		return f.orch.Dimensions().Width == 812.0
	}, time.Second, 10*time.Millisecond)
}

func TestOrchestrator_SetThemePersistsAndRepublishes(t *testing.T) {
	f := newFixture(t, newFakeHost(phoneMetrics(), false), newFakeAppearance(domain.ThemeLight), defaultSettings())

	f.orch.Mount(context.Background())

	var published []string
	f.orch.OnThemeChanged(func(ctx domain.ThemeContext) {
		published = append(published, ctx.Theme)
	})

	black := domain.ThemePreference{CurrentTheme: domain.PreferenceDark, DarkLevel: domain.ThemeBlack}
	f.orch.Theme().SetTheme(black)

	assert.Equal(t, domain.ThemeBlack, f.orch.Theme().Theme)
	assert.Equal(t, []string{domain.ThemeBlack}, published)
	assert.Equal(t, []domain.ThemePreference{black}, f.settings.savedPrefs())
	assert.Contains(t, f.host.pushedThemes(), domain.ThemeBlack)
}

func TestOrchestrator_SetThemeIdenticalPreferenceIsNoop(t *testing.T) {
	f := newFixture(t, newFakeHost(phoneMetrics(), false), newFakeAppearance(domain.ThemeLight), defaultSettings())

	f.orch.Mount(context.Background())
	f.orch.Theme().SetTheme(theme.DefaultPreference())

	assert.Empty(t, f.settings.savedPrefs())
}

func TestOrchestrator_AppearanceShiftRepublishesAutomaticTheme(t *testing.T) {
	f := newFixture(t, newFakeHost(phoneMetrics(), false), newFakeAppearance(domain.ThemeLight), defaultSettings())

	f.orch.Mount(context.Background())
	require.Equal(t, domain.ThemeLight, f.orch.Theme().Theme)

	f.appearance.fire(domain.ThemeDark)

	assert.Equal(t, domain.ThemeDark, f.orch.Theme().Theme)
	assert.Contains(t, f.host.pushedThemes(), domain.ThemeDark)
}

func TestOrchestrator_FixedPreferenceIgnoresAppearance(t *testing.T) {
	settings := &fakeSettings{settings: &domain.LocalSettings{
		ThemePreference: domain.ThemePreference{CurrentTheme: domain.PreferenceLight},
	}}
	f := newFixture(t, newFakeHost(phoneMetrics(), false), newFakeAppearance(domain.ThemeLight), settings)

	f.orch.Mount(context.Background())
	f.appearance.fire(domain.ThemeDark)

	assert.Equal(t, domain.ThemeLight, f.orch.Theme().Theme)
}

func TestOrchestrator_UnmountDetachesEverything(t *testing.T) {
	host := newFakeHost(phoneMetrics(), false)
	f := newFixture(t, host, newFakeAppearance(domain.ThemeLight), defaultSettings())

	f.orch.Mount(context.Background())
	require.Equal(t, 1, host.dimListenerCount())

	f.orch.Unmount()

	assert.Equal(t, 0, host.dimListenerCount())

	// Events after unmount change nothing.
	before := f.orch.Dimensions().Width
	host.fireDimensions(domain.DeviceMetrics{Width: 999, Height: 999, Scale: 2, FontScale: 1})
	f.clock.Advance(testWindow)
	assert.Equal(t, before, f.orch.Dimensions().Width)
}

func TestOrchestrator_MountIsIdempotent(t *testing.T) {
	f := newFixture(t, newFakeHost(phoneMetrics(), false), newFakeAppearance(domain.ThemeLight), defaultSettings())

	f.orch.Mount(context.Background())
	f.orch.Mount(context.Background())

	count := 0
	for _, name := range f.dispatcher.names() {
		if name == "app_init_local_settings" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
