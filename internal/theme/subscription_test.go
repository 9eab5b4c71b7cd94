package theme

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/divyanshu-patil/appshell/internal/domain"
)

// fakeAppearance is a controllable system appearance source.
type fakeAppearance struct {
	mu        sync.Mutex
	current   string
	listeners map[uuid.UUID]func(string)
}

func newFakeAppearance(current string) *fakeAppearance {
	return &fakeAppearance{current: current, listeners: make(map[uuid.UUID]func(string))}
}

func (f *fakeAppearance) Current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeAppearance) OnChanged(fn func(string)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakeAppearance) fire(appearance string) {
	f.mu.Lock()
	f.current = appearance
	fns := make([]func(string), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(appearance)
	}
}

func (f *fakeAppearance) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// fakeNative records SetNativeTheme calls.
type fakeNative struct {
	mu     sync.Mutex
	themes []string
}

func (f *fakeNative) SetNativeTheme(theme string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.themes = append(f.themes, theme)
}

func (f *fakeNative) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.themes...)
}

func automaticPref() domain.ThemePreference {
	return domain.ThemePreference{CurrentTheme: domain.PreferenceAutomatic, DarkLevel: domain.ThemeDark}
}

func TestManager_SubscribeDeliversOnAppearanceChange(t *testing.T) {
	source := newFakeAppearance(domain.ThemeLight)
	m := NewManager(source, &fakeNative{})

	var delivered []domain.ThemePreference
	m.Subscribe(automaticPref(), func(p domain.ThemePreference) { delivered = append(delivered, p) })

	source.fire(domain.ThemeDark)

	assert.Len(t, delivered, 1)
	assert.Equal(t, automaticPref(), delivered[0])
}

func TestManager_DoubleSubscribeFiresExactlyOnce(t *testing.T) {
	source := newFakeAppearance(domain.ThemeLight)
	m := NewManager(source, &fakeNative{})

	calls := 0
	onChange := func(domain.ThemePreference) { calls++ }

	m.Subscribe(automaticPref(), onChange)
	m.Subscribe(automaticPref(), onChange)

	source.fire(domain.ThemeDark)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, source.listenerCount())
}

func TestManager_UnsubscribeStopsDelivery(t *testing.T) {
	source := newFakeAppearance(domain.ThemeLight)
	m := NewManager(source, &fakeNative{})

	calls := 0
	sub := m.Subscribe(automaticPref(), func(domain.ThemePreference) { calls++ })

	m.Unsubscribe(sub)
	source.fire(domain.ThemeDark)

	assert.Zero(t, calls)
	assert.Zero(t, source.listenerCount())
}

func TestManager_UnsubscribeIsGuardedPerHandle(t *testing.T) {
	source := newFakeAppearance(domain.ThemeLight)
	m := NewManager(source, &fakeNative{})

	sub := m.Subscribe(automaticPref(), func(domain.ThemePreference) {})

	// Releasing the same handle twice must not panic or detach a successor.
	m.Unsubscribe(sub)
	m.Unsubscribe(sub)

	calls := 0
	m.Subscribe(automaticPref(), func(domain.ThemePreference) { calls++ })
	m.Unsubscribe(sub) // stale handle again

	source.fire(domain.ThemeDark)
	assert.Equal(t, 1, calls)
}

func TestManager_FixedPreferenceDoesNotListen(t *testing.T) {
	source := newFakeAppearance(domain.ThemeLight)
	m := NewManager(source, &fakeNative{})

	calls := 0
	pref := domain.ThemePreference{CurrentTheme: domain.PreferenceDark, DarkLevel: domain.ThemeDark}
	m.Subscribe(pref, func(domain.ThemePreference) { calls++ })

	source.fire(domain.ThemeDark)

	assert.Zero(t, calls)
	assert.Zero(t, source.listenerCount())
}

func TestManager_ReplaceSwitchesListenerState(t *testing.T) {
	source := newFakeAppearance(domain.ThemeLight)
	m := NewManager(source, &fakeNative{})

	m.Subscribe(automaticPref(), func(domain.ThemePreference) {})
	assert.Equal(t, 1, source.listenerCount())

	// Switching to a fixed preference must drop the appearance listener.
	m.Subscribe(domain.ThemePreference{CurrentTheme: domain.PreferenceLight}, func(domain.ThemePreference) {})
	assert.Zero(t, source.listenerCount())
}

func TestManager_PrimeSetsNativeThemeOnce(t *testing.T) {
	source := newFakeAppearance(domain.ThemeDark)
	native := &fakeNative{}
	m := NewManager(source, native)

	pref := automaticPref()
	m.Prime(pref)
	m.Prime(pref)
	m.Prime(domain.ThemePreference{CurrentTheme: domain.PreferenceLight})

	assert.Equal(t, []string{domain.ThemeDark}, native.calls())
}
