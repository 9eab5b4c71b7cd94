package theme

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/divyanshu-patil/appshell/internal/domain"
	"github.com/divyanshu-patil/appshell/internal/metrics"
)

// NativeThemeSetter pushes the resolved theme down to the host so the
// platform chrome matches before any async callback fires.
type NativeThemeSetter interface {
	SetNativeTheme(theme string)
}

// Subscription is one armed preference subscription. Teardown is guarded by
// an active flag so a stale handle can be released safely.
type Subscription struct {
	id     uuid.UUID
	mu     sync.Mutex
	active bool
	cancel func()
}

// Manager keeps at most one subscription live. Replacing a subscription
// tears the old one down under the same lock that arms the new one, so
// there is no window in which both can deliver.
type Manager struct {
	mu        sync.Mutex
	source    domain.AppearanceSource
	native    NativeThemeSetter
	active    *Subscription
	primeOnce sync.Once
}

func NewManager(source domain.AppearanceSource, native NativeThemeSetter) *Manager {
	return &Manager{source: source, native: native}
}

// Prime performs the one-time synchronous native-theme side effect with the
// initial preference. Subsequent calls are no-ops.
func (m *Manager) Prime(pref domain.ThemePreference) {
	m.primeOnce.Do(func() {
		theme := Resolve(pref, m.source.Current())
		m.native.SetNativeTheme(theme)
		slog.Debug("Native theme primed", "theme", theme)
	})
}

// Subscribe arms a subscription for the given preference, replacing any
// live one. onChange receives the preference whenever the system appearance
// shifts; only automatic preferences listen at all, since fixed preferences
// cannot change with the system.
func (m *Manager) Subscribe(pref domain.ThemePreference, onChange func(domain.ThemePreference)) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.teardown(m.active)
	}

	sub := &Subscription{id: uuid.New(), active: true}
	if pref.CurrentTheme == domain.PreferenceAutomatic {
		sub.cancel = m.source.OnChanged(func(appearance string) {
			sub.mu.Lock()
			alive := sub.active
			sub.mu.Unlock()
			if !alive {
				return
			}
			metrics.ThemeChangesTotal.Inc()
			slog.Debug("System appearance changed", "appearance", appearance)
			onChange(pref)
		})
	}

	m.active = sub
	metrics.ThemeSubscriptionsActive.Set(1)
	return sub
}

// Unsubscribe tears a subscription down. Safe to call more than once per
// handle; only the first call does anything.
func (m *Manager) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.teardown(sub)
	if m.active == sub {
		m.active = nil
		metrics.ThemeSubscriptionsActive.Set(0)
	}
}

// teardown must be called with m.mu held.
func (m *Manager) teardown(sub *Subscription) {
	sub.mu.Lock()
	if !sub.active {
		sub.mu.Unlock()
		return
	}
	sub.active = false
	cancel := sub.cancel
	sub.cancel = nil
	sub.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
