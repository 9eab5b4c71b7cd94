package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/divyanshu-patil/appshell/internal/domain"
	"github.com/divyanshu-patil/appshell/internal/metrics"
)

const (
	// Performance-critical constants for inbound event flow.
	eventRateLimit = 50  // events per second
	eventRateBurst = 100 // burst allowance
)

// Inbound event names.
const (
	eventHello             = "hello"
	eventURLOpened         = "urlopened"
	eventDimensionsChanged = "dimensionschanged"
	eventAppearanceChanged = "appearancechanged"
	outboundSetNativeTheme = "setnativetheme"
)

// eventFrame is the wire format for frames in both directions.
type eventFrame struct {
	Event      string                `json:"event"`
	URL        string                `json:"url,omitempty"`
	Metrics    *domain.DeviceMetrics `json:"metrics,omitempty"`
	Appearance string                `json:"appearance,omitempty"`
	Theme      string                `json:"theme,omitempty"`

	// hello-only fields
	InitialURL string              `json:"initialUrl,omitempty"`
	Push       *domain.PushPayload `json:"push,omitempty"`
	VideoConf  *domain.PushPayload `json:"videoConf,omitempty"`
	Tablet     bool                `json:"tablet,omitempty"`
}

// defaultMetrics answers the synchronous seed query before any host has
// announced itself.
var defaultMetrics = domain.DeviceMetrics{Width: 375, Height: 812, Scale: 2, FontScale: 1}

// HostBridge implements domain.Host and domain.AppearanceSource over a
// WebSocket connection from the native host.
type HostBridge struct {
	limiter *rate.Limiter

	ready     chan struct{}
	readyOnce sync.Once

	mu         sync.RWMutex
	initialURL string
	push       *domain.PushPayload
	videoConf  *domain.PushPayload
	metrics    domain.DeviceMetrics
	tablet     bool
	appearance string

	conn         *websocket.Conn
	pendingTheme string

	urlSubs map[uuid.UUID]func(string)
	dimSubs map[uuid.UUID]func(domain.DeviceMetrics)
	appSubs map[uuid.UUID]func(string)
}

func NewHostBridge() *HostBridge {
	return &HostBridge{
		limiter:    rate.NewLimiter(eventRateLimit, eventRateBurst),
		ready:      make(chan struct{}),
		metrics:    defaultMetrics,
		appearance: domain.ThemeLight,
		urlSubs:    make(map[uuid.UUID]func(string)),
		dimSubs:    make(map[uuid.UUID]func(domain.DeviceMetrics)),
		appSubs:    make(map[uuid.UUID]func(string)),
	}
}

// --- domain.Host ---

func (b *HostBridge) InitialURL(ctx context.Context) (string, error) {
	if err := b.awaitHello(ctx); err != nil {
		return "", err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialURL, nil
}

func (b *HostBridge) PendingPushNotification(ctx context.Context) (*domain.PushPayload, error) {
	if err := b.awaitHello(ctx); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.push, nil
}

func (b *HostBridge) InitialVideoConfNotification(ctx context.Context) (*domain.PushPayload, error) {
	if err := b.awaitHello(ctx); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.videoConf, nil
}

func (b *HostBridge) WindowMetrics() domain.DeviceMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *HostBridge) IsTablet() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tablet
}

func (b *HostBridge) OnURLOpened(fn func(string)) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	b.urlSubs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.urlSubs, id)
	}
}

func (b *HostBridge) OnDimensionsChanged(fn func(domain.DeviceMetrics)) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	b.dimSubs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.dimSubs, id)
	}
}

// SetNativeTheme pushes the resolved theme to the host. If no host is
// connected yet the theme is held and flushed on the next attach.
func (b *HostBridge) SetNativeTheme(theme string) {
	b.mu.Lock()
	conn := b.conn
	if conn == nil {
		b.pendingTheme = theme
	}
	b.mu.Unlock()

	if conn == nil {
		return
	}
	if err := conn.WriteJSON(eventFrame{Event: outboundSetNativeTheme, Theme: theme}); err != nil {
		slog.Warn("Failed to push native theme", "error", err)
	}
}

// --- domain.AppearanceSource ---

func (b *HostBridge) Current() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.appearance
}

func (b *HostBridge) OnChanged(fn func(string)) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	b.appSubs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.appSubs, id)
	}
}

// Connected reports whether a host is currently attached.
func (b *HostBridge) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.conn != nil
}

// HandleConn serves one host connection until it drops. Only one host is
// expected; a newer connection replaces the previous one.
func (b *HostBridge) HandleConn(conn *websocket.Conn) {
	b.attach(conn)
	defer b.detach(conn)

	for {
		var f eventFrame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("Host connection dropped", "error", err)
			}
			return
		}
		b.handleFrame(f)
	}
}

func (b *HostBridge) attach(conn *websocket.Conn) {
	b.mu.Lock()
	old := b.conn
	b.conn = conn
	pending := b.pendingTheme
	b.pendingTheme = ""
	b.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	metrics.BridgeConnectedHosts.Set(1)
	slog.Info("Host attached")

	if pending != "" {
		if err := conn.WriteJSON(eventFrame{Event: outboundSetNativeTheme, Theme: pending}); err != nil {
			slog.Warn("Failed to flush pending native theme", "error", err)
		}
	}
}

func (b *HostBridge) detach(conn *websocket.Conn) {
	b.mu.Lock()
	if b.conn == conn {
		b.conn = nil
		metrics.BridgeConnectedHosts.Set(0)
		slog.Info("Host detached")
	}
	b.mu.Unlock()
	_ = conn.Close()
}

func (b *HostBridge) handleFrame(f eventFrame) {
	metrics.BridgeEventsTotal.WithLabelValues(f.Event).Inc()

	if f.Event != eventHello && !b.limiter.Allow() {
		metrics.BridgeEventsDroppedTotal.Inc()
		slog.Warn("Host event dropped by rate limiter", "event", f.Event)
		return
	}

	switch f.Event {
	case eventHello:
		b.handleHello(f)

	case eventURLOpened:
		for _, fn := range b.urlSubscribers() {
			fn(f.URL)
		}

	case eventDimensionsChanged:
		if f.Metrics == nil {
			return
		}
		b.mu.Lock()
		b.metrics = *f.Metrics
		b.mu.Unlock()
		for _, fn := range b.dimSubscribers() {
			fn(*f.Metrics)
		}

	case eventAppearanceChanged:
		b.mu.Lock()
		b.appearance = f.Appearance
		b.mu.Unlock()
		for _, fn := range b.appSubscribers() {
			fn(f.Appearance)
		}

	default:
		slog.Warn("Host bridge received unknown event", "event", fmt.Sprintf("%q", f.Event))
	}
}

func (b *HostBridge) handleHello(f eventFrame) {
	b.mu.Lock()
	b.initialURL = f.InitialURL
	b.push = f.Push
	b.videoConf = f.VideoConf
	if f.Metrics != nil {
		b.metrics = *f.Metrics
	}
	b.tablet = f.Tablet
	if f.Appearance != "" {
		b.appearance = f.Appearance
	}
	b.mu.Unlock()

	b.readyOnce.Do(func() { close(b.ready) })
	slog.Info("Host hello received", "tablet", f.Tablet, "appearance", f.Appearance)
}

func (b *HostBridge) awaitHello(ctx context.Context) error {
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *HostBridge) urlSubscribers() []func(string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(string), 0, len(b.urlSubs))
	for _, fn := range b.urlSubs {
		out = append(out, fn)
	}
	return out
}

func (b *HostBridge) dimSubscribers() []func(domain.DeviceMetrics) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(domain.DeviceMetrics), 0, len(b.dimSubs))
	for _, fn := range b.dimSubs {
		out = append(out, fn)
	}
	return out
}

func (b *HostBridge) appSubscribers() []func(string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(string), 0, len(b.appSubs))
	for _, fn := range b.appSubs {
		out = append(out, fn)
	}
	return out
}
