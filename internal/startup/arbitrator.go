// Package startup arbitrates the competing entry intents at process start:
// push notification, deep link, or a plain app launch.
package startup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/divyanshu-patil/appshell/internal/deeplink"
	"github.com/divyanshu-patil/appshell/internal/domain"
	"github.com/divyanshu-patil/appshell/internal/metrics"
	"github.com/divyanshu-patil/appshell/internal/store"
)

// DefaultListenerDelay guards against the synchronous initial-URL check
// racing an event-based duplicate delivery of the same URL. Tunable, not
// load-bearing.
const DefaultListenerDelay = 5 * time.Second

// VideoConfChecker inspects the initial notification for an incoming call.
// It never short-circuits the arbitration.
type VideoConfChecker interface {
	HandleInitial(ctx context.Context, payload *domain.PushPayload)
}

// Arbitrator resolves the launch intent exactly once per process. The
// resolution is an ordered chain where the first step that recognizes its
// input stops everything after it.
type Arbitrator struct {
	host          domain.Host
	parser        *deeplink.Parser
	router        domain.NotificationRouter
	videoConf     VideoConfChecker
	store         store.Dispatcher
	clock         clockwork.Clock
	listenerDelay time.Duration

	once sync.Once

	mu                sync.Mutex
	closed            bool
	delayTimer        clockwork.Timer
	removeURLListener func()
}

func NewArbitrator(host domain.Host, parser *deeplink.Parser, router domain.NotificationRouter, videoConf VideoConfChecker, st store.Dispatcher, clock clockwork.Clock, listenerDelay time.Duration) *Arbitrator {
	if listenerDelay <= 0 {
		listenerDelay = DefaultListenerDelay
	}
	return &Arbitrator{
		host:          host,
		parser:        parser,
		router:        router,
		videoConf:     videoConf,
		store:         st,
		clock:         clock,
		listenerDelay: listenerDelay,
	}
}

// Run performs the arbitration and schedules the delayed recurring
// deep-link listener. Subsequent calls are no-ops.
func (a *Arbitrator) Run(ctx context.Context) {
	a.once.Do(func() {
		a.resolve(ctx)
		a.scheduleURLListener()
	})
}

// resolve walks the priority chain. Host-query failures are not
// distinguished from absence: both fall through to the next step, degrading
// to the default launch path rather than surfacing an error.
func (a *Arbitrator) resolve(ctx context.Context) {
	payload, err := a.host.PendingPushNotification(ctx)
	if err != nil {
		slog.Debug("Pending notification query failed", "error", err)
	}
	if payload != nil {
		if err := a.router.HandlePush(ctx, payload); err != nil {
			slog.Warn("Push notification routing failed", "error", err)
		}
		metrics.StartupResolutionsTotal.WithLabelValues("push").Inc()
		slog.Info("Launch resolved", "path", "push")
		return
	}

	if vc, err := a.host.InitialVideoConfNotification(ctx); err != nil {
		slog.Debug("Initial videoconf notification query failed", "error", err)
	} else if vc != nil {
		a.videoConf.HandleInitial(ctx, vc)
	}

	raw, err := a.host.InitialURL(ctx)
	if err != nil {
		slog.Debug("Initial URL query failed", "error", err)
	}
	if intent := a.parser.Parse(raw); intent != nil {
		a.store.Dispatch(store.DeepLinkOpened{Intent: intent})
		metrics.StartupResolutionsTotal.WithLabelValues("deeplink").Inc()
		slog.Info("Launch resolved", "path", "deeplink", "kind", intent.Kind)
		return
	}

	a.store.Dispatch(store.AppInit{})
	metrics.StartupResolutionsTotal.WithLabelValues("default").Inc()
	slog.Info("Launch resolved", "path", "default")
}

func (a *Arbitrator) scheduleURLListener() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.delayTimer = a.clock.AfterFunc(a.listenerDelay, func() {
		remove := a.host.OnURLOpened(a.onURLOpened)

		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			remove()
			return
		}
		a.removeURLListener = remove
		a.mu.Unlock()

		slog.Debug("Recurring deep-link listener armed", "delay", a.listenerDelay)
	})
}

func (a *Arbitrator) onURLOpened(raw string) {
	intent := a.parser.Parse(raw)
	if intent == nil {
		metrics.DeepLinkEventsTotal.WithLabelValues("rejected").Inc()
		return
	}
	metrics.DeepLinkEventsTotal.WithLabelValues("matched").Inc()
	a.store.Dispatch(store.DeepLinkOpened{Intent: intent})
}

// Close cancels the pending delay timer and detaches the recurring
// deep-link listener. In-flight host queries are left to finish on their
// own; their effects are simply irrelevant afterwards.
func (a *Arbitrator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	if a.delayTimer != nil {
		a.delayTimer.Stop()
		a.delayTimer = nil
	}
	if a.removeURLListener != nil {
		a.removeURLListener()
		a.removeURLListener = nil
	}
}
