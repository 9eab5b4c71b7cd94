// Package dimensions tracks the host window metrics and debounces the
// duplicate change events some hosts deliver for a single rotation or
// resize.
package dimensions

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/divyanshu-patil/appshell/internal/domain"
	"github.com/divyanshu-patil/appshell/internal/metrics"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second

	// DefaultQuiescenceWindow is how long a burst must stay quiet before the
	// last snapshot is applied.
	DefaultQuiescenceWindow = 100 * time.Millisecond
)

// trackerCmd is the command interface for the Tracker actor.
type trackerCmd interface{ isTrackerCmd() }

type baseTrackerCmd struct{}

func (baseTrackerCmd) isTrackerCmd() {}

type changedCmd struct {
	baseTrackerCmd
	metrics domain.DeviceMetrics
}

type currentCmd struct {
	baseTrackerCmd
	replyChannel chan domain.DeviceMetrics
}

type stopCmd struct {
	baseTrackerCmd
}

// Tracker holds the current device metrics. Change events within the
// quiescence window collapse to the last one; each accepted event replaces
// the stored metrics wholesale and invokes onAccept.
type Tracker struct {
	cmdCh    chan trackerCmd
	clock    clockwork.Clock
	window   time.Duration
	onAccept func(domain.DeviceMetrics)
	done     chan struct{}
}

// NewTracker seeds the tracker from the host's synchronous metrics query
// and starts its goroutine. onAccept runs on the tracker goroutine.
func NewTracker(seed domain.DeviceMetrics, window time.Duration, onAccept func(domain.DeviceMetrics), clock clockwork.Clock) *Tracker {
	if window <= 0 {
		window = DefaultQuiescenceWindow
	}
	t := &Tracker{
		cmdCh:    make(chan trackerCmd, 64),
		clock:    clock,
		window:   window,
		onAccept: onAccept,
		done:     make(chan struct{}),
	}
	go t.run(seed)
	return t
}

// Changed is the host callback for dimension change events.
func (t *Tracker) Changed(m domain.DeviceMetrics) {
	t.cmdCh <- changedCmd{metrics: m}
}

// Current returns the last accepted metrics snapshot. Returns the zero
// value if the command times out.
func (t *Tracker) Current() domain.DeviceMetrics {
	replyCh := make(chan domain.DeviceMetrics, 1)
	t.cmdCh <- currentCmd{replyChannel: replyCh}

	timer := t.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case m := <-replyCh:
		return m
	case <-timer.Chan():
		slog.Warn("Tracker current timed out", "timeout", commandTimeout)
		return domain.DeviceMetrics{}
	}
}

// Stop shuts the tracker down, discarding any pending debounced event.
func (t *Tracker) Stop() {
	t.cmdCh <- stopCmd{}

	timer := t.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-t.done:
	case <-timer.Chan():
		slog.Warn("Tracker stop timeout exceeded, forcing exit", "timeout", stopTimeout)
		close(t.done)
	}
}

func (t *Tracker) run(seed domain.DeviceMetrics) {
	defer close(t.done)

	current := seed
	var pending domain.DeviceMetrics
	var timer clockwork.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case cmd := <-t.cmdCh:
			switch c := cmd.(type) {
			case changedCmd:
				if timer != nil {
					// A burst: the previous pending snapshot is superseded.
					timer.Stop()
					metrics.DimensionEventsTotal.WithLabelValues("coalesced").Inc()
				}
				pending = c.metrics
				timer = t.clock.NewTimer(t.window)
				timerCh = timer.Chan()
			case currentCmd:
				c.replyChannel <- current
			case stopCmd:
				if timer != nil {
					timer.Stop()
				}
				return
			default:
				slog.Warn("Tracker received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			current = pending
			metrics.DimensionEventsTotal.WithLabelValues("accepted").Inc()
			slog.Debug("Dimensions accepted", "width", current.Width, "height", current.Height)
			if t.onAccept != nil {
				t.onAccept(current)
			}
		}
	}
}
