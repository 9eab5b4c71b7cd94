package store

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
	depthInterval  = 1 * time.Second
)

// State is the store's view of the bootstrap phase. It is only ever read
// through Snapshot and only ever written by the store goroutine.
type State struct {
	Root                string               `json:"root"`
	MasterDetail        bool                 `json:"masterDetail"`
	Intent              *domain.LaunchIntent `json:"intent,omitempty"`
	LocalSettingsLoaded bool                 `json:"localSettingsLoaded"`
	RingingCallID       string               `json:"ringingCallId,omitempty"`
	LastAction          string               `json:"lastAction,omitempty"`
}

// Root phases.
const (
	RootLaunching    = "launching"
	RootApp          = "app"
	RootDeepLink     = "deeplink"
	RootNotification = "notification"
)

// storeCmd is the command interface for the Store actor.
type storeCmd interface{ isStoreCmd() }

type baseStoreCmd struct{}

func (baseStoreCmd) isStoreCmd() {}

type dispatchCmd struct {
	baseStoreCmd
	action Action
}

type snapshotCmd struct {
	baseStoreCmd
	replyChannel chan State
}

type stopCmd struct {
	baseStoreCmd
}

// Dispatcher is the dispatch-only view of the store handed to producers.
type Dispatcher interface {
	Dispatch(action Action)
}

// Store applies actions serially on a single goroutine.
type Store struct {
	cmdCh chan storeCmd
	clock clockwork.Clock
	state State
	done  chan struct{}
}

func New(clock clockwork.Clock) *Store {
	s := &Store{
		cmdCh: make(chan storeCmd, 256),
		clock: clock,
		state: State{Root: RootLaunching},
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Dispatch enqueues an action. Fire-and-forget: callers never observe a
// return value.
func (s *Store) Dispatch(action Action) {
	s.cmdCh <- dispatchCmd{action: action}
}

// Snapshot returns a copy of the current state. Returns the zero State if
// the command times out.
func (s *Store) Snapshot() State {
	replyCh := make(chan State, 1)
	s.cmdCh <- snapshotCmd{replyChannel: replyCh}

	timer := s.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case state := <-replyCh:
		return state
	case <-timer.Chan():
		slog.Warn("Store snapshot timed out", "timeout", commandTimeout)
		return State{}
	}
}

// Stop shuts the store down. Blocks until the goroutine has exited or the
// stop timeout is reached.
func (s *Store) Stop() {
	s.cmdCh <- stopCmd{}

	timer := s.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-s.done:
		slog.Info("Store stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Store stop timeout exceeded, forcing exit", "timeout", stopTimeout)
		close(s.done)
	}
}

func (s *Store) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Store panic recovered", "panic", r)
		}
	}()

	depthTicker := s.clock.NewTicker(depthInterval)
	defer depthTicker.Stop()
	defer close(s.done)

	for {
		select {
		case <-depthTicker.Chan():
			metrics.StoreCommandChannelDepth.Set(float64(len(s.cmdCh)))

		case cmd := <-s.cmdCh:
			switch c := cmd.(type) {
			case dispatchCmd:
				s.apply(c.action)
			case snapshotCmd:
				c.replyChannel <- s.state
			case stopCmd:
				return
			default:
				slog.Warn("Store received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}
		}
	}
}

func (s *Store) apply(action Action) {
	metrics.StoreActionsTotal.WithLabelValues(action.Name()).Inc()
	s.state.LastAction = action.Name()

	switch a := action.(type) {
	case AppInitLocalSettings:
		s.state.LocalSettingsLoaded = true
	case AppInit:
		s.state.Root = RootApp
	case DeepLinkOpened:
		s.state.Root = RootDeepLink
		s.state.Intent = a.Intent
	case SetMasterDetail:
		s.state.MasterDetail = a.Enabled
	case NotificationTapped:
		s.state.Root = RootNotification
	case VideoConfRing:
		s.state.RingingCallID = a.CallID
	default:
		slog.Warn("Store received unknown action", "action", action.Name())
	}

	slog.Debug("Store applied action", "action", action.Name(), "root", s.state.Root)
}
