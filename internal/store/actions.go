package store

import "github.com/divyanshu-patil/appshell/internal/domain"

// Action is a fire-and-forget command applied by the store in dispatch
// order. Each logical event produces exactly one action.
type Action interface {
	isAction()
	Name() string
}

type baseAction struct{}

func (baseAction) isAction() {}

// AppInitLocalSettings carries the settings snapshot loaded at mount.
type AppInitLocalSettings struct {
	baseAction
	Settings *domain.LocalSettings
}

func (AppInitLocalSettings) Name() string { return "app_init_local_settings" }

// AppInit is the default launch path when no intent won the arbitration.
type AppInit struct {
	baseAction
}

func (AppInit) Name() string { return "app_init" }

// DeepLinkOpened carries a recognized launch intent.
type DeepLinkOpened struct {
	baseAction
	Intent *domain.LaunchIntent
}

func (DeepLinkOpened) Name() string { return "deep_link_opened" }

// SetMasterDetail toggles the two-pane layout mode.
type SetMasterDetail struct {
	baseAction
	Enabled bool
}

func (SetMasterDetail) Name() string { return "set_master_detail" }

// NotificationTapped carries a push notification handed off by the
// notification router.
type NotificationTapped struct {
	baseAction
	Payload *domain.PushPayload
	Room    string
	Server  string
}

func (NotificationTapped) Name() string { return "notification_tapped" }

// VideoConfRing signals an incoming video-conference call found in the
// initial notification. It never short-circuits startup arbitration.
type VideoConfRing struct {
	baseAction
	CallID string
	Room   string
	Server string
}

func (VideoConfRing) Name() string { return "videoconf_ring" }
