// Package notification routes push payloads delivered by the host into
// store actions. Delivery transport is out of scope; this layer only
// understands the routing envelope embedded in the payload.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/divyanshu-patil/appshell/internal/domain"
	"github.com/divyanshu-patil/appshell/internal/store"
)

// envelope is the JSON routing envelope the push subsystem embeds in the
// payload's EJSON field.
type envelope struct {
	Host             string `json:"host"`
	RID              string `json:"rid"`
	Type             string `json:"type"`
	MessageID        string `json:"messageId"`
	CallID           string `json:"callId"`
	NotificationType string `json:"notificationType"`
}

const videoConfNotification = "videoconf"

func decodeEnvelope(payload *domain.PushPayload) (*envelope, error) {
	if payload == nil || payload.EJSON == "" {
		return nil, fmt.Errorf("push payload carries no envelope")
	}
	var env envelope
	if err := json.Unmarshal([]byte(payload.EJSON), &env); err != nil {
		return nil, fmt.Errorf("failed to decode push envelope: %w", err)
	}
	return &env, nil
}

// Router hands tapped push notifications to the store.
type Router struct {
	store store.Dispatcher
}

func NewRouter(st store.Dispatcher) *Router {
	return &Router{store: st}
}

// HandlePush dispatches a NotificationTapped action for the payload's room.
func (r *Router) HandlePush(_ context.Context, payload *domain.PushPayload) error {
	env, err := decodeEnvelope(payload)
	if err != nil {
		return err
	}

	r.store.Dispatch(store.NotificationTapped{
		Payload: payload,
		Room:    env.RID,
		Server:  env.Host,
	})
	return nil
}

// VideoConfChecker inspects the initial notification for an incoming
// video-conference call. It only ever falls through: whatever it finds, the
// startup arbitration continues past it.
type VideoConfChecker struct {
	store store.Dispatcher
}

func NewVideoConfChecker(st store.Dispatcher) *VideoConfChecker {
	return &VideoConfChecker{store: st}
}

// HandleInitial dispatches a VideoConfRing if the payload is a ringing
// video-conference notification. Anything else is ignored.
func (v *VideoConfChecker) HandleInitial(_ context.Context, payload *domain.PushPayload) {
	if payload == nil {
		return
	}

	env, err := decodeEnvelope(payload)
	if err != nil {
		slog.Debug("Initial notification has no usable envelope", "error", err)
		return
	}
	if env.NotificationType != videoConfNotification || env.CallID == "" {
		return
	}

	v.store.Dispatch(store.VideoConfRing{
		CallID: env.CallID,
		Room:   env.RID,
		Server: env.Host,
	})
}
