package api

import (
	"sync"
	"time"

	"leadgen-dashboard/internal/notify"
	"leadgen-dashboard/internal/wizard"
	"leadgen-dashboard/internal/ws"
)

// Broadcaster pushes dashboard events to connected websocket clients.
type Broadcaster interface {
	BroadcastEvent(eventType string, data interface{})
}

// Workspace is the per-admin wizard and its notification slot.
type Workspace struct {
	AdminID  string
	Wizard   *wizard.Machine
	Notifier *notify.Notifier
}

// WizardEvent is the payload of ws.EventWizardState.
type WizardEvent struct {
	AdminID string       `json:"admin_id"`
	State   wizard.State `json:"state"`
}

// NotificationEvent is the payload of the notification events. Notification
// is nil for ws.EventNotificationDismissed.
type NotificationEvent struct {
	AdminID      string               `json:"admin_id"`
	Notification *notify.Notification `json:"notification"`
}

// Workspaces lazily creates one Workspace per admin.
type Workspaces struct {
	mu           sync.Mutex
	items        map[string]*Workspace
	trigger      wizard.Trigger
	hub          Broadcaster
	dismissAfter time.Duration
	opts         []wizard.Option
}

func NewWorkspaces(trigger wizard.Trigger, hub Broadcaster, dismissAfter time.Duration, opts ...wizard.Option) *Workspaces {
	return &Workspaces{
		items:        make(map[string]*Workspace),
		trigger:      trigger,
		hub:          hub,
		dismissAfter: dismissAfter,
		opts:         opts,
	}
}

func (w *Workspaces) Get(adminID string) *Workspace {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.items[adminID]; ok {
		return existing
	}

	opts := append([]wizard.Option{}, w.opts...)
	opts = append(opts, wizard.WithObserver(func(s wizard.State) {
		w.broadcast(ws.EventWizardState, WizardEvent{AdminID: adminID, State: s})
	}))
	space := &Workspace{
		AdminID: adminID,
		Wizard:  wizard.New(w.trigger, opts...),
		Notifier: notify.New(w.dismissAfter, func(n *notify.Notification) {
			event := ws.EventNotification
			if n == nil {
				event = ws.EventNotificationDismissed
			}
			w.broadcast(event, NotificationEvent{AdminID: adminID, Notification: n})
		}),
	}
	w.items[adminID] = space
	return space
}

// Drop discards the admin's workspace, cancelling any pending dismissal.
func (w *Workspaces) Drop(adminID string) {
	w.mu.Lock()
	space, ok := w.items[adminID]
	delete(w.items, adminID)
	w.mu.Unlock()

	if ok {
		space.Notifier.Close()
	}
}

// Close releases every workspace.
func (w *Workspaces) Close() {
	w.mu.Lock()
	items := w.items
	w.items = make(map[string]*Workspace)
	w.mu.Unlock()

	for _, space := range items {
		space.Notifier.Close()
	}
}

func (w *Workspaces) broadcast(event string, data interface{}) {
	if w.hub != nil {
		w.hub.BroadcastEvent(event, data)
	}
}
