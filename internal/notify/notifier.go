// Package notify holds the single transient notification shown to an
// operator. A new notification replaces the current one and cancels its
// pending dismissal.
package notify

import (
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notification struct {
	ID        uint64    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is safe for concurrent use. onChange is called with the new
// notification, or nil after a dismissal. Calls are serialized and a change
// overtaken by a newer one is never reported after it, so the last call always
// matches Current. onChange must not call Show or Dismiss.
type Notifier struct {
	mu       sync.Mutex
	current  *Notification
	timer    *time.Timer
	seq      uint64
	rev      uint64
	delay    time.Duration
	onChange func(*Notification)

	emitMu  sync.Mutex
	emitted uint64
}

func New(delay time.Duration, onChange func(*Notification)) *Notifier {
	return &Notifier{delay: delay, onChange: onChange}
}

// Show replaces the current notification and schedules its dismissal.
func (n *Notifier) Show(level Level, message string) Notification {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	id := n.seq
	note := Notification{ID: id, Level: level, Message: message, CreatedAt: time.Now()}
	n.current = &note
	n.timer = time.AfterFunc(n.delay, func() { n.expire(id) })
	n.rev++
	rev := n.rev
	n.mu.Unlock()

	n.changed(rev, &note)
	return note
}

func (n *Notifier) Success(message string) Notification {
	return n.Show(LevelSuccess, message)
}

func (n *Notifier) Error(message string) Notification {
	return n.Show(LevelError, message)
}

// Current returns the visible notification, if any.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Dismiss clears the current notification immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if n.current == nil {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
	n.rev++
	rev := n.rev
	n.mu.Unlock()

	n.changed(rev, nil)
}

// expire dismisses notification id unless it has been replaced. A timer
// stopped too late to prevent its callback ends up here with a stale id.
func (n *Notifier) expire(id uint64) {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	n.rev++
	rev := n.rev
	n.mu.Unlock()

	n.changed(rev, nil)
}

// Close stops any pending dismissal timer.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// changed reports revision rev unless a later revision was already reported.
func (n *Notifier) changed(rev uint64, note *Notification) {
	if n.onChange == nil {
		return
	}
	n.emitMu.Lock()
	defer n.emitMu.Unlock()
	if rev <= n.emitted {
		return
	}
	n.emitted = rev
	n.onChange(note)
}
