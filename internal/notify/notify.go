package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the severity of a notification
type Kind string

const (
	// Success confirms a completed action or announces a pushed record
	Success Kind = "success"
	// Error reports a failed action
	Error Kind = "error"
)

// Auto-dismiss delays
const (
	SuccessDelay = 3 * time.Second
	ErrorDelay   = 5 * time.Second
	PushDelay    = 5 * time.Second
)

// Notification is a transient message shown to the operator
type Notification struct {
	ID      string
	Kind    Kind
	Message string
	Shown   time.Time
}

// Notifier holds at most one notification at a time. A new one replaces the
// previous, and the timer of a replaced notification never dismisses its successor.
type Notifier struct {
	mu          sync.Mutex
	current     *Notification
	timer       *time.Timer
	subscribers []func(*Notification)
}

// New creates an empty notifier
func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers fn to be called with the current notification, or nil
// when it is dismissed
func (n *Notifier) Subscribe(fn func(*Notification)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers = append(n.subscribers, fn)
}

// Show replaces the current notification and dismisses it after delay.
// A zero delay keeps it until dismissed.
func (n *Notifier) Show(kind Kind, message string, delay time.Duration) Notification {
	note := Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: message,
		Shown:   time.Now(),
	}

	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = &note
	if delay > 0 {
		id := note.ID
		n.timer = time.AfterFunc(delay, func() { n.dismiss(id) })
	}
	subs := n.snapshotSubscribers()
	n.mu.Unlock()

	cp := note
	for _, fn := range subs {
		fn(&cp)
	}
	return note
}

// Success shows a success message with the default delay
func (n *Notifier) Success(message string) Notification {
	return n.Show(Success, message, SuccessDelay)
}

// Error shows an error message with the default delay
func (n *Notifier) Error(message string) Notification {
	return n.Show(Error, message, ErrorDelay)
}

// Push shows a live-update announcement
func (n *Notifier) Push(message string) Notification {
	return n.Show(Success, message, PushDelay)
}

// Current returns the visible notification, if any
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Dismiss hides the current notification
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	id := ""
	if n.current != nil {
		id = n.current.ID
	}
	n.mu.Unlock()
	if id != "" {
		n.dismiss(id)
	}
}

// dismiss clears the notification only if it is still the one identified by id
func (n *Notifier) dismiss(id string) {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
	subs := n.snapshotSubscribers()
	n.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
}

func (n *Notifier) snapshotSubscribers() []func(*Notification) {
	subs := make([]func(*Notification), len(n.subscribers))
	copy(subs, n.subscribers)
	return subs
}
