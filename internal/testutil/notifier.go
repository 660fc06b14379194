package testutil

import "sync"

// Notification is one recorded notifier call.
type Notification struct {
	Kind  string
	Email string
	Name  string
}

// Notifier records welcome and cancellation notifications.
type Notifier struct {
	mu   sync.Mutex
	sent []Notification
}

// NotifyWelcome records a welcome notification.
func (n *Notifier) NotifyWelcome(email, name string) {
	n.record("welcome", email, name)
}

// NotifyCancellation records a cancellation notification.
func (n *Notifier) NotifyCancellation(email, name string) {
	n.record("cancellation", email, name)
}

func (n *Notifier) record(kind, email, name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{Kind: kind, Email: email, Name: name})
}

// Sent returns a copy of the recorded notifications in call order.
func (n *Notifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}
