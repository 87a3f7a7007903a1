// Package observer reflects the real-time channel's state for a terminal
// UI. It never drives the channel; it only listens.
package observer

import (
	"sync"

	"github.com/MKhiriev/farmlink/internal/channel"
	"github.com/MKhiriev/farmlink/models"
)

const (
	ToastConnected    = "Live updates connected"
	ToastReconnecting = "Connection lost, reconnecting…"
)

// StatusSource is the part of *channel.Channel the observer listens to.
type StatusSource interface {
	Status() models.ConnectionStatus
	Observe(fn channel.StatusHandler) (unsubscribe func())
	OnConnected(fn func()) (unsubscribe func())
}

// StatusObserver keeps the latest connection status and a one-shot toast.
// The toast for a lost connection is raised once per outage; the connected
// toast follows the channel's own announcement, so reconnects stay quiet.
type StatusObserver struct {
	mu      sync.Mutex
	status  models.ConnectionStatus
	toast   string
	outage  bool
	updates chan models.ConnectionStatus
	closed  bool

	unsubscribe []func()
}

// NewStatusObserver starts listening to src immediately.
func NewStatusObserver(src StatusSource) *StatusObserver {
	o := &StatusObserver{
		status:  src.Status(),
		updates: make(chan models.ConnectionStatus, 1),
	}
	o.unsubscribe = append(o.unsubscribe,
		src.Observe(o.onStatus),
		src.OnConnected(o.onConnected),
	)
	return o
}

func (o *StatusObserver) onStatus(s models.ConnectionStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	o.status = s
	switch s.State {
	case models.StateReconnecting:
		if !o.outage {
			o.outage = true
			o.toast = ToastReconnecting
		}
	case models.StateConnected, models.StateDisconnected:
		o.outage = false
	}

	// latest status wins; a slow reader only ever sees the newest one
	select {
	case <-o.updates:
	default:
	}
	o.updates <- s
}

func (o *StatusObserver) onConnected() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.toast = ToastConnected
}

// Status returns the last status seen.
func (o *StatusObserver) Status() models.ConnectionStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// TakeToast returns the pending toast and clears it.
func (o *StatusObserver) TakeToast() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	toast := o.toast
	o.toast = ""
	return toast, toast != ""
}

// Updates delivers status changes. It holds at most one pending value and is
// closed by Close.
func (o *StatusObserver) Updates() <-chan models.ConnectionStatus {
	return o.updates
}

// Badge renders the current state as a short coloured label.
func (o *StatusObserver) Badge() string {
	return Badge(o.Status())
}

// Close stops listening and closes Updates.
func (o *StatusObserver) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.updates)
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	o.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
}
