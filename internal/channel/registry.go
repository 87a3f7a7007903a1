package channel

import (
	"sync"

	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/models"
)

// AllEvents subscribes a handler to every inbound event type.
const AllEvents = "*"

// Handler receives one inbound message. Handlers run on the channel's read
// goroutine and must not block for long.
type Handler func(msg models.Message)

// StatusHandler receives every connection status change in order.
type StatusHandler func(status models.ConnectionStatus)

// registry holds subscriptions. Each subscription has its own id so the
// same function value may be registered twice and removed independently.
type registry struct {
	mu        sync.RWMutex
	nextID    uint64
	handlers  map[string]map[uint64]Handler
	observers map[uint64]StatusHandler
	connected map[uint64]func()
}

func newRegistry() *registry {
	return &registry{
		handlers:  make(map[string]map[uint64]Handler),
		observers: make(map[uint64]StatusHandler),
		connected: make(map[uint64]func()),
	}
}

func (r *registry) addHandler(eventType string, fn Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	byID, ok := r.handlers[eventType]
	if !ok {
		byID = make(map[uint64]Handler)
		r.handlers[eventType] = byID
	}
	byID[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.handlers[eventType], id)
			if len(r.handlers[eventType]) == 0 {
				delete(r.handlers, eventType)
			}
		})
	}
}

func (r *registry) addObserver(fn StatusHandler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.observers[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.observers, id)
	}
}

func (r *registry) addConnected(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.connected[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.connected, id)
	}
}

// dispatch delivers msg to the handlers of msg.Type and to AllEvents
// handlers. A panicking handler is logged and does not affect the others.
func (r *registry) dispatch(msg models.Message, log *logger.Logger) {
	r.mu.RLock()
	targets := make([]Handler, 0, len(r.handlers[msg.Type])+len(r.handlers[AllEvents]))
	for _, fn := range r.handlers[msg.Type] {
		targets = append(targets, fn)
	}
	if msg.Type != AllEvents {
		for _, fn := range r.handlers[AllEvents] {
			targets = append(targets, fn)
		}
	}
	r.mu.RUnlock()

	for _, fn := range targets {
		safeCall(log, msg.Type, func() { fn(msg) })
	}
}

func (r *registry) notifyStatus(status models.ConnectionStatus, log *logger.Logger) {
	r.mu.RLock()
	targets := make([]StatusHandler, 0, len(r.observers))
	for _, fn := range r.observers {
		targets = append(targets, fn)
	}
	r.mu.RUnlock()

	for _, fn := range targets {
		safeCall(log, "status", func() { fn(cloneStatus(status)) })
	}
}

func (r *registry) notifyConnected(log *logger.Logger) {
	r.mu.RLock()
	targets := make([]func(), 0, len(r.connected))
	for _, fn := range r.connected {
		targets = append(targets, fn)
	}
	r.mu.RUnlock()

	for _, fn := range targets {
		safeCall(log, "connected", fn)
	}
}

func safeCall(log *logger.Logger, event string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("event", event).Interface("panic", rec).Msg("subscriber panicked")
		}
	}()
	fn()
}

// Subscribe registers fn for messages of eventType, or for every message
// when eventType is [AllEvents]. The returned function removes this
// registration only and is safe to call more than once.
func (c *Channel) Subscribe(eventType string, fn Handler) (unsubscribe func()) {
	return c.registry.addHandler(eventType, fn)
}

// Observe registers fn for status changes.
func (c *Channel) Observe(fn StatusHandler) (unsubscribe func()) {
	return c.registry.addObserver(fn)
}

// OnConnected registers fn for the "connected" announcement. It fires on
// the first successful open after Connect and not again for reconnects
// until Disconnect has been called.
func (c *Channel) OnConnected(fn func()) (unsubscribe func()) {
	return c.registry.addConnected(fn)
}

type notification struct {
	status    models.ConnectionStatus
	connected bool
}

func (c *Channel) enqueueLocked(n notification) {
	c.pending = append(c.pending, n)
}

// flush delivers queued notifications outside c.mu. Only one goroutine
// drains at a time, so observers see transitions in the order they were
// made even when callbacks re-enter the channel.
func (c *Channel) flush() {
	c.mu.Lock()
	if c.flushing {
		c.mu.Unlock()
		return
	}
	c.flushing = true

	for len(c.pending) > 0 {
		n := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		if n.connected {
			c.registry.notifyConnected(c.logger)
		} else {
			c.registry.notifyStatus(n.status, c.logger)
		}

		c.mu.Lock()
	}

	c.pending = nil
	c.flushing = false
	c.mu.Unlock()
}
