package events

import "sync"

// Bus holds the ordered set of registered listeners. The zero value is not
// usable; create one with NewBus and pass it to anything that produces or
// consumes events.
type Bus struct {
	mu        sync.RWMutex
	listeners []*Listener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// NewListener constructs a listener and registers it on the bus in one step.
func (b *Bus) NewListener() *Listener {
	l := &Listener{bus: b, callbacks: make(map[string]Callback)}
	b.Register(l)
	return l
}

// Register appends l to the bus. Registering a listener that is already
// present is a no-op, so a listener appears at most once.
func (b *Bus) Register(l *Listener) {
	if l == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cur := range b.listeners {
		if cur == l {
			return
		}
	}
	b.listeners = append(b.listeners, l)
}

// Unregister removes l from the bus. Events fired afterwards never reach it.
// Unknown listeners are ignored.
func (b *Bus) Unregister(l *Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cur := range b.listeners {
		if cur == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Clear drops every listener from the bus.
func (b *Bus) Clear() {
	b.mu.Lock()
	b.listeners = nil
	b.mu.Unlock()
}

// Len reports the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Fire delivers e to every listener that has a callback registered under the
// event's name, in registration order, synchronously on the calling
// goroutine. The first callback error aborts delivery to the remaining
// listeners and is returned. Firing a name nobody listens for returns nil.
//
// Fire iterates a snapshot of the registry, so callbacks may register or
// unregister listeners; such changes are seen by the next Fire, not the
// current one.
func (b *Bus) Fire(e Event) error {
	b.mu.RLock()
	snapshot := make([]*Listener, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.RUnlock()

	for _, l := range snapshot {
		cb := l.callback(e.name)
		if cb == nil {
			continue
		}
		if err := cb(e); err != nil {
			return err
		}
	}
	return nil
}

// Emit constructs an event from name and args and fires it immediately.
func (b *Bus) Emit(name string, args ...any) error {
	return b.Fire(New(name, args...))
}
