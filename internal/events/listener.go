package events

import "sync"

// Callback handles one delivered event. Returning an error aborts delivery to
// the listeners registered after this one.
type Callback func(e Event) error

// Listener maps event names to callbacks. Create one with Bus.NewListener;
// the zero value is not registered anywhere and receives nothing.
type Listener struct {
	bus *Bus

	mu        sync.Mutex
	callbacks map[string]Callback
}

// Listen stores cb under name, replacing any callback previously registered
// under the same name on this listener.
func (l *Listener) Listen(name string, cb Callback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.callbacks == nil {
		l.callbacks = make(map[string]Callback)
	}
	l.callbacks[name] = cb
}

// Mute removes the callback registered under name, if any.
func (l *Listener) Mute(name string) {
	l.mu.Lock()
	delete(l.callbacks, name)
	l.mu.Unlock()
}

// Close unregisters the listener from its bus. The listener keeps its
// callbacks and can be re-registered.
func (l *Listener) Close() {
	if l.bus != nil {
		l.bus.Unregister(l)
	}
}

func (l *Listener) callback(name string) Callback {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.callbacks[name]
}
