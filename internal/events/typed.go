package events

import "reflect"

// Listen registers a callback on l whose payload is the event's first
// positional argument, asserted to T. Firing the event with a missing or
// differently-typed first argument fails the Fire call with an error
// recognized by IsPayloadMismatch, so payload-shape bugs surface as typed
// errors instead of silent misses.
func Listen[T any](l *Listener, name string, fn func(T) error) {
	l.Listen(name, func(e Event) error {
		if len(e.Args) == 0 {
			return payloadError{event: name, want: typeName[T]()}
		}
		v, ok := e.Args[0].(T)
		if !ok {
			return payloadError{event: name, want: typeName[T](), got: e.Args[0]}
		}
		return fn(v)
	})
}

func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Ptr {
		return "*" + t.Elem().String()
	}
	return t.String()
}
