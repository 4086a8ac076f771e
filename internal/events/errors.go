package events

import "fmt"

// payloadError signals that a typed callback received an event whose first
// positional argument did not have the expected type.
type payloadError struct {
	event string
	want  string
	got   any
}

func (e payloadError) Error() string {
	if e.got == nil {
		return fmt.Sprintf("event %q: missing %s payload", e.event, e.want)
	}
	return fmt.Sprintf("event %q: payload is %T, want %s", e.event, e.got, e.want)
}

// IsPayloadMismatch reports whether err came from a typed callback that was
// fired with the wrong payload shape.
func IsPayloadMismatch(err error) bool {
	_, ok := err.(payloadError)
	return ok
}
