package events

// Event is a named occurrence carrying a positional payload (Args) and a
// keyed payload (Fields). The name is fixed at construction.
type Event struct {
	name   string
	Args   []any
	Fields map[string]any
}

// New constructs an event with the given name and positional arguments.
func New(name string, args ...any) Event {
	return Event{name: name, Args: args}
}

// Name returns the event name.
func (e Event) Name() string { return e.name }

// WithField returns a copy of the event with one keyed value added.
func (e Event) WithField(key string, value any) Event {
	fields := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	e.Fields = fields
	return e
}

// WithFields returns a copy of the event with all given keyed values added.
func (e Event) WithFields(fields map[string]any) Event {
	merged := make(map[string]any, len(e.Fields)+len(fields))
	for k, v := range e.Fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	e.Fields = merged
	return e
}
