package streamd

// Event names fired on the bus. Each carries the payload type documented
// next to it as the first positional argument.
const (
	// EventClientConnected fires when both channels of a client are paired.
	// Payload: ClientConnected.
	EventClientConnected = "client.connected"
	// EventClientRemoved fires when both handler loops have ended.
	// Payload: *clientHandler; the server uses it to drop the session.
	EventClientRemoved = "client.removed"
	// EventSearchHandled fires after a search response has been sent.
	// Payload: SearchHandled.
	EventSearchHandled = "search.handled"
	// EventStreamStarted fires when a song transfer begins.
	// Payload: StreamStarted.
	EventStreamStarted = "stream.started"
	// EventStreamFinished fires when a song transfer ends, aborted or not.
	// Payload: StreamFinished.
	EventStreamFinished = "stream.finished"
)

// ClientConnected announces a newly paired client.
type ClientConnected struct {
	ClientID string
}

// SearchHandled reports one served search request.
type SearchHandled struct {
	ClientID string
	Term     string
	Results  int
}

// StreamStarted reports the beginning of a song transfer.
type StreamStarted struct {
	ClientID string
	SongID   int64
	Packets  int
}

// StreamFinished reports the end of a song transfer.
type StreamFinished struct {
	ClientID string
	SongID   int64
	Bytes    int64
	Aborted  bool
}
