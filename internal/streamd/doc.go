// Package streamd implements the TCP side of the daemon: the dual-listener
// server and the per-client handlers. It is structured into small files by
// concern:
//
//   - server.go: Server type, accept loops, connection pairing, status.
//   - client.go: clientHandler, the communication and streaming loops.
//   - wire.go: framing helpers (little-endian length words, chunking).
//   - events.go: event names and payload types fired on the bus.
//   - metrics.go: prometheus collectors and the metrics bus listener.
//
// A client dials both ports and opens each connection by sending its 6-byte
// id. The server keys connections by "id@ip" and hands a paired set to a
// clientHandler, which serves search requests on the communication channel
// and pushes audio packets on the streaming channel. Handler lifecycle is
// announced on the event bus; the server itself listens for client.removed to
// drop finished handlers from its session table.
package streamd
