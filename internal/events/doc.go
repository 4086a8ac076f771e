// Package events implements the in-process event system used to decouple the
// streaming server from its collaborators. It is structured into small files
// by concern:
//
//   - bus.go: Bus (the listener registry) and the fire/emit operations.
//   - listener.go: Listener and callback registration.
//   - event.go: the Event value type and its constructors.
//   - typed.go: generic helpers for payload-typed callbacks.
//   - errors.go: error types and helpers (IsPayloadMismatch).
//
// A Bus is created explicitly and handed to producers and consumers; there is
// no package-level registry. Delivery is synchronous and ordered: Fire invokes
// matching callbacks on the calling goroutine in listener registration order,
// and stops at the first callback error (fail-fast, no isolation between
// listeners). Callbacks may register or unregister listeners; the change takes
// effect on the next fire.
package events
