// Package ws streams the rendered workspace over a WebSocket.
//
// On connect the client receives the current workspace; after that every
// applied workspace action produces a fresh "workspace" frame. Frames carry
// whole views, so a slow client only ever misses intermediate states.
//
// Client messages:
//   - {"type": "ping"}    answered with a "pong" frame
//   - {"type": "refresh"} answered with the current workspace
package ws
