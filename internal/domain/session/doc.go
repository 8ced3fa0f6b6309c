// Package session implements document question/answer sessions.
//
// A session is opened from a workspace navigation carrying a content
// reference and an optional document id. Its content is resolved once at
// open; after that the session only appends to its transcript.
// Submissions on one session are serialized, so transcript order is
// submission order. Closing a session drops answers still in flight.
package session
