// Package backend is the HTTP client for the remote document backend.
//
// It covers login checks, folder and document listing, folder creation,
// document moves, binary downloads, uploads, logout and document queries.
// Requests share a cookie jar, pass through a rate limiter and a circuit
// breaker, and are never retried. Failures are returned as
// types.NetworkError (no response) or types.BackendError (non-2xx status).
package backend
