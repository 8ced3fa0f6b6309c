// Package server wires docdesk together and runs the local API.
//
// Construction order:
//  1. Logger from configuration
//  2. Metrics registry and tracer
//  3. Backend client (rate limiter, circuit breaker, cookie jar)
//  4. Content reference store, workspace organizer, session manager
//  5. Gin router with recovery, tracing, metrics, CORS and rate limiting
//  6. Workspace stream and gzip response compression
//
// Example Usage:
//
//	srv, err := server.NewServer(cfg)
//	go srv.Run()
//	<-ctx.Done()
//	srv.Shutdown(shutdownCtx)
package server
