// Package main is the entry point for the docdesk local API.
//
// docdesk sits between a document UI and the remote document backend: it
// keeps the folder workspace and the per-document Q&A sessions, and serves
// them as rendered views.
//
// Configuration:
//   - .env in the working directory (optional)
//   - Environment variables (FAST_API_URL, PORT, LOG_LEVEL, ...)
//   - DOCDESK_CONFIG naming a YAML file overlaid on top
//
// Usage:
//
//	FAST_API_URL=http://localhost:8000 ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
