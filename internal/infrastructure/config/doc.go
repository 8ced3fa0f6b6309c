// Package config provides 12-factor configuration for docdesk.
//
// Configuration is loaded from environment variables with defaults. A YAML
// file named by DOCDESK_CONFIG, when set, is overlaid on the result and wins
// over the environment for the keys it contains.
//
// Sections:
//   - Server: local view API listener (PORT, HOST)
//   - Backend: document backend (FAST_API_URL, BACKEND_TIMEOUT, BACKEND_RPS,
//     BACKEND_SESSION_COOKIE, BACKEND_USER_AGENT, BACKEND_BREAKER_*)
//   - Logging: LOG_LEVEL, LOG_DEV
//   - RateLimit: RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS: CORS_ORIGINS (comma separated)
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	client := backend.New(cfg.Backend, logger, metrics)
package config
