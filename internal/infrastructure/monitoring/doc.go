/*
Package monitoring provides Prometheus metrics for docdesk.

Collectors live on a private registry so several instances can coexist in
tests. Covered:

  - local API requests (count, latency)
  - backend calls by operation and outcome, breaker state
  - document moves, folder creation, superseded async completions
  - open sessions, transcript entries, rejected questions, content kinds

Usage:

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "list_folders")
	// ... call backend ...
	timer.Stop(monitoring.OutcomeSuccess)

A nil *Metrics is valid and records nothing.
*/
package monitoring
