// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Backend failures that the UI only "logs" (folder fetches, document
// retrieval, logout) are written here at warn/error level with the
// operation and ids as structured fields.
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	logger = logger.Component("workspace")
//	logger.Warn("fetch folders failed", zap.Error(err))
package logging
