// Package types provides shared data structures for docdesk.
//
// Entities mirror the backend's JSON contract:
//   - Folder: named container ({id, name})
//   - Document: uploaded file ({id, file_name, folder_id|null})
//   - QAPair: one question/answer exchange
//
// Navigation carries the transient hand-off from the workspace organizer
// to a document session (content reference plus document id).
//
// Errors:
//   - ValidationError: empty required field, no network call made
//   - NetworkError: request failed before a response arrived
//   - BackendError: non-success HTTP status
//
// Example Usage:
//
//	var verr *types.ValidationError
//	if errors.As(err, &verr) {
//	    status = verr.Message
//	}
package types
