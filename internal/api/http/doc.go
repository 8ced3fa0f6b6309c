// Package http provides the local view API a UI renders docdesk from.
//
// Every response carries rendered state (workspace.View or session.View),
// so a client never needs to derive folder contents or transcripts itself.
//
// Endpoints:
//   - Health: / and /health
//   - Workspace: /api/workspace, /api/workspace/init, /api/navigate-home, /api/logout
//   - Folders: /api/folders, /api/folder-name, /api/folders/modal, /api/folders/:id/{toggle,documents,drop}
//   - Documents: /api/documents/:id/{drag,open}, /api/uploads
//   - Sessions: /api/sessions/:id, /api/sessions/:id/{input,questions}
//   - Content: /api/content/:ref
//
// Validation failures map to 400, backend and network failures to 502.
// Failed workspace actions still include the rendered workspace, whose
// status line carries the user-facing message.
//
// Example Usage:
//
//	handlers := http.NewHandlers(organizer, sessions, refs, client, logger)
//	handlers.Register(router)
package http
