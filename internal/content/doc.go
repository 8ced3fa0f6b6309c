// Package content resolves document content for display.
//
// A Store hands out transient "blob:<uuid>" references for fetched bytes so
// a session can show a document without fetching it again. Resolve turns a
// blob into one of three variants (text, PDF, unsupported) exactly once from
// its declared media type, and Render maps that variant to the view the UI
// draws. Readable gives a plain-text rendering of textual blobs, reducing
// HTML pages to their visible text.
//
//	ref := store.Register(content.Blob{Data: body, ContentType: ct})
//	blob, _ := store.Fetch(ref)
//	if c, ok := content.Resolve(ref, blob); ok {
//		view := content.Render(&c)
//	}
package content
