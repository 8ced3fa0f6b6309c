// Package workspace implements the folder and document organizer.
//
// State lives in a Store as immutable Snapshots and changes only through
// typed Actions applied by Reduce. The Organizer runs the backend calls
// and dispatches their results. Every completion carries a request token
// from the sequencer and is applied only if no newer request for the same
// key was issued in the meantime.
//
// Folder contents have two sources: the flat document set and a per-folder
// listing fetched on expansion. The listing is a read-through index: each
// confirmed move drops the entries of the folders involved, and a folder
// without an entry is rendered by filtering the flat set.
package workspace
