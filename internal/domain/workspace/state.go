package workspace

import (
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
)

// Status messages shown to the user
const (
	StatusFolderNameEmpty = "Folder name cannot be empty."
	StatusFolderCreated   = "Folder created successfully!"
	StatusFolderFailed    = "Folder creation failed"
	StatusDocumentMoved   = "Document moved successfully!"
	StatusMovePrefix      = "Error moving document: "
)

// Snapshot is one immutable state of the workspace.
// The reducer always builds a new snapshot; published snapshots are never
// written to again, so they can be read without holding the store lock.
type Snapshot struct {
	LoggedIn  bool
	Folders   []types.Folder
	Documents []types.Document

	// Expanded holds the per-folder expand flag; absent means collapsed
	Expanded map[int64]bool
	// FolderDocuments is a read-through index filled on expansion.
	// A folder without an entry derives its contents from Documents.
	FolderDocuments map[int64][]types.Document

	Dragged    *types.Document
	ModalOpen  bool
	FolderName string
	Status     string
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Folders:         []types.Folder{},
		Documents:       []types.Document{},
		Expanded:        map[int64]bool{},
		FolderDocuments: map[int64][]types.Document{},
	}
}

// IsExpanded reports whether a folder is expanded
func (s Snapshot) IsExpanded(folderID int64) bool {
	return s.Expanded[folderID]
}

// Document finds a document in the flat set
func (s Snapshot) Document(id int64) (types.Document, bool) {
	for _, d := range s.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return types.Document{}, false
}

// Unassigned returns the documents that belong to no folder
func (s Snapshot) Unassigned() []types.Document {
	out := []types.Document{}
	for _, d := range s.Documents {
		if !d.Assigned() {
			out = append(out, d)
		}
	}
	return out
}

// ContentsOf returns a folder's documents: the cached listing when one
// exists, otherwise the flat document set filtered by folder.
func (s Snapshot) ContentsOf(folderID int64) []types.Document {
	if cached, ok := s.FolderDocuments[folderID]; ok {
		return cloneDocuments(cached)
	}
	out := []types.Document{}
	for _, d := range s.Documents {
		if d.InFolder(folderID) {
			out = append(out, d)
		}
	}
	return out
}

func cloneDocuments(docs []types.Document) []types.Document {
	out := make([]types.Document, len(docs))
	for i, d := range docs {
		out[i] = cloneDocument(d)
	}
	return out
}

func cloneDocument(d types.Document) types.Document {
	if d.FolderID != nil {
		id := *d.FolderID
		d.FolderID = &id
	}
	return d
}

func cloneFolders(folders []types.Folder) []types.Folder {
	return append(make([]types.Folder, 0, len(folders)), folders...)
}

func cloneExpanded(m map[int64]bool) map[int64]bool {
	out := make(map[int64]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneCache(m map[int64][]types.Document) map[int64][]types.Document {
	out := make(map[int64][]types.Document, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
