package workspace

import (
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
)

// Reduce applies one action to a snapshot and returns the next snapshot.
// It never mutates s; collections that change are copied first.
func Reduce(s Snapshot, a Action) Snapshot {
	next := s

	switch a := a.(type) {
	case LoginChecked:
		next.LoggedIn = a.LoggedIn

	case FoldersLoaded:
		next.Folders = cloneFolders(a.Folders)

	case DocumentsLoaded:
		next.Documents = cloneDocuments(a.Documents)

	case FolderCreated:
		next.Folders = append(cloneFolders(s.Folders), a.Folder)
		next.FolderName = ""
		next.ModalOpen = false
		next.Status = StatusFolderCreated

	case FolderToggled:
		next.Expanded = cloneExpanded(s.Expanded)
		if s.Expanded[a.FolderID] {
			delete(next.Expanded, a.FolderID)
		} else {
			next.Expanded[a.FolderID] = true
		}

	case FolderContentsLoaded:
		next.FolderDocuments = cloneCache(s.FolderDocuments)
		next.FolderDocuments[a.FolderID] = cloneDocuments(a.Documents)

	case FolderContentsDropped:
		if _, ok := s.FolderDocuments[a.FolderID]; ok {
			next.FolderDocuments = cloneCache(s.FolderDocuments)
			delete(next.FolderDocuments, a.FolderID)
		}

	case DocumentMoved:
		if a.Document.FolderID != nil {
			next = applyMove(s, a.Document)
		}

	case DragStarted:
		doc := cloneDocument(a.Document)
		next.Dragged = &doc

	case DragCleared:
		if s.Dragged != nil && s.Dragged.ID == a.DocumentID {
			next.Dragged = nil
		}

	case ModalOpened:
		next.ModalOpen = true

	case ModalClosed:
		next.ModalOpen = false

	case FolderNameChanged:
		next.FolderName = a.Name

	case StatusSet:
		next.Status = a.Message

	case LoggedOut:
		next = emptySnapshot()
	}

	return next
}

// applyMove updates exactly the moved document and invalidates the cache
// entries of the folders it left and entered.
func applyMove(s Snapshot, moved types.Document) Snapshot {
	next := s
	next.Documents = make([]types.Document, len(s.Documents))
	next.FolderDocuments = cloneCache(s.FolderDocuments)

	for i, d := range s.Documents {
		if d.ID != moved.ID {
			next.Documents[i] = d
			continue
		}
		if d.FolderID != nil {
			delete(next.FolderDocuments, *d.FolderID)
		}
		next.Documents[i] = cloneDocument(d).WithFolder(*moved.FolderID)
	}
	delete(next.FolderDocuments, *moved.FolderID)

	// The cached listings can also hold the document under a folder the
	// flat set no longer agrees with.
	for folderID, docs := range next.FolderDocuments {
		for _, d := range docs {
			if d.ID == moved.ID {
				delete(next.FolderDocuments, folderID)
				break
			}
		}
	}

	next.Status = StatusDocumentMoved
	return next
}
