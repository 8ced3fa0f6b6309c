package workspace

import (
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
)

// Action is a typed state transition applied by Reduce
type Action interface {
	actionName() string
}

// LoginChecked records the outcome of a login check
type LoginChecked struct{ LoggedIn bool }

// FoldersLoaded replaces the folder set
type FoldersLoaded struct{ Folders []types.Folder }

// DocumentsLoaded replaces the flat document set
type DocumentsLoaded struct{ Documents []types.Document }

// FolderCreated appends a confirmed folder and closes the modal
type FolderCreated struct{ Folder types.Folder }

// FolderToggled flips a folder's expand flag
type FolderToggled struct{ FolderID int64 }

// FolderContentsLoaded fills the cache entry for one folder
type FolderContentsLoaded struct {
	FolderID  int64
	Documents []types.Document
}

// FolderContentsDropped removes a folder's cache entry
type FolderContentsDropped struct{ FolderID int64 }

// DocumentMoved applies a backend-confirmed folder assignment
type DocumentMoved struct{ Document types.Document }

// DragStarted fills the drag slot
type DragStarted struct{ Document types.Document }

// DragCleared empties the drag slot if it still holds DocumentID
type DragCleared struct{ DocumentID int64 }

// ModalOpened opens the create-folder modal
type ModalOpened struct{}

// ModalClosed closes the create-folder modal
type ModalClosed struct{}

// FolderNameChanged updates the create-folder input
type FolderNameChanged struct{ Name string }

// StatusSet sets the user-visible status line
type StatusSet struct{ Message string }

// LoggedOut resets the workspace to the logged-out state
type LoggedOut struct{}

func (LoginChecked) actionName() string          { return "login_checked" }
func (FoldersLoaded) actionName() string         { return "folders_loaded" }
func (DocumentsLoaded) actionName() string       { return "documents_loaded" }
func (FolderCreated) actionName() string         { return "folder_created" }
func (FolderToggled) actionName() string         { return "folder_toggled" }
func (FolderContentsLoaded) actionName() string  { return "folder_contents_loaded" }
func (FolderContentsDropped) actionName() string { return "folder_contents_dropped" }
func (DocumentMoved) actionName() string         { return "document_moved" }
func (DragStarted) actionName() string           { return "drag_started" }
func (DragCleared) actionName() string           { return "drag_cleared" }
func (ModalOpened) actionName() string           { return "modal_opened" }
func (ModalClosed) actionName() string           { return "modal_closed" }
func (FolderNameChanged) actionName() string     { return "folder_name_changed" }
func (StatusSet) actionName() string             { return "status_set" }
func (LoggedOut) actionName() string             { return "logged_out" }

// ActionName returns the stable name of an action, for logging
func ActionName(a Action) string {
	return a.actionName()
}
