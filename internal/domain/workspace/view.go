package workspace

import (
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
)

// FolderView is one folder as rendered in the sidebar
type FolderView struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Expanded bool             `json:"expanded"`
	Contents []types.Document `json:"documents,omitempty"`
}

// ModalView is the create-folder modal
type ModalView struct {
	Open       bool   `json:"open"`
	FolderName string `json:"folder_name"`
}

// View is the rendered workspace. Unassigned documents are always listed
// flat; assigned documents appear only under their expanded folder.
type View struct {
	LoggedIn   bool             `json:"logged_in"`
	Folders    []FolderView     `json:"folders"`
	Unassigned []types.Document `json:"unassigned"`
	Dragged    *types.Document  `json:"dragged,omitempty"`
	Modal      ModalView        `json:"modal"`
	Status     string           `json:"status,omitempty"`
}

// Render derives the view from a snapshot
func Render(s Snapshot) View {
	v := View{
		LoggedIn:   s.LoggedIn,
		Folders:    make([]FolderView, 0, len(s.Folders)),
		Unassigned: s.Unassigned(),
		Modal:      ModalView{Open: s.ModalOpen, FolderName: s.FolderName},
		Status:     s.Status,
	}
	if s.Dragged != nil {
		doc := cloneDocument(*s.Dragged)
		v.Dragged = &doc
	}

	for _, f := range s.Folders {
		fv := FolderView{ID: f.ID, Name: f.Name, Expanded: s.IsExpanded(f.ID)}
		if fv.Expanded {
			fv.Contents = s.ContentsOf(f.ID)
		}
		v.Folders = append(v.Folders, fv)
	}
	return v
}

// View renders the current workspace
func (o *Organizer) View() View {
	return Render(o.store.Snapshot())
}

// Subscribe calls fn with the rendered workspace after every applied
// action until the returned cancel is called. fn must not block.
func (o *Organizer) Subscribe(fn func(View)) (cancel func()) {
	return o.store.Observe(func(_ Action, s Snapshot) {
		fn(Render(s))
	})
}
