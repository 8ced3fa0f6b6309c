package session

import (
	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
)

// View is the session as the UI renders it
type View struct {
	ID         string         `json:"id"`
	DocumentID *int64         `json:"document_id,omitempty"`
	Document   content.View   `json:"document"`
	Transcript []types.QAPair `json:"transcript"`
	Pending    string         `json:"pending,omitempty"`
	Input      string         `json:"input"`
}

// View renders the session
func (s *Session) View() View {
	return View{
		ID:         s.id.String(),
		DocumentID: s.DocumentID(),
		Document:   content.Render(s.Content()),
		Transcript: s.Transcript(),
		Pending:    s.Pending(),
		Input:      s.Input(),
	}
}
