package content

// ViewMode selects how the document pane is drawn
type ViewMode string

const (
	ModePlaceholder ViewMode = "placeholder"
	ModeText        ViewMode = "text"
	ModeEmbed       ViewMode = "embed"
	ModeNotice      ViewMode = "notice"
)

// PlaceholderText is shown until content has been resolved
const PlaceholderText = "Click the document to upload"

// View is the document pane as the UI draws it
type View struct {
	Mode   ViewMode `json:"mode"`
	Body   string   `json:"body,omitempty"`
	Source string   `json:"source,omitempty"`
	MIME   string   `json:"mime,omitempty"`
}

// Render maps resolved content to a view. A nil content renders the placeholder.
func Render(c *Content) View {
	if c == nil {
		return View{Mode: ModePlaceholder, Body: PlaceholderText}
	}

	switch c.Kind {
	case KindText:
		return View{Mode: ModeText, Body: c.Text, MIME: c.MIME}
	case KindPDF:
		return View{Mode: ModeEmbed, Source: c.Reference, MIME: c.MIME}
	default:
		return View{Mode: ModeNotice, Body: "Unsupported file type: " + c.MIME, MIME: c.MIME}
	}
}
