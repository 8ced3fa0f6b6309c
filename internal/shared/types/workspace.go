package types

// Folder is a named container for documents
type Folder struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Document is an uploaded file known to the backend.
// A nil FolderID means the document is unassigned.
type Document struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	FolderID *int64 `json:"folder_id"`
}

// Assigned reports whether the document belongs to a folder
func (d Document) Assigned() bool {
	return d.FolderID != nil
}

// InFolder reports whether the document belongs to the given folder
func (d Document) InFolder(folderID int64) bool {
	return d.FolderID != nil && *d.FolderID == folderID
}

// WithFolder returns a copy of the document assigned to folderID
func (d Document) WithFolder(folderID int64) Document {
	id := folderID
	d.FolderID = &id
	return d
}

// QAPair is one question/answer exchange in a transcript
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Route names a view the client should navigate to
type Route string

const (
	RouteNone         Route = ""
	RouteHome         Route = "/"
	RouteRegister     Route = "/register"
	RouteDocumentChat Route = "/document-chat"
)

// Navigation carries the transient state handed from the workspace to a document session
type Navigation struct {
	Route            Route  `json:"route"`
	ContentReference string `json:"content_reference,omitempty"`
	DocumentID       *int64 `json:"document_id,omitempty"`
}

// LoginStatus is the check-login response body
type LoginStatus struct {
	Status string `json:"status"`
}

// LoggedIn is the status value the backend reports for a valid session
const LoggedIn = "Logged in"

// UploadResult is the upload-document response body
type UploadResult struct {
	Message     string `json:"message"`
	FileContent string `json:"fileContent"`
}

// QueryRequest is the query-document request body
type QueryRequest struct {
	DocumentID int64  `json:"document_id"`
	Question   string `json:"question"`
}

// QueryResponse is the query-document response body
type QueryResponse struct {
	Answer string `json:"answer"`
}
