package backend

import (
	"context"
	"io"
	"strconv"

	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"github.com/go-resty/resty/v2"
)

// Operation names, used for errors and metrics labels
const (
	OpCheckLogin      = "check_login"
	OpListFolders     = "list_folders"
	OpListDocuments   = "list_documents"
	OpFolderDocuments = "folder_documents"
	OpCreateFolder    = "create_folder"
	OpMoveDocument    = "move_document"
	OpFetchDocument   = "fetch_document"
	OpUploadDocument  = "upload_document"
	OpLogout          = "logout"
	OpQueryDocument   = "query_document"
)

// CheckLogin reports whether the backend session is valid
func (c *Client) CheckLogin(ctx context.Context) (bool, error) {
	resp, err := c.execute(ctx, OpCheckLogin, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/check-login/")
	})
	if err != nil {
		return false, err
	}

	var status types.LoginStatus
	if err := decode(OpCheckLogin, resp, &status); err != nil {
		return false, err
	}
	return status.Status == types.LoggedIn, nil
}

// ListFolders returns every folder of the current user
func (c *Client) ListFolders(ctx context.Context) ([]types.Folder, error) {
	resp, err := c.execute(ctx, OpListFolders, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/folders-view/")
	})
	if err != nil {
		return nil, err
	}

	folders := []types.Folder{}
	if err := decode(OpListFolders, resp, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// ListDocuments returns every document of the current user
func (c *Client) ListDocuments(ctx context.Context) ([]types.Document, error) {
	resp, err := c.execute(ctx, OpListDocuments, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/documents-view/")
	})
	if err != nil {
		return nil, err
	}
	return decodeDocuments(OpListDocuments, resp)
}

// FolderDocuments returns the documents assigned to one folder
func (c *Client) FolderDocuments(ctx context.Context, folderID int64) ([]types.Document, error) {
	resp, err := c.execute(ctx, OpFolderDocuments, ids{"folder_id": folderID}, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("folderId", strconv.FormatInt(folderID, 10)).
			Get("/folders/{folderId}/documents/")
	})
	if err != nil {
		return nil, err
	}
	return decodeDocuments(OpFolderDocuments, resp)
}

// CreateFolder creates a folder and returns it with its backend id
func (c *Client) CreateFolder(ctx context.Context, name string) (types.Folder, error) {
	resp, err := c.execute(ctx, OpCreateFolder, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(map[string]string{"name": name}).Post("/folders/")
	})
	if err != nil {
		return types.Folder{}, err
	}

	var folder types.Folder
	if err := decode(OpCreateFolder, resp, &folder); err != nil {
		return types.Folder{}, err
	}
	return folder, nil
}

// MoveDocument assigns a document to a folder. The returned document
// carries the confirmed assignment; when the backend omits the body the
// requested assignment is what was confirmed.
func (c *Client) MoveDocument(ctx context.Context, documentID, folderID int64) (types.Document, error) {
	resp, err := c.execute(ctx, OpMoveDocument, ids{"document_id": documentID, "folder_id": folderID}, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParams(map[string]string{
			"folderId": strconv.FormatInt(folderID, 10),
			"docId":    strconv.FormatInt(documentID, 10),
		}).
			SetBody(map[string]int64{"folder_id": folderID}).
			Patch("/folders/{folderId}/documents/{docId}")
	})
	if err != nil {
		return types.Document{}, err
	}

	confirmed := types.Document{ID: documentID}.WithFolder(folderID)
	var doc types.Document
	if decode(OpMoveDocument, resp, &doc) == nil && doc.ID == documentID && doc.FolderID != nil {
		confirmed = doc
	}
	return confirmed, nil
}

// FetchDocument downloads a document's binary content
func (c *Client) FetchDocument(ctx context.Context, documentID int64) (content.Blob, error) {
	resp, err := c.execute(ctx, OpFetchDocument, ids{"document_id": documentID}, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("docId", strconv.FormatInt(documentID, 10)).
			Get("/documents/{docId}/")
	})
	if err != nil {
		return content.Blob{}, err
	}

	return content.Blob{
		Data:        resp.Body(),
		ContentType: resp.Header().Get("Content-Type"),
	}, nil
}

// UploadDocument sends a file as multipart field "file"
func (c *Client) UploadDocument(ctx context.Context, fileName, contentType string, body io.Reader) (types.UploadResult, error) {
	resp, err := c.execute(ctx, OpUploadDocument, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.SetMultipartField("file", fileName, contentType, body).Post("/upload-document/")
	})
	if err != nil {
		return types.UploadResult{}, err
	}

	var result types.UploadResult
	if err := decode(OpUploadDocument, resp, &result); err != nil {
		return types.UploadResult{}, err
	}
	return result, nil
}

// Logout ends the backend session
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.execute(ctx, OpLogout, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.Post("/logout/")
	})
	return err
}

// QueryDocument asks a question about one document and returns the answer
func (c *Client) QueryDocument(ctx context.Context, documentID int64, question string) (string, error) {
	resp, err := c.execute(ctx, OpQueryDocument, ids{"document_id": documentID}, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(types.QueryRequest{DocumentID: documentID, Question: question}).
			Post("/query-document/")
	})
	if err != nil {
		return "", err
	}

	var answer types.QueryResponse
	if err := decode(OpQueryDocument, resp, &answer); err != nil {
		return "", err
	}
	return answer.Answer, nil
}

func decodeDocuments(op string, resp *resty.Response) ([]types.Document, error) {
	docs := []types.Document{}
	if err := decode(op, resp, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
