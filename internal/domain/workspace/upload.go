package workspace

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"github.com/GriffinCanCode/docdesk/internal/shared/utils"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Upload status messages
const (
	StatusUploadFailed = "Upload failed. Please try again."
)

// sniffLimit is how much of an upload is read to guess an undeclared type
const sniffLimit = 3072

// UploadDocument sends a file to the backend. Only PDF, PowerPoint and CSV
// are accepted. On success the document list is refreshed and the returned
// navigation opens the extracted text in a session with no bound document.
func (o *Organizer) UploadDocument(ctx context.Context, fileName, declaredType string, body io.Reader) (types.Navigation, error) {
	if body == nil {
		fileName = ""
	}

	if declaredType == "" && body != nil {
		sniffed, rewound, err := sniffType(body)
		if err != nil {
			o.logger.Warn("error reading upload", zap.String("file", fileName), zap.Error(err))
			o.store.Dispatch(StatusSet{Message: StatusUploadFailed})
			return types.Navigation{}, err
		}
		declaredType, body = sniffed, rewound
	}

	if err := utils.ValidateUpload(fileName, declaredType); err != nil {
		var ve *types.ValidationError
		errors.As(err, &ve)
		o.store.Dispatch(StatusSet{Message: ve.Message})
		return types.Navigation{}, err
	}

	result, err := o.backend.UploadDocument(ctx, fileName, utils.NormalizeMIME(declaredType), body)
	if err != nil {
		o.logger.Error("error uploading file", zap.String("file", fileName), zap.Error(err))
		o.store.Dispatch(StatusSet{Message: StatusUploadFailed})
		return types.Navigation{}, err
	}

	o.store.Dispatch(StatusSet{Message: result.Message})
	_ = o.FetchDocuments(ctx)

	return types.Navigation{
		Route:            types.RouteDocumentChat,
		ContentReference: o.refs.RegisterText(result.FileContent),
	}, nil
}

func sniffType(body io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLimit)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), body), nil
}
