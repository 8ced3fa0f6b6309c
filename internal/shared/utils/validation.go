package utils

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/GriffinCanCode/docdesk/internal/shared/types"
)

// User-facing validation messages
const (
	MsgFolderNameEmpty = "Folder name cannot be empty."
	MsgQuestionMissing = "Missing user input or document ID"
	MsgNoFileSelected  = "No file selected"
	MsgUnsupportedFile = "Unsupported file type. Please upload PDF, PPT, or CSV files."
	MsgInvalidFolderID = "Folder id must be positive."
	MsgInvalidDocument = "Document id must be positive."
)

// UploadTypes lists the declared content types accepted for upload
var UploadTypes = []interface{}{
	"application/pdf",
	"application/vnd.ms-powerpoint",
	"text/csv",
}

// ValidateFolderName rejects an empty folder name
func ValidateFolderName(name string) error {
	return asValidationError("name", validation.Validate(name, validation.Required.Error(MsgFolderNameEmpty)))
}

// ValidateQuestion rejects an empty question or a session with no bound document
func ValidateQuestion(question string, documentID *int64) error {
	if documentID == nil {
		return &types.ValidationError{Field: "document_id", Message: MsgQuestionMissing}
	}
	return asValidationError("question", validation.Validate(question, validation.Required.Error(MsgQuestionMissing)))
}

// ValidateUpload checks that a file was chosen and its declared type is accepted
func ValidateUpload(fileName, declaredType string) error {
	if err := validation.Validate(fileName, validation.Required.Error(MsgNoFileSelected)); err != nil {
		return asValidationError("file", err)
	}
	err := validation.Validate(NormalizeMIME(declaredType),
		validation.Required.Error(MsgUnsupportedFile),
		validation.In(UploadTypes...).Error(MsgUnsupportedFile),
	)
	return asValidationError("file", err)
}

// ValidateID rejects non-positive backend identifiers
func ValidateID(field string, id int64) error {
	msg := MsgInvalidDocument
	if field == "folder_id" {
		msg = MsgInvalidFolderID
	}
	return asValidationError(field, validation.Validate(id,
		validation.Required.Error(msg),
		validation.Min(int64(1)).Error(msg),
	))
}

// NormalizeMIME strips parameters and lowercases a content type
func NormalizeMIME(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func asValidationError(field string, err error) error {
	if err == nil {
		return nil
	}
	var ve validation.Error
	if errors.As(err, &ve) {
		return &types.ValidationError{Field: field, Message: ve.Message()}
	}
	return &types.ValidationError{Field: field, Message: err.Error()}
}
