package files

import (
	"io"

	"github.com/goliatone/go-manual/files"
	"github.com/google/uuid"
)

type File = files.File

// UploadInput carries a new blob and its metadata. UploadedBy is the signed
// in user performing the upload.
type UploadInput struct {
	Name        string    `json:"name"`
	MimeType    *string   `json:"mimeType,omitempty"`
	Description *string   `json:"description,omitempty"`
	UploadedBy  uuid.UUID `json:"uploadedBy"`
	Body        io.Reader `json:"-"`
}

// Download is an open blob together with its metadata. Callers must close
// Body.
type Download struct {
	File *File
	Body io.ReadCloser
}
