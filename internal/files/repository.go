package files

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewFileRepository creates the base repository for file metadata.
func NewFileRepository(db *bun.DB) repository.Repository[*File] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*File]{
		NewRecord:          func() *File { return &File{} },
		GetID:              func(f *File) uuid.UUID { return f.ID },
		SetID:              func(f *File, id uuid.UUID) { f.ID = id },
		GetIdentifier:      func() string { return "file_key" },
		GetIdentifierValue: func(f *File) string { return f.Key },
	})
}
