package files

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// File is the metadata of an uploaded blob. The blob itself lives in the
// blob store under Key.
type File struct {
	bun.BaseModel `bun:"table:files,alias:f"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Key         string    `bun:"file_key,notnull,unique" json:"key"`
	URL         string    `bun:"url,notnull" json:"url"`
	Name        string    `bun:"name,notnull" json:"name"`
	MimeType    *string   `bun:"mime_type" json:"mime_type,omitempty"`
	Size        *int64    `bun:"size" json:"size,omitempty"`
	Checksum    string    `bun:"checksum,notnull" json:"checksum"`
	UploadedBy  uuid.UUID `bun:"uploaded_by,notnull,type:uuid" json:"uploaded_by"`
	Description *string   `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
