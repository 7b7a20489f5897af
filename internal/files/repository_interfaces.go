package files

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// FileRepository persists file metadata.
type FileRepository interface {
	Create(ctx context.Context, file *File) (*File, error)
	GetByID(ctx context.Context, id uuid.UUID) (*File, error)
	GetByKey(ctx context.Context, key string) (*File, error)
	List(ctx context.Context) ([]*File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a file cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
