package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemRepository persists items.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) (*Item, error)
	Update(ctx context.Context, item *Item) (*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	GetBySlug(ctx context.Context, categoryID uuid.UUID, slug string) (*Item, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Item, error)
	ListAll(ctx context.Context) ([]*Item, error)
	SearchTitles(ctx context.Context, query string) ([]*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}

// ItemImageRepository persists item images.
type ItemImageRepository interface {
	Create(ctx context.Context, image *ItemImage) (*ItemImage, error)
	Update(ctx context.Context, image *ItemImage) (*ItemImage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ItemImage, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*ItemImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByItems(ctx context.Context, itemIDs []uuid.UUID) (int, error)
}

// SearchLogRepository persists search logs.
type SearchLogRepository interface {
	Create(ctx context.Context, entry *SearchLog) (*SearchLog, error)
	List(ctx context.Context) ([]*SearchLog, error)
	CountBefore(ctx context.Context, cutoff time.Time) (int, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// NotFoundError is returned when a catalog record cannot be located.
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
