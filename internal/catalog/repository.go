package catalog

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewCategoryRepository creates the base repository for categories.
func NewCategoryRepository(db *bun.DB) repository.Repository[*Category] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Category]{
		NewRecord:          func() *Category { return &Category{} },
		GetID:              func(c *Category) uuid.UUID { return c.ID },
		SetID:              func(c *Category, id uuid.UUID) { c.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(c *Category) string { return c.Slug },
	})
}

// NewItemRepository creates the base repository for items.
func NewItemRepository(db *bun.DB) repository.Repository[*Item] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Item]{
		NewRecord:          func() *Item { return &Item{} },
		GetID:              func(i *Item) uuid.UUID { return i.ID },
		SetID:              func(i *Item, id uuid.UUID) { i.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(i *Item) string { return i.Slug },
	})
}

// NewItemImageRepository creates the base repository for item images.
func NewItemImageRepository(db *bun.DB) repository.Repository[*ItemImage] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ItemImage]{
		NewRecord:          func() *ItemImage { return &ItemImage{} },
		GetID:              func(img *ItemImage) uuid.UUID { return img.ID },
		SetID:              func(img *ItemImage, id uuid.UUID) { img.ID = id },
		GetIdentifier:      func() string { return "image_key" },
		GetIdentifierValue: func(img *ItemImage) string { return img.ImageKey },
	})
}

// NewSearchLogRepository creates the base repository for search logs.
func NewSearchLogRepository(db *bun.DB) repository.Repository[*SearchLog] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*SearchLog]{
		NewRecord:          func() *SearchLog { return &SearchLog{} },
		GetID:              func(l *SearchLog) uuid.UUID { return l.ID },
		SetID:              func(l *SearchLog, id uuid.UUID) { l.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(l *SearchLog) string { return l.ID.String() },
	})
}
