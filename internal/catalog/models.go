package catalog

import (
	"github.com/goliatone/go-manual/catalog"
	"github.com/goliatone/go-manual/internal/render"
	"github.com/google/uuid"
)

type (
	Category  = catalog.Category
	Item      = catalog.Item
	ItemImage = catalog.ItemImage
	SearchLog = catalog.SearchLog
)

// CreateCategoryInput carries the fields of a new category. A blank Slug is
// derived from Title.
type CreateCategoryInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Rank        int        `json:"order"`
	Slug        string     `json:"slug,omitempty"`
	ID          *uuid.UUID `json:"-"`
}

// UpdateCategoryInput changes only the fields that are set.
type UpdateCategoryInput struct {
	ID          uuid.UUID `json:"id"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Rank        *int      `json:"order,omitempty"`
}

// CreateItemInput carries the fields of a new item.
type CreateItemInput struct {
	CategoryID uuid.UUID  `json:"categoryId"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Rank       int        `json:"order"`
	Slug       string     `json:"slug,omitempty"`
	ID         *uuid.UUID `json:"-"`
}

// UpdateItemInput changes only the fields that are set.
type UpdateItemInput struct {
	ID         uuid.UUID  `json:"id"`
	CategoryID *uuid.UUID `json:"categoryId,omitempty"`
	Title      *string    `json:"title,omitempty"`
	Content    *string    `json:"content,omitempty"`
	Rank       *int       `json:"order,omitempty"`
}

// SearchInput is a title search request.
type SearchInput struct {
	Query string `json:"query"`
}

// CreateItemImageInput attaches an uploaded image to an item.
type CreateItemImageInput struct {
	ItemID    uuid.UUID `json:"itemId"`
	ImageKey  string    `json:"imageKey"`
	ImageURL  string    `json:"imageUrl"`
	ImageName string    `json:"imageName"`
	MimeType  *string   `json:"mimeType,omitempty"`
	Size      *int64    `json:"size,omitempty"`
	Rank      int       `json:"order"`
}

// ItemView is everything needed to display one item.
type ItemView struct {
	Item      *Item         `json:"item"`
	Category  *Category     `json:"category"`
	Output    render.Output `json:"output"`
	Images    []*ItemImage  `json:"images"`
	Permalink string        `json:"permalink,omitempty"`
}

// TreeNode is a category with its ordered items.
type TreeNode struct {
	Category *Category `json:"category"`
	Items    []*Item   `json:"items"`
}
