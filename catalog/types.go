package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Category groups manual items. Categories are listed by Rank, then Title.
type Category struct {
	bun.BaseModel `bun:"table:manual_categories,alias:mc"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Slug        string    `bun:"slug,notnull,unique" json:"slug"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description *string   `bun:"description" json:"description,omitempty"`
	Rank        int       `bun:"sort_order,notnull,default:0" json:"order"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Items []*Item `bun:"rel:has-many,join:id=category_id" json:"items,omitempty"`
}

// Item is a single manual entry. Content holds either the plain-text
// dialect or markup and is only interpreted by the renderer.
type Item struct {
	bun.BaseModel `bun:"table:manual_items,alias:mi"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CategoryID uuid.UUID `bun:"category_id,notnull,type:uuid" json:"category_id"`
	Slug       string    `bun:"slug,notnull" json:"slug"`
	Title      string    `bun:"title,notnull" json:"title"`
	Content    string    `bun:"content,notnull" json:"content"`
	Rank       int       `bun:"sort_order,notnull,default:0" json:"order"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}

// ItemImage attaches an uploaded image to an item.
type ItemImage struct {
	bun.BaseModel `bun:"table:manual_item_images,alias:mii"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ItemID    uuid.UUID `bun:"item_id,notnull,type:uuid" json:"item_id"`
	ImageKey  string    `bun:"image_key,notnull" json:"image_key"`
	ImageURL  string    `bun:"image_url,notnull" json:"image_url"`
	ImageName string    `bun:"image_name,notnull" json:"image_name"`
	MimeType  *string   `bun:"mime_type" json:"mime_type,omitempty"`
	Size      *int64    `bun:"size" json:"size,omitempty"`
	Rank      int       `bun:"sort_order,notnull,default:0" json:"order"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// SearchLog records a query made by a signed in user.
type SearchLog struct {
	bun.BaseModel `bun:"table:search_logs,alias:sl"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	UserID      uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Query       string    `bun:"query,notnull" json:"query"`
	ResultCount int       `bun:"result_count,notnull,default:0" json:"result_count"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
