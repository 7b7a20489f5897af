package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/internal/permissions"
	"github.com/goliatone/go-manual/internal/render"
	manualvalidation "github.com/goliatone/go-manual/internal/validation"
	"github.com/goliatone/go-manual/pkg/interfaces"
	"github.com/google/uuid"
)

// Service exposes the manual catalog: categories, items, images and search.
type Service interface {
	ListCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error)
	UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListItems(ctx context.Context, categoryID uuid.UUID) ([]*Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	GetItemBySlug(ctx context.Context, categoryID uuid.UUID, slug string) (*Item, error)
	CreateItem(ctx context.Context, input CreateItemInput) (*Item, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error

	Search(ctx context.Context, input SearchInput) ([]*Item, error)
	Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error)

	ListItemImages(ctx context.Context, itemID uuid.UUID) ([]*ItemImage, error)
	CreateItemImage(ctx context.Context, input CreateItemImageInput) (*ItemImage, error)
	DeleteItemImage(ctx context.Context, id uuid.UUID) error
	ReorderItemImage(ctx context.Context, id uuid.UUID, rank int) (*ItemImage, error)

	RenderItem(ctx context.Context, id uuid.UUID) (*ItemView, error)
	Tree(ctx context.Context) ([]TreeNode, error)

	ListSearchLogs(ctx context.Context) ([]*SearchLog, error)
	PruneSearchLogs(ctx context.Context, cutoff time.Time, dryRun bool) (int, error)
}

var (
	ErrCategoryRepositoryRequired  = errors.New("catalog: category repository required")
	ErrItemRepositoryRequired      = errors.New("catalog: item repository required")
	ErrItemImageRepositoryRequired = errors.New("catalog: item image repository required")

	ErrCategorySlugExists = errors.New("catalog: category slug already exists")
	ErrItemSlugExists     = errors.New("catalog: item slug already exists in category")
	ErrSlugInvalid        = errors.New("catalog: slug invalid")
	ErrSearchLogDisabled  = errors.New("catalog: search log disabled")
)

const scope = "catalog"

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ActorResolver returns the signed in user attached to ctx, if any.
type ActorResolver func(ctx context.Context) (uuid.UUID, bool)

// Permalinker builds the public URL of an item.
type Permalinker interface {
	ItemURL(category *Category, item *Item) (string, error)
}

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithIDGenerator overrides the default ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer sets the renderer used by RenderItem.
func WithRenderer(renderer *render.Renderer) ServiceOption {
	return func(s *service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithPermalinker enables item permalinks in RenderItem.
func WithPermalinker(p Permalinker) ServiceOption {
	return func(s *service) {
		s.permalinks = p
	}
}

// WithSearchLog records searches of signed in users into repo.
func WithSearchLog(repo SearchLogRepository, actor ActorResolver) ServiceOption {
	return func(s *service) {
		s.searchLogs = repo
		s.actor = actor
	}
}

// WithSuggestLimit sets the default number of suggestions.
func WithSuggestLimit(limit int) ServiceOption {
	return func(s *service) {
		if limit > 0 {
			s.suggestLimit = limit
		}
	}
}

type service struct {
	categories   CategoryRepository
	items        ItemRepository
	images       ItemImageRepository
	searchLogs   SearchLogRepository
	actor        ActorResolver
	permalinks   Permalinker
	renderer     *render.Renderer
	logger       interfaces.Logger
	id           IDGenerator
	now          func() time.Time
	suggestLimit int
}

// NewService constructs a catalog service instance.
func NewService(categoryRepo CategoryRepository, itemRepo ItemRepository, imageRepo ItemImageRepository, opts ...ServiceOption) Service {
	if categoryRepo == nil {
		panic(ErrCategoryRepositoryRequired)
	}
	if itemRepo == nil {
		panic(ErrItemRepositoryRequired)
	}
	if imageRepo == nil {
		panic(ErrItemImageRepositoryRequired)
	}

	s := &service{
		categories:   categoryRepo,
		items:        itemRepo,
		images:       imageRepo,
		logger:       logging.NoOp(),
		renderer:     render.NewRenderer(),
		id:           uuid.New,
		now:          time.Now,
		suggestLimit: 5,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	records, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := cloneCategories(records)
	sortCategories(out)
	return out, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	if id == uuid.Nil {
		return nil, &NotFoundError{Resource: "category"}
	}
	record, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloneCategory(record), nil
}

func (s *service) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, &NotFoundError{Resource: "category"}
	}
	record, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return cloneCategory(record), nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	if err := permissions.Require(ctx, permissions.ManualCreate); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := manualvalidation.FromOzzo(scope, validation.ValidateStruct(&input,
		validation.Field(&input.Title, manualvalidation.Title...),
		validation.Field(&input.Slug, validation.Length(0, 255)),
	)); err != nil {
		return nil, err
	}

	slugValue, err := s.categorySlug(ctx, input.Slug, input.Title)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id := s.id()
	if input.ID != nil && *input.ID != uuid.Nil {
		id = *input.ID
	}
	record := &Category{
		ID:          id,
		Slug:        slugValue,
		Title:       input.Title,
		Description: normalizeOptional(input.Description),
		Rank:        input.Rank,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.categories.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog.category.created", "category_id", created.ID, "slug", created.Slug)
	return cloneCategory(created), nil
}

func (s *service) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*Category, error) {
	if err := permissions.Require(ctx, permissions.ManualUpdate); err != nil {
		return nil, err
	}
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
	}
	if err := manualvalidation.FromOzzo(scope, validation.ValidateStruct(&input,
		validation.Field(&input.ID, manualvalidation.RequiredUUID),
		validation.Field(&input.Title, validation.When(input.Title != nil, manualvalidation.Title...)),
	)); err != nil {
		return nil, err
	}

	record, err := s.categories.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		record.Title = *input.Title
	}
	if input.Description != nil {
		record.Description = normalizeOptional(input.Description)
	}
	if input.Rank != nil {
		record.Rank = *input.Rank
	}
	record.UpdatedAt = s.now().UTC()

	updated, err := s.categories.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog.category.updated", "category_id", updated.ID)
	return cloneCategory(updated), nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := permissions.Require(ctx, permissions.ManualDelete); err != nil {
		return err
	}
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}

	items, err := s.items.ListByCategory(ctx, id)
	if err != nil {
		return err
	}
	itemIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}
	images, err := s.images.DeleteByItems(ctx, itemIDs)
	if err != nil {
		return err
	}
	removed, err := s.items.DeleteByCategory(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("catalog.category.deleted", "category_id", id, "items_removed", removed, "images_removed", images)
	return nil
}

func (s *service) ListItems(ctx context.Context, categoryID uuid.UUID) ([]*Item, error) {
	records, err := s.items.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	out := cloneItems(records)
	sortItems(out)
	return out, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	if id == uuid.Nil {
		return nil, &NotFoundError{Resource: "item"}
	}
	record, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloneItem(record), nil
}

func (s *service) GetItemBySlug(ctx context.Context, categoryID uuid.UUID, slug string) (*Item, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, &NotFoundError{Resource: "item"}
	}
	record, err := s.items.GetBySlug(ctx, categoryID, slug)
	if err != nil {
		return nil, err
	}
	return cloneItem(record), nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*Item, error) {
	if err := permissions.Require(ctx, permissions.ManualCreate); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := manualvalidation.FromOzzo(scope, validation.ValidateStruct(&input,
		validation.Field(&input.CategoryID, manualvalidation.RequiredUUID),
		validation.Field(&input.Title, manualvalidation.Title...),
		validation.Field(&input.Content, validation.Required),
		validation.Field(&input.Slug, validation.Length(0, 255)),
	)); err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	slugValue, err := s.itemSlug(ctx, input.CategoryID, input.Slug, input.Title)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id := s.id()
	if input.ID != nil && *input.ID != uuid.Nil {
		id = *input.ID
	}
	record := &Item{
		ID:         id,
		CategoryID: input.CategoryID,
		Slug:       slugValue,
		Title:      input.Title,
		Content:    input.Content,
		Rank:       input.Rank,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := s.items.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog.item.created", "item_id", created.ID, "category_id", created.CategoryID)
	return cloneItem(created), nil
}

func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) (*Item, error) {
	if err := permissions.Require(ctx, permissions.ManualUpdate); err != nil {
		return nil, err
	}
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
	}
	if err := manualvalidation.FromOzzo(scope, validation.ValidateStruct(&input,
		validation.Field(&input.ID, manualvalidation.RequiredUUID),
		validation.Field(&input.Title, validation.When(input.Title != nil, manualvalidation.Title...)),
		validation.Field(&input.Content, validation.When(input.Content != nil, validation.Required)),
	)); err != nil {
		return nil, err
	}

	record, err := s.items.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != nil && *input.CategoryID != record.CategoryID {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		if existing, err := s.items.GetBySlug(ctx, *input.CategoryID, record.Slug); err == nil && existing != nil {
			return nil, ErrItemSlugExists
		} else if err != nil && !isNotFound(err) {
			return nil, err
		}
		record.CategoryID = *input.CategoryID
	}
	if input.Title != nil {
		record.Title = *input.Title
	}
	if input.Content != nil {
		record.Content = *input.Content
	}
	if input.Rank != nil {
		record.Rank = *input.Rank
	}
	record.UpdatedAt = s.now().UTC()

	updated, err := s.items.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog.item.updated", "item_id", updated.ID)
	return cloneItem(updated), nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := permissions.Require(ctx, permissions.ManualDelete); err != nil {
		return err
	}
	if _, err := s.items.GetByID(ctx, id); err != nil {
		return err
	}
	images, err := s.images.DeleteByItems(ctx, []uuid.UUID{id})
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("catalog.item.deleted", "item_id", id, "images_removed", images)
	return nil
}

func (s *service) ListItemImages(ctx context.Context, itemID uuid.UUID) ([]*ItemImage, error) {
	records, err := s.images.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	out := cloneItemImages(records)
	sortImages(out)
	return out, nil
}

func (s *service) CreateItemImage(ctx context.Context, input CreateItemImageInput) (*ItemImage, error) {
	if err := permissions.Require(ctx, permissions.ManualCreate); err != nil {
		return nil, err
	}
	input.ImageKey = strings.TrimSpace(input.ImageKey)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.ImageName = strings.TrimSpace(input.ImageName)
	if err := manualvalidation.FromOzzo(scope, validation.ValidateStruct(&input,
		validation.Field(&input.ItemID, manualvalidation.RequiredUUID),
		validation.Field(&input.ImageKey, validation.Required),
		validation.Field(&input.ImageURL, validation.Required),
		validation.Field(&input.ImageName, manualvalidation.Title...),
		validation.Field(&input.Size, validation.When(input.Size != nil, validation.Min(int64(0)))),
	)); err != nil {
		return nil, err
	}
	if _, err := s.items.GetByID(ctx, input.ItemID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &ItemImage{
		ID:        s.id(),
		ItemID:    input.ItemID,
		ImageKey:  input.ImageKey,
		ImageURL:  input.ImageURL,
		ImageName: input.ImageName,
		MimeType:  normalizeOptional(input.MimeType),
		Size:      cloneInt64(input.Size),
		Rank:      input.Rank,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.images.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog.image.created", "image_id", created.ID, "item_id", created.ItemID)
	return cloneItemImage(created), nil
}

func (s *service) DeleteItemImage(ctx context.Context, id uuid.UUID) error {
	if err := permissions.Require(ctx, permissions.ManualDelete); err != nil {
		return err
	}
	if _, err := s.images.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.images.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("catalog.image.deleted", "image_id", id)
	return nil
}

func (s *service) ReorderItemImage(ctx context.Context, id uuid.UUID, rank int) (*ItemImage, error) {
	if err := permissions.Require(ctx, permissions.ManualUpdate); err != nil {
		return nil, err
	}
	record, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Rank = rank
	record.UpdatedAt = s.now().UTC()
	updated, err := s.images.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	return cloneItemImage(updated), nil
}

func (s *service) RenderItem(ctx context.Context, id uuid.UUID) (*ItemView, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, item.CategoryID)
	if err != nil {
		return nil, err
	}
	images, err := s.ListItemImages(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	view := &ItemView{
		Item:     item,
		Category: cloneCategory(category),
		Output:   s.renderer.Render(item.Content),
		Images:   images,
	}
	if s.permalinks != nil {
		link, err := s.permalinks.ItemURL(view.Category, item)
		if err != nil {
			s.logger.Warn("catalog.item.permalink_failed", "item_id", item.ID, "error", err)
		} else {
			view.Permalink = link
		}
	}
	return view, nil
}

func (s *service) Tree(ctx context.Context) ([]TreeNode, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[uuid.UUID][]*Item, len(categories))
	for _, item := range cloneItems(items) {
		grouped[item.CategoryID] = append(grouped[item.CategoryID], item)
	}

	nodes := make([]TreeNode, 0, len(categories))
	for _, category := range categories {
		children := grouped[category.ID]
		if children == nil {
			children = []*Item{}
		}
		sortItems(children)
		nodes = append(nodes, TreeNode{Category: category, Items: children})
	}
	return nodes, nil
}

func (s *service) categorySlug(ctx context.Context, explicit, title string) (string, error) {
	exists := func(candidate string) (bool, error) {
		_, err := s.categories.GetBySlug(ctx, candidate)
		if err == nil {
			return true, nil
		}
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return resolveSlug(explicit, title, ErrCategorySlugExists, exists)
}

func (s *service) itemSlug(ctx context.Context, categoryID uuid.UUID, explicit, title string) (string, error) {
	exists := func(candidate string) (bool, error) {
		_, err := s.items.GetBySlug(ctx, categoryID, candidate)
		if err == nil {
			return true, nil
		}
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return resolveSlug(explicit, title, ErrItemSlugExists, exists)
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
