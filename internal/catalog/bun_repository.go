package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	itemNamespace      = "manual_item"
	itemImageNamespace = "manual_item_image"
)

func rankOrder(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("?TableAlias.sort_order ASC").OrderExpr("?TableAlias.title ASC")
}

// BunCategoryRepository implements CategoryRepository with optional caching.
type BunCategoryRepository struct {
	repo repository.Repository[*Category]
}

// NewBunCategoryRepository creates a category repository without caching.
func NewBunCategoryRepository(db *bun.DB) *BunCategoryRepository {
	return NewBunCategoryRepositoryWithCache(db, nil, nil)
}

// NewBunCategoryRepositoryWithCache creates a category repository with caching support.
func NewBunCategoryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunCategoryRepository {
	base := NewCategoryRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunCategoryRepository{repo: base}
}

func (r *BunCategoryRepository) Create(ctx context.Context, category *Category) (*Category, error) {
	return r.repo.Create(ctx, category)
}

func (r *BunCategoryRepository) Update(ctx context.Context, category *Category) (*Category, error) {
	record, err := r.repo.Update(ctx, category,
		repository.UpdateByID(category.ID.String()),
		repository.UpdateColumns("title", "description", "sort_order", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "category", category.ID.String())
	}
	return record, nil
}

func (r *BunCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "category", id.String())
	}
	return record, nil
}

func (r *BunCategoryRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "category", slug)
	}
	return record, nil
}

func (r *BunCategoryRepository) List(ctx context.Context) ([]*Category, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(rankOrder))
	return records, err
}

func (r *BunCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Category{ID: id}); err != nil {
		return mapRepositoryError(err, "category", id.String())
	}
	return nil
}

// BunItemRepository implements ItemRepository with optional caching.
type BunItemRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Item]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunItemRepository creates an item repository without caching.
func NewBunItemRepository(db *bun.DB) *BunItemRepository {
	return NewBunItemRepositoryWithCache(db, nil, nil)
}

// NewBunItemRepositoryWithCache creates an item repository with caching support.
func NewBunItemRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunItemRepository {
	base := NewItemRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(itemNamespace)
	}
	return &BunItemRepository{db: db, repo: base, cacheService: svc, cachePrefix: prefix}
}

func (r *BunItemRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	return r.repo.Create(ctx, item)
}

func (r *BunItemRepository) Update(ctx context.Context, item *Item) (*Item, error) {
	record, err := r.repo.Update(ctx, item,
		repository.UpdateByID(item.ID.String()),
		repository.UpdateColumns("category_id", "title", "content", "sort_order", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "item", item.ID.String())
	}
	return record, nil
}

func (r *BunItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "item", id.String())
	}
	return record, nil
}

// Filtered reads query the database directly: the repository cache keys a
// List call by its options, not by the values captured in raw processors.

func (r *BunItemRepository) GetBySlug(ctx context.Context, categoryID uuid.UUID, slug string) (*Item, error) {
	records, err := selectItems(ctx, r.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.category_id = ?", categoryID).
			Where("?TableAlias.slug = ?", slug).
			Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "item", Key: slug}
	}
	return records[0], nil
}

func (r *BunItemRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Item, error) {
	return selectItems(ctx, r.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return rankOrder(q.Where("?TableAlias.category_id = ?", categoryID))
	})
}

func (r *BunItemRepository) ListAll(ctx context.Context) ([]*Item, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(rankOrder))
	return records, err
}

func (r *BunItemRepository) SearchTitles(ctx context.Context, query string) ([]*Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return selectItems(ctx, r.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return rankOrder(q.Where("LOWER(?TableAlias.title) LIKE ? ESCAPE '\\'", pattern))
	})
}

func selectItems(ctx context.Context, db bun.IDB, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]*Item, error) {
	records := []*Item{}
	if err := filter(db.NewSelect().Model(&records)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("item repository error: %w", err)
	}
	return records, nil
}

func (r *BunItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Item{ID: id}); err != nil {
		return mapRepositoryError(err, "item", id.String())
	}
	return nil
}

func (r *BunItemRepository) DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	res, err := r.db.NewDelete().
		Model((*Item)(nil)).
		Where("?TableAlias.category_id = ?", categoryID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete items of category: %w", err)
	}
	affected, _ := res.RowsAffected()
	if err := r.InvalidateCache(ctx); err != nil {
		return int(affected), err
	}
	return int(affected), nil
}

// InvalidateCache drops cached item reads after bulk writes.
func (r *BunItemRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

// BunItemImageRepository implements ItemImageRepository with optional caching.
type BunItemImageRepository struct {
	db           *bun.DB
	repo         repository.Repository[*ItemImage]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunItemImageRepository creates an image repository without caching.
func NewBunItemImageRepository(db *bun.DB) *BunItemImageRepository {
	return NewBunItemImageRepositoryWithCache(db, nil, nil)
}

// NewBunItemImageRepositoryWithCache creates an image repository with caching support.
func NewBunItemImageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunItemImageRepository {
	base := NewItemImageRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(itemImageNamespace)
	}
	return &BunItemImageRepository{db: db, repo: base, cacheService: svc, cachePrefix: prefix}
}

func (r *BunItemImageRepository) Create(ctx context.Context, image *ItemImage) (*ItemImage, error) {
	return r.repo.Create(ctx, image)
}

func (r *BunItemImageRepository) Update(ctx context.Context, image *ItemImage) (*ItemImage, error) {
	record, err := r.repo.Update(ctx, image,
		repository.UpdateByID(image.ID.String()),
		repository.UpdateColumns("sort_order", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "item image", image.ID.String())
	}
	return record, nil
}

func (r *BunItemImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*ItemImage, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "item image", id.String())
	}
	return record, nil
}

func (r *BunItemImageRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*ItemImage, error) {
	records := []*ItemImage{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.item_id = ?", itemID).
		OrderExpr("?TableAlias.sort_order ASC").
		OrderExpr("?TableAlias.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("item image repository error: %w", err)
	}
	return records, nil
}

func (r *BunItemImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &ItemImage{ID: id}); err != nil {
		return mapRepositoryError(err, "item image", id.String())
	}
	return nil
}

func (r *BunItemImageRepository) DeleteByItems(ctx context.Context, itemIDs []uuid.UUID) (int, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.NewDelete().
		Model((*ItemImage)(nil)).
		Where("?TableAlias.item_id IN (?)", bun.In(itemIDs)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete item images: %w", err)
	}
	affected, _ := res.RowsAffected()
	if r.cacheService != nil && r.cachePrefix != "" {
		if err := r.cacheService.DeleteByPrefix(ctx, r.cachePrefix); err != nil {
			return int(affected), err
		}
	}
	return int(affected), nil
}

// BunSearchLogRepository implements SearchLogRepository. Search logs are
// write mostly and never cached.
type BunSearchLogRepository struct {
	db   *bun.DB
	repo repository.Repository[*SearchLog]
}

// NewBunSearchLogRepository creates a search log repository.
func NewBunSearchLogRepository(db *bun.DB) *BunSearchLogRepository {
	return &BunSearchLogRepository{db: db, repo: NewSearchLogRepository(db)}
}

func (r *BunSearchLogRepository) Create(ctx context.Context, entry *SearchLog) (*SearchLog, error) {
	return r.repo.Create(ctx, entry)
}

func (r *BunSearchLogRepository) List(ctx context.Context) ([]*SearchLog, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at ASC")
	}))
	return records, err
}

func (r *BunSearchLogRepository) CountBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return r.db.NewSelect().
		Model((*SearchLog)(nil)).
		Where("?TableAlias.created_at < ?", cutoff).
		Count(ctx)
}

func (r *BunSearchLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*SearchLog)(nil)).
		Where("?TableAlias.created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete search logs: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
