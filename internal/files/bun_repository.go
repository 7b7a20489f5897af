package files

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunFileRepository implements FileRepository with optional caching.
type BunFileRepository struct {
	repo repository.Repository[*File]
}

// NewBunFileRepository creates a file repository without caching.
func NewBunFileRepository(db *bun.DB) *BunFileRepository {
	return NewBunFileRepositoryWithCache(db, nil, nil)
}

// NewBunFileRepositoryWithCache creates a file repository with caching support.
func NewBunFileRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunFileRepository {
	base := NewFileRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunFileRepository{repo: base}
}

func (r *BunFileRepository) Create(ctx context.Context, file *File) (*File, error) {
	return r.repo.Create(ctx, file)
}

func (r *BunFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*File, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunFileRepository) GetByKey(ctx context.Context, key string) (*File, error) {
	record, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, key)
	}
	return record, nil
}

func (r *BunFileRepository) List(ctx context.Context) ([]*File, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at DESC").OrderExpr("?TableAlias.name ASC")
	}))
	return records, err
}

func (r *BunFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &File{ID: id}); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: "file", Key: key}
	}
	return fmt.Errorf("file repository error: %w", err)
}
