package users

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

// NewUserRepository creates the base repository for users.
func NewUserRepository(db *bun.DB) repository.Repository[*User] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*User]{
		NewRecord:          func() *User { return &User{} },
		GetID:              func(u *User) uuid.UUID { return u.ID },
		SetID:              func(u *User, id uuid.UUID) { u.ID = id },
		GetIdentifier:      func() string { return "open_id" },
		GetIdentifierValue: func(u *User) string { return u.OpenID },
	})
}

// BunUserRepository implements UserRepository with optional caching.
type BunUserRepository struct {
	repo repository.Repository[*User]
}

// NewBunUserRepository creates a user repository without caching.
func NewBunUserRepository(db *bun.DB) *BunUserRepository {
	return NewBunUserRepositoryWithCache(db, nil, nil)
}

// NewBunUserRepositoryWithCache creates a user repository with caching support.
func NewBunUserRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunUserRepository {
	base := NewUserRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunUserRepository{repo: base}
}

func (r *BunUserRepository) Create(ctx context.Context, user *User) (*User, error) {
	return r.repo.Create(ctx, user)
}

func (r *BunUserRepository) Update(ctx context.Context, user *User) (*User, error) {
	record, err := r.repo.Update(ctx, user,
		repository.UpdateByID(user.ID.String()),
		repository.UpdateColumns("name", "email", "login_method", "role", "updated_at", "last_signed_in"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, user.ID.String())
	}
	return record, nil
}

func (r *BunUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunUserRepository) GetByOpenID(ctx context.Context, openID string) (*User, error) {
	record, err := r.repo.GetByIdentifier(ctx, openID)
	if err != nil {
		return nil, mapRepositoryError(err, openID)
	}
	return record, nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("user repository error: %w", err)
}
