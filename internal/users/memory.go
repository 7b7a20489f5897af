package users

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*User
	byOpenID map[string]uuid.UUID
}

// NewMemoryUserRepository constructs an empty user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:     make(map[uuid.UUID]*User),
		byOpenID: make(map[string]uuid.UUID),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *User) (*User, error) {
	cloned := cloneUser(user)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	r.byOpenID[cloned.OpenID] = cloned.ID
	return cloneUser(cloned), nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return nil, &NotFoundError{Key: user.ID.String()}
	}
	cloned := cloneUser(user)
	r.byID[cloned.ID] = cloned
	r.byOpenID[cloned.OpenID] = cloned.ID
	return cloneUser(cloned), nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return cloneUser(record), nil
}

func (r *MemoryUserRepository) GetByOpenID(_ context.Context, openID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOpenID[openID]
	if !ok {
		return nil, &NotFoundError{Key: openID}
	}
	return cloneUser(r.byID[id]), nil
}

func cloneUser(src *User) *User {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.Name = cloneString(src.Name)
	cloned.Email = cloneString(src.Email)
	cloned.LoginMethod = cloneString(src.LoginMethod)
	return &cloned
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
