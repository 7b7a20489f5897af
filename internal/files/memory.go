package files

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryFileRepository is an in-memory FileRepository.
type MemoryFileRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*File
	byKey map[string]uuid.UUID
}

// NewMemoryFileRepository constructs an empty file repository.
func NewMemoryFileRepository() *MemoryFileRepository {
	return &MemoryFileRepository{
		byID:  make(map[uuid.UUID]*File),
		byKey: make(map[string]uuid.UUID),
	}
}

func (r *MemoryFileRepository) Create(_ context.Context, file *File) (*File, error) {
	cloned := cloneFile(file)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	r.byKey[cloned.Key] = cloned.ID
	return cloneFile(cloned), nil
}

func (r *MemoryFileRepository) GetByID(_ context.Context, id uuid.UUID) (*File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "file", Key: id.String()}
	}
	return cloneFile(record), nil
}

func (r *MemoryFileRepository) GetByKey(_ context.Context, key string) (*File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, &NotFoundError{Resource: "file", Key: key}
	}
	return cloneFile(r.byID[id]), nil
}

func (r *MemoryFileRepository) List(_ context.Context) ([]*File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*File, 0, len(r.byID))
	for _, record := range r.byID {
		out = append(out, cloneFile(record))
	}
	sortFiles(out)
	return out, nil
}

func (r *MemoryFileRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "file", Key: id.String()}
	}
	delete(r.byKey, record.Key)
	delete(r.byID, id)
	return nil
}
