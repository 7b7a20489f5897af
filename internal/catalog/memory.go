package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryCategoryRepository is an in-memory CategoryRepository.
type MemoryCategoryRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Category
	bySlug map[string]uuid.UUID
}

// NewMemoryCategoryRepository constructs an empty category repository.
func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{
		byID:   make(map[uuid.UUID]*Category),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (r *MemoryCategoryRepository) Create(_ context.Context, category *Category) (*Category, error) {
	cloned := cloneCategory(category)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneCategory(cloned), nil
}

func (r *MemoryCategoryRepository) Update(_ context.Context, category *Category) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[category.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: category.ID.String()}
	}
	cloned := cloneCategory(category)
	delete(r.bySlug, existing.Slug)
	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneCategory(cloned), nil
}

func (r *MemoryCategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: id.String()}
	}
	return cloneCategory(record), nil
}

func (r *MemoryCategoryRepository) GetBySlug(_ context.Context, slug string) (*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: slug}
	}
	return cloneCategory(r.byID[id]), nil
}

func (r *MemoryCategoryRepository) List(_ context.Context) ([]*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Category, 0, len(r.byID))
	for _, record := range r.byID {
		out = append(out, cloneCategory(record))
	}
	sortCategories(out)
	return out, nil
}

func (r *MemoryCategoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "category", Key: id.String()}
	}
	delete(r.bySlug, record.Slug)
	delete(r.byID, id)
	return nil
}

// MemoryItemRepository is an in-memory ItemRepository.
type MemoryItemRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Item
}

// NewMemoryItemRepository constructs an empty item repository.
func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{byID: make(map[uuid.UUID]*Item)}
}

func (r *MemoryItemRepository) Create(_ context.Context, item *Item) (*Item, error) {
	cloned := cloneItem(item)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	return cloneItem(cloned), nil
}

func (r *MemoryItemRepository) Update(_ context.Context, item *Item) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[item.ID]; !ok {
		return nil, &NotFoundError{Resource: "item", Key: item.ID.String()}
	}
	cloned := cloneItem(item)
	r.byID[cloned.ID] = cloned
	return cloneItem(cloned), nil
}

func (r *MemoryItemRepository) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "item", Key: id.String()}
	}
	return cloneItem(record), nil
}

func (r *MemoryItemRepository) GetBySlug(_ context.Context, categoryID uuid.UUID, slug string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.byID {
		if record.CategoryID == categoryID && record.Slug == slug {
			return cloneItem(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "item", Key: slug}
}

func (r *MemoryItemRepository) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]*Item, error) {
	return r.collect(func(item *Item) bool { return item.CategoryID == categoryID }), nil
}

func (r *MemoryItemRepository) ListAll(_ context.Context) ([]*Item, error) {
	return r.collect(func(*Item) bool { return true }), nil
}

func (r *MemoryItemRepository) SearchTitles(_ context.Context, query string) ([]*Item, error) {
	needle := strings.ToLower(query)
	return r.collect(func(item *Item) bool {
		return strings.Contains(strings.ToLower(item.Title), needle)
	}), nil
}

func (r *MemoryItemRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return &NotFoundError{Resource: "item", Key: id.String()}
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryItemRepository) DeleteByCategory(_ context.Context, categoryID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, record := range r.byID {
		if record.CategoryID == categoryID {
			delete(r.byID, id)
			removed++
		}
	}
	return removed, nil
}

func (r *MemoryItemRepository) collect(keep func(*Item) bool) []*Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Item, 0)
	for _, record := range r.byID {
		if keep(record) {
			out = append(out, cloneItem(record))
		}
	}
	sortItems(out)
	return out
}

// MemoryItemImageRepository is an in-memory ItemImageRepository.
type MemoryItemImageRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*ItemImage
}

// NewMemoryItemImageRepository constructs an empty image repository.
func NewMemoryItemImageRepository() *MemoryItemImageRepository {
	return &MemoryItemImageRepository{byID: make(map[uuid.UUID]*ItemImage)}
}

func (r *MemoryItemImageRepository) Create(_ context.Context, image *ItemImage) (*ItemImage, error) {
	cloned := cloneItemImage(image)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	return cloneItemImage(cloned), nil
}

func (r *MemoryItemImageRepository) Update(_ context.Context, image *ItemImage) (*ItemImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[image.ID]; !ok {
		return nil, &NotFoundError{Resource: "item image", Key: image.ID.String()}
	}
	cloned := cloneItemImage(image)
	r.byID[cloned.ID] = cloned
	return cloneItemImage(cloned), nil
}

func (r *MemoryItemImageRepository) GetByID(_ context.Context, id uuid.UUID) (*ItemImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "item image", Key: id.String()}
	}
	return cloneItemImage(record), nil
}

func (r *MemoryItemImageRepository) ListByItem(_ context.Context, itemID uuid.UUID) ([]*ItemImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ItemImage, 0)
	for _, record := range r.byID {
		if record.ItemID == itemID {
			out = append(out, cloneItemImage(record))
		}
	}
	sortImages(out)
	return out, nil
}

func (r *MemoryItemImageRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return &NotFoundError{Resource: "item image", Key: id.String()}
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryItemImageRepository) DeleteByItems(_ context.Context, itemIDs []uuid.UUID) (int, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	targets := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		targets[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, record := range r.byID {
		if _, ok := targets[record.ItemID]; ok {
			delete(r.byID, id)
			removed++
		}
	}
	return removed, nil
}

// MemorySearchLogRepository is an in-memory SearchLogRepository.
type MemorySearchLogRepository struct {
	mu      sync.RWMutex
	entries []*SearchLog
}

// NewMemorySearchLogRepository constructs an empty search log repository.
func NewMemorySearchLogRepository() *MemorySearchLogRepository {
	return &MemorySearchLogRepository{}
}

func (r *MemorySearchLogRepository) Create(_ context.Context, entry *SearchLog) (*SearchLog, error) {
	cloned := *entry

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, &cloned)
	out := cloned
	return &out, nil
}

func (r *MemorySearchLogRepository) List(_ context.Context) ([]*SearchLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*SearchLog, 0, len(r.entries))
	for _, entry := range r.entries {
		cloned := *entry
		out = append(out, &cloned)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemorySearchLogRepository) CountBefore(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, entry := range r.entries {
		if entry.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (r *MemorySearchLogRepository) DeleteBefore(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	removed := 0
	for _, entry := range r.entries {
		if entry.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	r.entries = kept
	return removed, nil
}
