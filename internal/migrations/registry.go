package migrations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-manual/catalog"
	"github.com/goliatone/go-manual/files"
	"github.com/goliatone/go-manual/users"
	"github.com/uptrace/bun"
)

var (
	ErrStepNameRequired = errors.New("migrations: step name required")
	ErrStepExists       = errors.New("migrations: step already registered")
)

// Index describes a secondary index created after the tables of a step.
type Index struct {
	Name    string
	Model   any
	Columns []string
	Unique  bool
}

// Step is a named group of tables and indexes.
type Step struct {
	Name    string
	Models  []any
	Indexes []Index
}

// Registry stores schema steps in registration order.
type Registry struct {
	mu    sync.RWMutex
	steps []Step
	names map[string]struct{}
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: map[string]struct{}{}}
}

// Register appends a step.
func (r *Registry) Register(step Step) error {
	name := strings.TrimSpace(step.Name)
	if name == "" {
		return ErrStepNameRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrStepExists, name)
	}
	step.Name = name
	r.names[name] = struct{}{}
	r.steps = append(r.steps, step)
	return nil
}

// Steps returns the registered steps in order.
func (r *Registry) Steps() []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Apply creates every table and index that does not exist yet. It is safe to
// run repeatedly.
func (r *Registry) Apply(ctx context.Context, db bun.IDB) error {
	for _, step := range r.Steps() {
		for _, model := range step.Models {
			db.Dialect().Tables().Register(model)
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("migrations: %s: create table: %w", step.Name, err)
			}
		}
		for _, idx := range step.Indexes {
			q := db.NewCreateIndex().
				Model(idx.Model).
				Index(idx.Name).
				Column(idx.Columns...).
				IfNotExists()
			if idx.Unique {
				q = q.Unique()
			}
			if _, err := q.Exec(ctx); err != nil {
				return fmt.Errorf("migrations: %s: create index %s: %w", step.Name, idx.Name, err)
			}
		}
	}
	return nil
}

// Default returns the schema of the manual service.
func Default() *Registry {
	r := NewRegistry()
	must(r.Register(Step{
		Name:   "users",
		Models: []any{(*users.User)(nil)},
	}))
	must(r.Register(Step{
		Name:   "catalog",
		Models: []any{(*catalog.Category)(nil), (*catalog.Item)(nil), (*catalog.ItemImage)(nil)},
		Indexes: []Index{
			{Name: "manual_items_category_slug_idx", Model: (*catalog.Item)(nil), Columns: []string{"category_id", "slug"}, Unique: true},
			{Name: "manual_item_images_item_idx", Model: (*catalog.ItemImage)(nil), Columns: []string{"item_id"}},
		},
	}))
	must(r.Register(Step{
		Name:   "search_logs",
		Models: []any{(*catalog.SearchLog)(nil)},
		Indexes: []Index{
			{Name: "search_logs_created_at_idx", Model: (*catalog.SearchLog)(nil), Columns: []string{"created_at"}},
		},
	}))
	must(r.Register(Step{
		Name:   "files",
		Models: []any{(*files.File)(nil)},
	}))
	return r
}

// Migrate applies the default schema to db.
func Migrate(ctx context.Context, db bun.IDB) error {
	return Default().Apply(ctx, db)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
