package routes

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-manual/internal/catalog"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/google/uuid"
)

const (
	GroupPublic = "public"
	RouteFile   = "file"
	RouteItem   = "item"
)

// DefaultConfig returns the public URL layout. baseURL may be empty for
// host relative links.
func DefaultConfig(baseURL, basePath string) *urlkit.Config {
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    GroupPublic,
				BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
				Path:    strings.TrimRight(strings.TrimSpace(basePath), "/"),
				Paths: map[string]string{
					RouteFile: "/files/:id",
					RouteItem: "/manual/:category/:item",
				},
			},
		},
	}
}

// Resolver builds public URLs from a go-urlkit route manager.
type Resolver struct {
	manager *urlkit.RouteManager
	group   string
}

// NewResolver constructs a resolver for the public group of manager. A nil
// config falls back to DefaultConfig.
func NewResolver(cfg *urlkit.Config) *Resolver {
	if cfg == nil {
		cfg = DefaultConfig("", "")
	}
	return &Resolver{manager: urlkit.NewRouteManager(cfg), group: GroupPublic}
}

// FileURL returns the download URL of a stored file.
func (r *Resolver) FileURL(id uuid.UUID) (string, error) {
	return r.build(RouteFile, map[string]any{"id": id.String()})
}

// ItemURL returns the permalink of an item.
func (r *Resolver) ItemURL(category *catalog.Category, item *catalog.Item) (string, error) {
	if category == nil || item == nil {
		return "", fmt.Errorf("routes: category and item required")
	}
	return r.build(RouteItem, map[string]any{
		"category": category.Slug,
		"item":     item.Slug,
	})
}

func (r *Resolver) build(route string, params map[string]any) (string, error) {
	group, err := r.lookupGroup()
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, route)
	if err != nil {
		return "", err
	}
	for key, value := range params {
		builder.WithParam(key, value)
	}
	return builder.Build()
}

func (r *Resolver) lookupGroup() (group *urlkit.Group, err error) {
	if r == nil || r.manager == nil {
		return nil, fmt.Errorf("routes: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: route group %q not found", r.group)
		}
	}()
	group = r.manager.Group(r.group)
	return group, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("routes: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, nil
}
