package manual

import (
	"context"
	"net/http"

	"github.com/goliatone/go-manual/internal/auth"
	"github.com/goliatone/go-manual/internal/catalog"
	"github.com/goliatone/go-manual/internal/di"
	"github.com/goliatone/go-manual/internal/files"
	"github.com/goliatone/go-manual/internal/markdown"
	"github.com/goliatone/go-manual/internal/users"
)

// CatalogService exports the categories and items service contract.
type CatalogService = catalog.Service

// FilesService exports the uploaded files service contract.
type FilesService = files.Service

// UsersService exports the accounts service contract.
type UsersService = users.Service

// MarkdownService exports the markdown import and export service.
type MarkdownService = *markdown.Service

// Tokens exports the session token issuer.
type Tokens = *auth.Tokens

// Option overrides container wiring.
type Option = di.Option

// Module represents the top level manual runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a manual module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	return NewWithContext(context.Background(), cfg, opts...)
}

// NewWithContext is New with a context bounding storage setup.
func NewWithContext(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Catalog returns the categories and items service.
func (m *Module) Catalog() CatalogService {
	return m.container.CatalogService()
}

// Files returns the files service, or nil when files are disabled.
func (m *Module) Files() FilesService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.FilesService()
}

// Users returns the accounts service.
func (m *Module) Users() UsersService {
	return m.container.UsersService()
}

// Markdown returns the markdown import and export service.
func (m *Module) Markdown() MarkdownService {
	return m.container.MarkdownService()
}

// Tokens returns the session token issuer.
func (m *Module) Tokens() Tokens {
	return m.container.Tokens()
}

// Handler returns the HTTP handler serving the procedure API, file
// transfers, health and metrics.
func (m *Module) Handler() http.Handler {
	return m.container.API().Handler()
}

// Close releases resources owned by the module.
func (m *Module) Close() error {
	if m == nil {
		return nil
	}
	return m.container.Close()
}
