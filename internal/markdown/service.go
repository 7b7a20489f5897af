package markdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-manual/internal/catalog"
	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/pkg/interfaces"
	"github.com/spf13/afero"
)

var (
	ErrCatalogRequired = errors.New("markdown: catalog service required")
	ErrDirRequired     = errors.New("markdown: directory required")
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConverter overrides the markdown converter.
func WithConverter(converter *Converter) Option {
	return func(s *Service) {
		if converter != nil {
			s.converter = converter
		}
	}
}

// Service imports and exports the manual as markdown files.
type Service struct {
	catalog   catalog.Service
	converter *Converter
	logger    interfaces.Logger
}

// NewService builds a Service on top of the catalog.
func NewService(catalogSvc catalog.Service, opts ...Option) *Service {
	if catalogSvc == nil {
		panic(ErrCatalogRequired)
	}
	s := &Service{
		catalog:   catalogSvc,
		converter: NewConverter(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ImportDir imports the layout found in dir.
func (s *Service) ImportDir(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, ErrDirRequired
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("markdown import: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("markdown import: %s is not a directory", dir)
	}
	return s.Import(ctx, os.DirFS(dir), opts)
}

// ExportDir writes the manual below dir, creating it when missing.
func (s *Service) ExportDir(ctx context.Context, dir string, opts ExportOptions) (*ExportResult, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, ErrDirRequired
	}
	if !opts.DryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("markdown export: %w", err)
		}
	}
	return s.Export(ctx, afero.NewBasePathFs(afero.NewOsFs(), dir), opts)
}
