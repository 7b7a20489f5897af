package markdowncmd

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-manual/internal/commands"
	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/internal/markdown"
	"github.com/goliatone/go-manual/pkg/interfaces"
)

const (
	importOperation = "markdown.import"
	exportOperation = "markdown.export"
)

// Service is the part of markdown.Service the handlers need.
type Service interface {
	ImportDir(ctx context.Context, dir string, opts markdown.ImportOptions) (*markdown.ImportResult, error)
	ExportDir(ctx context.Context, dir string, opts markdown.ExportOptions) (*markdown.ExportResult, error)
}

var (
	_ command.Commander[ImportMarkdownCommand] = (*ImportHandler)(nil)
	_ command.Commander[ExportMarkdownCommand] = (*ExportHandler)(nil)
)

// ImportHandler runs ImportMarkdownCommand.
type ImportHandler struct {
	inner  *commands.Handler[ImportMarkdownCommand]
	report func(*markdown.ImportResult)
}

// ImportOption configures an ImportHandler.
type ImportOption func(*ImportHandler)

// WithImportReporter receives the result of every successful run.
func WithImportReporter(fn func(*markdown.ImportResult)) ImportOption {
	return func(h *ImportHandler) {
		h.report = fn
	}
}

// NewImportHandler binds an ImportHandler to service.
func NewImportHandler(service Service, logger interfaces.Logger, opts ...ImportOption) *ImportHandler {
	logger = logging.Ensure(logger)
	h := &ImportHandler{}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	exec := func(ctx context.Context, msg ImportMarkdownCommand) error {
		result, err := service.ImportDir(ctx, msg.Directory, markdown.ImportOptions{DryRun: msg.DryRun})
		if result != nil {
			logging.WithFields(logger, map[string]any{
				"created_count":   result.Created,
				"updated_count":   result.Updated,
				"unchanged_count": result.Unchanged,
				"error_count":     len(result.Errors),
				"dry_run":         msg.DryRun,
			}).Info("markdown.command.import.completed")
			if h.report != nil {
				h.report(result)
			}
		}
		return err
	}

	h.inner = commands.NewHandler(exec,
		commands.WithLogger[ImportMarkdownCommand](logger),
		commands.WithOperation[ImportMarkdownCommand](importOperation),
		commands.WithTimeout[ImportMarkdownCommand](0),
		commands.WithMessageFields(func(msg ImportMarkdownCommand) map[string]any {
			return map[string]any{"directory": msg.Directory, "dry_run": msg.DryRun}
		}),
	)
	return h
}

// Execute satisfies command.Commander[ImportMarkdownCommand].
func (h *ImportHandler) Execute(ctx context.Context, msg ImportMarkdownCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CLIHandler exposes the handler to CLI integrations.
func (h *ImportHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for markdown import.
func (h *ImportHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"markdown", "import"},
		Group:       "markdown",
		Description: "Import a directory of markdown files; supports dry-run",
	}
}

// ExportHandler runs ExportMarkdownCommand.
type ExportHandler struct {
	inner  *commands.Handler[ExportMarkdownCommand]
	report func(*markdown.ExportResult)
}

// ExportOption configures an ExportHandler.
type ExportOption func(*ExportHandler)

// WithExportReporter receives the result of every successful run.
func WithExportReporter(fn func(*markdown.ExportResult)) ExportOption {
	return func(h *ExportHandler) {
		h.report = fn
	}
}

// NewExportHandler binds an ExportHandler to service.
func NewExportHandler(service Service, logger interfaces.Logger, opts ...ExportOption) *ExportHandler {
	logger = logging.Ensure(logger)
	h := &ExportHandler{}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	exec := func(ctx context.Context, msg ExportMarkdownCommand) error {
		result, err := service.ExportDir(ctx, msg.Directory, markdown.ExportOptions{DryRun: msg.DryRun})
		if err != nil {
			return err
		}
		logging.WithFields(logger, map[string]any{
			"categories": result.Categories,
			"items":      result.Items,
			"dry_run":    msg.DryRun,
		}).Info("markdown.command.export.completed")
		if h.report != nil {
			h.report(result)
		}
		return nil
	}

	h.inner = commands.NewHandler(exec,
		commands.WithLogger[ExportMarkdownCommand](logger),
		commands.WithOperation[ExportMarkdownCommand](exportOperation),
		commands.WithTimeout[ExportMarkdownCommand](0),
		commands.WithMessageFields(func(msg ExportMarkdownCommand) map[string]any {
			return map[string]any{"directory": msg.Directory, "dry_run": msg.DryRun}
		}),
	)
	return h
}

// Execute satisfies command.Commander[ExportMarkdownCommand].
func (h *ExportHandler) Execute(ctx context.Context, msg ExportMarkdownCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CLIHandler exposes the handler to CLI integrations.
func (h *ExportHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for markdown export.
func (h *ExportHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"markdown", "export"},
		Group:       "markdown",
		Description: "Export the manual as markdown files",
	}
}
