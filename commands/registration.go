package commands

import (
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-manual/internal/commands"
	markdowncmd "github.com/goliatone/go-manual/internal/commands/markdown"
	searchlogcmd "github.com/goliatone/go-manual/internal/commands/searchlogs"
	"github.com/goliatone/go-manual/internal/di"
	"github.com/goliatone/go-manual/internal/markdown"
	"github.com/goliatone/go-manual/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// CleanupSearchLogsCron overrides the default cron expression of the search log cleanup handler.
	CleanupSearchLogsCron string
	// ImportReporter receives every markdown import result, including partial ones.
	ImportReporter func(*markdown.ImportResult)
	// ExportReporter receives every markdown export result.
	ExportReporter func(*markdown.ExportResult)
	// CleanupReporter receives the number of pruned search log rows.
	CleanupReporter func(removed int, dryRun bool)
}

// RegistrationResult lists the handlers built from a container and the
// dispatcher subscriptions they hold.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// ErrNoHandlers is returned when the container enables no command backed feature.
var ErrNoHandlers = errors.New("no command handlers registered; enable the markdown or search log features")

type registrar struct {
	opts   RegistrationOptions
	result *RegistrationResult
	errs   []error
}

func (r *registrar) add(handler any) {
	r.result.Handlers = append(r.result.Handlers, handler)

	if r.opts.Registry != nil {
		r.collect(r.opts.Registry.RegisterCommand(handler))
	}
	if r.opts.Dispatcher != nil {
		sub, err := r.opts.Dispatcher.RegisterCommand(handler)
		r.collect(err)
		if err == nil && sub != nil {
			r.result.Subscriptions = append(r.result.Subscriptions, sub)
		}
	}
	if scheduled, ok := handler.(command.CronCommand); ok && r.opts.CronRegistrar != nil {
		r.collect(r.opts.CronRegistrar(scheduled.CronOptions(), scheduled.CronHandler()))
	}
}

func (r *registrar) collect(err error) {
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

// RegisterContainerCommands builds the handlers for every enabled feature of
// container and hands each one to the registry, dispatcher and cron
// registrar set in opts. Registration errors are joined; handlers that
// registered cleanly stay in the result.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}
	cfg := container.Config

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	if opts.Registry != nil && opts.CronRegistrar != nil {
		if reg, ok := opts.Registry.(interface {
			SetCronRegister(func(command.HandlerConfig, any) error) *command.Registry
		}); ok {
			reg.SetCronRegister(opts.CronRegistrar)
		}
	}

	r := &registrar{opts: opts, result: &RegistrationResult{}}

	if service := container.MarkdownService(); service != nil && cfg.Features.Markdown {
		logger := internalcommands.CommandLogger(provider, "markdown")
		var importOpts []markdowncmd.ImportOption
		if opts.ImportReporter != nil {
			importOpts = append(importOpts, markdowncmd.WithImportReporter(opts.ImportReporter))
		}
		var exportOpts []markdowncmd.ExportOption
		if opts.ExportReporter != nil {
			exportOpts = append(exportOpts, markdowncmd.WithExportReporter(opts.ExportReporter))
		}
		r.add(markdowncmd.NewImportHandler(service, logger, importOpts...))
		r.add(markdowncmd.NewExportHandler(service, logger, exportOpts...))
	}

	if service := container.CatalogService(); service != nil && cfg.Features.SearchLog {
		cleanupOpts := []searchlogcmd.CleanupOption{
			searchlogcmd.CleanupWithRetention(cfg.Search.LogRetention),
		}
		if expr := strings.TrimSpace(opts.CleanupSearchLogsCron); expr != "" {
			cleanupOpts = append(cleanupOpts, searchlogcmd.CleanupWithCronExpression(expr))
		}
		if opts.CleanupReporter != nil {
			cleanupOpts = append(cleanupOpts, searchlogcmd.CleanupWithReporter(opts.CleanupReporter))
		}
		r.add(searchlogcmd.NewCleanupHandler(service, internalcommands.CommandLogger(provider, "search_logs"), cleanupOpts...))
	}

	if len(r.result.Handlers) == 0 {
		return r.result, ErrNoHandlers
	}
	return r.result, errors.Join(r.errs...)
}
