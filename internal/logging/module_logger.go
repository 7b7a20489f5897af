package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-manual/pkg/interfaces"
)

const (
	rootModule     = "manual"
	catalogModule  = "manual.catalog"
	filesModule    = "manual.files"
	usersModule    = "manual.users"
	renderModule   = "manual.render"
	httpModule     = "manual.http"
	markdownModule = "manual.markdown"
	storageModule  = "manual.storage"
	commandsModule = "manual.commands"
)

const (
	fieldMarkdownPath   = "markdown_path"
	fieldMarkdownAction = "sync_action"
	fieldActor          = "actor_id"
	fieldRequestID      = "request_id"
)

// ModuleLogger returns the logger for module, tagged with a "module" field.
// A nil provider, or one that returns nil, yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// RootLogger returns the top level manual logger.
func RootLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, rootModule)
}

// CatalogLogger returns the logger for categories, items and search.
func CatalogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, catalogModule)
}

// FilesLogger returns the logger for uploads and blob storage.
func FilesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, filesModule)
}

// UsersLogger returns the logger for accounts and sessions.
func UsersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, usersModule)
}

// RenderLogger returns the logger for the content renderer.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// HTTPLogger returns the logger for the HTTP API.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// MarkdownLogger returns the logger for markdown import and export.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// StorageLogger returns the logger for database access.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// CommandsLogger returns the logger for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithMarkdownContext adds the file path and sync action to logger. Blank
// values are skipped.
func WithMarkdownContext(logger interfaces.Logger, path, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldMarkdownPath] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldMarkdownAction] = trimmed
	}
	return WithFields(logger, fields)
}

// WithRequest adds request scoped fields. Blank values are skipped.
func WithRequest(logger interfaces.Logger, requestID, actorID string) interfaces.Logger {
	fields := map[string]any{}
	if requestID != "" {
		fields[fieldRequestID] = requestID
	}
	if actorID != "" {
		fields[fieldActor] = actorID
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
