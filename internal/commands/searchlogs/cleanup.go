package searchlogcmd

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-manual/internal/commands"
	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/pkg/interfaces"
)

const cleanupMessageType = "manual.search_logs.cleanup"

// DefaultRetention is how long search logs are kept when a command does
// not say otherwise.
const DefaultRetention = 90 * 24 * time.Hour

// Pruner removes search log entries older than a cutoff.
type Pruner interface {
	PruneSearchLogs(ctx context.Context, cutoff time.Time, dryRun bool) (int, error)
}

// CleanupSearchLogsCommand removes search log entries older than
// OlderThan. Zero uses the handler retention. DryRun only counts them.
type CleanupSearchLogsCommand struct {
	OlderThan time.Duration `json:"older_than,omitempty"`
	DryRun    bool          `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (CleanupSearchLogsCommand) Type() string { return cleanupMessageType }

// Validate implements command.Message.
func (cmd CleanupSearchLogsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OlderThan, validation.Min(time.Duration(0))),
	)
}

type cleanupConfig struct {
	cronConfig command.HandlerConfig
	retention  time.Duration
	now        func() time.Time
	report     func(removed int, dryRun bool)
}

// CleanupOption customises the cleanup handler.
type CleanupOption func(*cleanupConfig)

// CleanupWithCronExpression overrides the cron expression.
func CleanupWithCronExpression(expression string) CleanupOption {
	return func(cfg *cleanupConfig) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			cfg.cronConfig.Expression = trimmed
		}
	}
}

// CleanupWithRetention sets the retention used when a command carries none.
func CleanupWithRetention(retention time.Duration) CleanupOption {
	return func(cfg *cleanupConfig) {
		if retention > 0 {
			cfg.retention = retention
		}
	}
}

// CleanupWithClock overrides the clock used to compute the cutoff.
func CleanupWithClock(now func() time.Time) CleanupOption {
	return func(cfg *cleanupConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// CleanupWithReporter receives the count of every successful run.
func CleanupWithReporter(fn func(removed int, dryRun bool)) CleanupOption {
	return func(cfg *cleanupConfig) {
		cfg.report = fn
	}
}

var _ command.Commander[CleanupSearchLogsCommand] = (*CleanupHandler)(nil)

// CleanupHandler prunes the search log.
type CleanupHandler struct {
	inner      *commands.Handler[CleanupSearchLogsCommand]
	cronConfig command.HandlerConfig
}

// NewCleanupHandler binds a CleanupHandler to pruner.
func NewCleanupHandler(pruner Pruner, logger interfaces.Logger, opts ...CleanupOption) *CleanupHandler {
	cfg := cleanupConfig{
		cronConfig: command.HandlerConfig{Expression: "@daily"},
		retention:  DefaultRetention,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	logger = logging.Ensure(logger)

	exec := func(ctx context.Context, msg CleanupSearchLogsCommand) error {
		retention := msg.OlderThan
		if retention <= 0 {
			retention = cfg.retention
		}
		cutoff := cfg.now().UTC().Add(-retention)
		removed, err := pruner.PruneSearchLogs(ctx, cutoff, msg.DryRun)
		if err != nil {
			return err
		}
		logging.WithFields(logger, map[string]any{
			"cutoff":  cutoff,
			"removed": removed,
			"dry_run": msg.DryRun,
		}).Info("search_logs.command.cleanup.completed")
		if cfg.report != nil {
			cfg.report(removed, msg.DryRun)
		}
		return nil
	}

	return &CleanupHandler{
		inner: commands.NewHandler(exec,
			commands.WithLogger[CleanupSearchLogsCommand](logger),
			commands.WithOperation[CleanupSearchLogsCommand]("search_logs.cleanup"),
		),
		cronConfig: cfg.cronConfig,
	}
}

// Execute satisfies command.Commander[CleanupSearchLogsCommand].
func (h *CleanupHandler) Execute(ctx context.Context, msg CleanupSearchLogsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand.
func (h *CleanupHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), CleanupSearchLogsCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *CleanupHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the handler to CLI integrations.
func (h *CleanupHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for search log cleanup.
func (h *CleanupHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"search-logs", "cleanup"},
		Group:       "search-logs",
		Description: "Remove old search log entries; supports dry-run",
	}
}
