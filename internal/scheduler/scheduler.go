// Package scheduler runs command handlers on cron expressions.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/pkg/interfaces"
	"github.com/robfig/cron/v3"
)

var (
	ErrExpressionRequired = errors.New("scheduler: cron expression required")
	ErrHandlerInvalid     = errors.New("scheduler: handler must be func() error")
)

// Cron schedules command handlers. Expressions use the five field format
// and accept descriptors such as @daily.
type Cron struct {
	cron   *cron.Cron
	parser cron.Parser
	logger interfaces.Logger

	mu      sync.Mutex
	entries []cron.EntryID
}

// Option configures a Cron.
type Option func(*Cron)

// WithLogger sets the scheduler logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Cron) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a stopped scheduler.
func New(opts ...Option) *Cron {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := &Cron{
		parser: parser,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.cron = cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return c
}

// Register schedules handler. It matches the registrar signature used by
// command registration.
func (c *Cron) Register(cfg command.HandlerConfig, handler any) error {
	expr := strings.TrimSpace(cfg.Expression)
	if expr == "" {
		return ErrExpressionRequired
	}
	fn, ok := handler.(func() error)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrHandlerInvalid, handler)
	}
	if _, err := c.parser.Parse(expr); err != nil {
		return fmt.Errorf("scheduler: parse %q: %w", expr, err)
	}

	id, err := c.cron.AddFunc(expr, func() {
		if err := fn(); err != nil {
			c.logger.Error("scheduler.job.failed", "expression", expr, "error", err)
			return
		}
		c.logger.Debug("scheduler.job.completed", "expression", expr)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries = append(c.entries, id)
	c.mu.Unlock()
	c.logger.Info("scheduler.job.registered", "expression", expr)
	return nil
}

// Len returns the number of scheduled handlers.
func (c *Cron) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Start runs the scheduler in the background.
func (c *Cron) Start() {
	c.cron.Start()
}

// Stop halts scheduling and waits for running jobs or ctx, whichever ends
// first.
func (c *Cron) Stop(ctx context.Context) error {
	done := c.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
