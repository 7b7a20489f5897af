package commands

import (
	"context"
	"maps"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/pkg/interfaces"
)

// DefaultTimeout bounds a single command run unless a handler overrides it.
const DefaultTimeout = 30 * time.Second

// HandlerOption configures a Handler.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler adapts a command function to command.Commander[T]. It validates the
// message, bounds the run, and reports a classified Outcome.
type Handler[T command.Message] struct {
	run       command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	fields    func(T) map[string]any
	observers []Observer[T]
	now       func() time.Time
}

// NewHandler panics on a nil function.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: nil command function")
	}
	h := &Handler[T]{
		run:     fn,
		logger:  logging.NoOp(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return rejectMessage(err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	name := command.GetMessageType(msg)
	fields := map[string]any{"command": name}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if h.fields != nil {
		maps.Copy(fields, h.fields(msg))
	}
	logger := logging.WithFields(h.logger, fields)

	started := h.now()
	err := ctx.Err()
	if err == nil {
		logger.Debug("command.execute.start")
		err = h.run(ctx, msg)
		if err == nil {
			err = ctx.Err()
		}
	}
	status, err := Classify(err)

	outcome := Outcome{
		Command:   name,
		Operation: h.operation,
		Fields:    fields,
		Duration:  h.now().Sub(started),
		Err:       err,
		Status:    status,
		Logger:    logger,
	}
	if len(h.observers) == 0 {
		logOutcome(outcome)
	}
	for _, observe := range h.observers {
		observe(ctx, msg, outcome)
	}
	return err
}

// WithTimeout overrides DefaultTimeout. Zero or less runs without a deadline.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = logging.Ensure(logger)
	}
}

// WithOperation names the run in log fields and outcomes.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageFields adds per-message log fields.
func WithMessageFields[T command.Message](fn func(T) map[string]any) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.fields = fn
	}
}

// WithObserver replaces the default outcome log line. Several observers run
// in registration order.
func WithObserver[T command.Message](observer Observer[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		if observer != nil {
			h.observers = append(h.observers, observer)
		}
	}
}

// LogOutcome is an Observer that writes the default outcome log line.
func LogOutcome[T command.Message](_ context.Context, _ T, outcome Outcome) {
	logOutcome(outcome)
}
