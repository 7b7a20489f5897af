package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-manual/internal/permissions"
	"github.com/goliatone/go-manual/internal/validation"
	"github.com/goliatone/go-manual/pkg/interfaces"
)

// Status is the result class of one command run.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusFailed      Status = "failed"
	StatusRejected    Status = "rejected"
	StatusInterrupted Status = "interrupted"
)

// Outcome describes a finished command run.
type Outcome struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Err       error
	Status    Status
	Logger    interfaces.Logger
}

// Observer is called once per command run, after the command returns.
type Observer[T command.Message] func(ctx context.Context, msg T, outcome Outcome)

type errorClass struct {
	target  error
	input   bool
	code    string
	message string
	status  Status
}

var errorClasses = []errorClass{
	{context.Canceled, false, "MANUAL_COMMAND_CANCELED", "command cancelled", StatusInterrupted},
	{context.DeadlineExceeded, false, "MANUAL_COMMAND_TIMEOUT", "command deadline exceeded", StatusInterrupted},
	{validation.ErrInvalid, true, "MANUAL_COMMAND_INVALID", "command input rejected", StatusRejected},
	{permissions.ErrPermissionDenied, false, "MANUAL_COMMAND_FORBIDDEN", "command not permitted", StatusRejected},
}

var fallbackClass = errorClass{
	code:    "MANUAL_COMMAND_FAILED",
	message: "command failed",
	status:  StatusFailed,
}

// Classify maps err to a run status and a categorised error. Errors that
// already carry a category keep it.
func Classify(err error) (Status, error) {
	if err == nil {
		return StatusSuccess, nil
	}
	class := fallbackClass
	for _, candidate := range errorClasses {
		if errors.Is(err, candidate.target) {
			class = candidate
			break
		}
	}
	if goerrors.IsWrapped(err) {
		return class.status, err
	}
	if class.input {
		return class.status, goerrors.Wrap(err, goerrors.CategoryValidation, class.message).WithTextCode(class.code)
	}
	return class.status, goerrors.Wrap(err, goerrors.CategoryCommand, class.message).WithTextCode(class.code)
}

func rejectMessage(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command message invalid").
		WithTextCode("MANUAL_COMMAND_MESSAGE_INVALID")
}

func logOutcome(outcome Outcome) {
	if outcome.Logger == nil {
		return
	}
	args := []any{"status", outcome.Status, "duration_ms", outcome.Duration.Milliseconds()}
	switch outcome.Status {
	case StatusSuccess:
		outcome.Logger.Info("command.execute.done", args...)
	case StatusRejected:
		outcome.Logger.Warn("command.execute.rejected", append(args, "error", outcome.Err)...)
	default:
		outcome.Logger.Error("command.execute.failed", append(args, "error", outcome.Err)...)
	}
}
