package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-manual/internal/permissions"
	"github.com/goliatone/go-manual/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingCommand struct {
	Name string
}

func (pingCommand) Type() string { return "manual.test.ping" }

func (c pingCommand) Validate() error {
	if c.Name == "" {
		return errors.New("name required")
	}
	return nil
}

type retryCommand struct{}

func (retryCommand) Type() string { return "manual.test.retry" }

func (retryCommand) Validate() error { return nil }

func collect(outcomes *[]Outcome) HandlerOption[pingCommand] {
	return WithObserver(func(_ context.Context, _ pingCommand, outcome Outcome) {
		*outcomes = append(*outcomes, outcome)
	})
}

func TestClassify(t *testing.T) {
	cases := map[string]struct {
		err      error
		status   Status
		category bool
	}{
		"nil":       {err: nil, status: StatusSuccess},
		"canceled":  {err: context.Canceled, status: StatusInterrupted},
		"deadline":  {err: fmt.Errorf("wait: %w", context.DeadlineExceeded), status: StatusInterrupted},
		"invalid":   {err: &validation.Error{Scope: "item"}, status: StatusRejected, category: true},
		"forbidden": {err: permissions.ErrPermissionDenied, status: StatusRejected},
		"other":     {err: errors.New("disk full"), status: StatusFailed},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, err := Classify(tc.err)
			assert.Equal(t, tc.status, status)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, tc.category, goerrors.IsCategory(err, goerrors.CategoryValidation))
			assert.Equal(t, !tc.category, goerrors.IsCategory(err, goerrors.CategoryCommand))
		})
	}
}

func TestClassifyKeepsExistingCategory(t *testing.T) {
	wrapped := goerrors.Wrap(errors.New("bad"), goerrors.CategoryValidation, "bad input")
	status, err := Classify(wrapped)
	assert.Equal(t, StatusFailed, status)
	assert.Same(t, wrapped, err)
}

func TestHandlerRunsValidMessage(t *testing.T) {
	var outcomes []Outcome
	var seen string
	h := NewHandler(func(_ context.Context, msg pingCommand) error {
		seen = msg.Name
		return nil
	},
		WithOperation[pingCommand]("ping"),
		WithMessageFields(func(msg pingCommand) map[string]any { return map[string]any{"name": msg.Name} }),
		collect(&outcomes),
	)

	require.NoError(t, h.Execute(context.Background(), pingCommand{Name: "a"}))
	assert.Equal(t, "a", seen)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSuccess, outcomes[0].Status)
	assert.Equal(t, "manual.test.ping", outcomes[0].Command)
	assert.Equal(t, map[string]any{"command": "manual.test.ping", "operation": "ping", "name": "a"}, outcomes[0].Fields)
}

func TestHandlerRejectsInvalidMessageWithoutRunning(t *testing.T) {
	var outcomes []Outcome
	called := false
	h := NewHandler(func(context.Context, pingCommand) error {
		called = true
		return nil
	}, collect(&outcomes))

	err := h.Execute(context.Background(), pingCommand{})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
	assert.False(t, called)
	assert.Empty(t, outcomes)
}

func TestHandlerSkipsRunOnDoneContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var outcomes []Outcome
	called := false
	h := NewHandler(func(context.Context, pingCommand) error {
		called = true
		return nil
	}, collect(&outcomes))

	err := h.Execute(ctx, pingCommand{Name: "a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusInterrupted, outcomes[0].Status)
}

func TestHandlerTimeout(t *testing.T) {
	h := NewHandler(func(ctx context.Context, _ pingCommand) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithTimeout[pingCommand](5*time.Millisecond))

	err := h.Execute(context.Background(), pingCommand{Name: "slow"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryCommand))
}

func TestHandlerZeroTimeoutLeavesContextOpen(t *testing.T) {
	h := NewHandler(func(ctx context.Context, _ pingCommand) error {
		if _, ok := ctx.Deadline(); ok {
			return errors.New("unexpected deadline")
		}
		return nil
	}, WithTimeout[pingCommand](0))

	assert.NoError(t, h.Execute(context.Background(), pingCommand{Name: "a"}))
}

func TestHandlerReportsFailureToEveryObserver(t *testing.T) {
	var first, second []Outcome
	h := NewHandler(func(context.Context, pingCommand) error {
		return permissions.ErrPermissionDenied
	}, collect(&first), collect(&second))

	err := h.Execute(context.Background(), pingCommand{Name: "a"})
	assert.ErrorIs(t, err, permissions.ErrPermissionDenied)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, StatusRejected, first[0].Status)
	assert.Equal(t, err, second[0].Err)
}

func TestHandlerRetriedByDispatcher(t *testing.T) {
	attempts := 0
	h := NewHandler(func(context.Context, retryCommand) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithTimeout[retryCommand](time.Second))

	sub := dispatcher.SubscribeCommand(h, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	require.NoError(t, dispatcher.Dispatch(context.Background(), retryCommand{}))
	assert.Equal(t, 3, attempts)
}
