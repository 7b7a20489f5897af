package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ErrInvalid is the sentinel behind every *Error.
var ErrInvalid = errors.New("validation failed")

// Issue is a single field failure.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries the field issues of a rejected input.
type Error struct {
	Scope  string
	Issues []Issue
}

func (e *Error) Error() string {
	prefix := ErrInvalid.Error()
	if e.Scope != "" {
		prefix = e.Scope + ": " + prefix
	}
	if len(e.Issues) == 0 {
		return prefix
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return prefix + ": " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

// New builds an Error from a single field message.
func New(scope, field, message string) error {
	return &Error{Scope: scope, Issues: []Issue{{Field: field, Message: message}}}
}

// FromOzzo converts ozzo-validation output into an *Error. Errors that are
// not validation failures pass through unchanged.
func FromOzzo(scope string, err error) error {
	if err == nil {
		return nil
	}
	var internal ozzo.InternalError
	if errors.As(err, &internal) {
		return err
	}
	var fields ozzo.Errors
	if errors.As(err, &fields) {
		issues := make([]Issue, 0, len(fields))
		for field, fieldErr := range fields {
			if fieldErr == nil {
				continue
			}
			issues = append(issues, Issue{Field: field, Message: fieldErr.Error()})
		}
		sort.Slice(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
		return &Error{Scope: scope, Issues: issues}
	}
	return &Error{Scope: scope, Issues: []Issue{{Field: "input", Message: err.Error()}}}
}

// Issues extracts the field issues carried by err.
func Issues(err error) []Issue {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return nil
}

// Title is the shared rule for user facing titles and names.
var Title = []ozzo.Rule{ozzo.Required, ozzo.RuneLength(1, 255)}

// Query is the shared rule for search queries.
var Query = []ozzo.Rule{ozzo.Required, ozzo.RuneLength(1, 255)}

// RequiredUUID rejects the nil UUID, which ozzo's Required accepts because
// the array is never empty.
var RequiredUUID = ozzo.By(func(value any) error {
	switch v := value.(type) {
	case uuid.UUID:
		if v == uuid.Nil {
			return ozzo.NewError("validation_required", "cannot be blank")
		}
	case *uuid.UUID:
		if v == nil || *v == uuid.Nil {
			return ozzo.NewError("validation_required", "cannot be blank")
		}
	}
	return nil
})
