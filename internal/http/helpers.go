package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-manual/internal/auth"
	"github.com/goliatone/go-manual/internal/catalog"
	"github.com/goliatone/go-manual/internal/files"
	"github.com/goliatone/go-manual/internal/permissions"
	"github.com/goliatone/go-manual/internal/users"
	"github.com/goliatone/go-manual/internal/validation"
	"github.com/google/uuid"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message,omitempty"`
	Issues  []validation.Issue `json:"issues,omitempty"`
}

type resultResponse struct {
	Result any `json:"result"`
}

// errorRoute maps a family of errors onto a status and a stable error code.
// Routes are checked in order; the first match wins.
type errorRoute struct {
	status int
	code   string
	match  func(error) bool
}

func isAny(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

func isNotFound(err error) bool {
	var (
		catalogErr *catalog.NotFoundError
		filesErr   *files.NotFoundError
		usersErr   *users.NotFoundError
	)
	return errors.As(err, &catalogErr) || errors.As(err, &filesErr) || errors.As(err, &usersErr) ||
		errors.Is(err, errProcedureNotFound) || errors.Is(err, catalog.ErrSearchLogDisabled)
}

func isInvalid(err error) bool {
	return errors.Is(err, validation.ErrInvalid) || goerrors.IsCategory(err, goerrors.CategoryValidation)
}

var errorRoutes = []errorRoute{
	{http.StatusNotFound, "not_found", isNotFound},
	{http.StatusUnauthorized, "unauthorized", isAny(auth.ErrUnauthorized, auth.ErrTokenInvalid)},
	{http.StatusForbidden, "forbidden", isAny(permissions.ErrPermissionDenied)},
	{http.StatusConflict, "conflict", isAny(catalog.ErrCategorySlugExists, catalog.ErrItemSlugExists, files.ErrFileKeyExists)},
	{http.StatusRequestEntityTooLarge, "too_large", isAny(files.ErrFileTooLarge)},
	{http.StatusBadRequest, "validation_failed", isInvalid},
	{http.StatusBadRequest, "bad_request", isAny(errBadRequest, catalog.ErrSlugInvalid, files.ErrExtensionNotAllowed, files.ErrBodyRequired)},
	{http.StatusMethodNotAllowed, "method_not_allowed", isAny(errMethodNotAllowed)},
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}
	for _, route := range errorRoutes {
		if !route.match(err) {
			continue
		}
		payload := errorResponse{Error: route.code, Message: err.Error()}
		if route.code == "validation_failed" {
			payload.Issues = validation.Issues(err)
		}
		return route.status, payload
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
}

func writeError(w http.ResponseWriter, err error) int {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
	return status
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func decodeJSON(r io.Reader, target any) error {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	return decoder.Decode(target)
}

// joinPath joins base and suffix into a rooted path without a trailing slash.
func joinPath(base, suffix string) string {
	parts := make([]string, 0, 2)
	for _, part := range []string{base, suffix} {
		if trimmed := strings.Trim(strings.TrimSpace(part), "/"); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return "/" + strings.Join(parts, "/")
}

func parseUUID(value string) (uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(value)
}
