package permissions

import (
	"context"
	"errors"
	"strings"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

const (
	ResourceManual = "manual"
	ResourceFiles  = "files"
)

const (
	ManualCreate = "manual:create"
	ManualUpdate = "manual:update"
	ManualDelete = "manual:delete"

	FilesRead   = "files:read"
	FilesCreate = "files:create"
	FilesDelete = "files:delete"
)

var ErrPermissionDenied = errors.New("permissions: denied")

type Error struct {
	Permission string
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Permission) == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Permission
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

// PermissionSet captures the CRUD tokens of one resource.
type PermissionSet struct {
	Read   string `json:"read,omitempty"`
	Create string `json:"create,omitempty"`
	Update string `json:"update,omitempty"`
	Delete string `json:"delete,omitempty"`
}

// ResourcePermissions creates a permission set for a resource.
func ResourcePermissions(resource string) PermissionSet {
	return PermissionSet{
		Read:   Join(resource, ActionRead),
		Create: Join(resource, ActionCreate),
		Update: Join(resource, ActionUpdate),
		Delete: Join(resource, ActionDelete),
	}
}

// Join builds a permission token from resource and action.
func Join(resource string, action Action) string {
	res := normalizeToken(resource)
	act := normalizeToken(string(action))
	if res == "" || act == "" {
		return ""
	}
	return res + ":" + act
}

// Wildcard grants every action on resource.
func Wildcard(resource string) string {
	res := normalizeToken(resource)
	if res == "" {
		return ""
	}
	return res + ":*"
}

// List returns the non-empty permissions in the set.
func (p PermissionSet) List() []string {
	out := make([]string, 0, 4)
	for _, perm := range []string{p.Read, p.Create, p.Update, p.Delete} {
		if perm != "" {
			out = append(out, perm)
		}
	}
	return out
}

type Checker interface {
	Allowed(permission string) bool
}

type CheckerFunc func(permission string) bool

func (fn CheckerFunc) Allowed(permission string) bool {
	return fn(permission)
}

// Set is a static Checker. It understands "resource:*" and "*" grants.
type Set map[string]struct{}

func NewSet(perms ...string) Set {
	set := Set{}
	for _, perm := range perms {
		normalized := normalizePermission(perm)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func (s Set) Allowed(permission string) bool {
	if len(s) == 0 {
		return false
	}
	normalized := normalizePermission(permission)
	if normalized == "" {
		return false
	}
	if _, ok := s[normalized]; ok {
		return true
	}
	resource, _ := splitPermission(normalized)
	if resource != "" {
		if _, ok := s[resource+":*"]; ok {
			return true
		}
	}
	_, ok := s["*"]
	return ok
}

type contextKey string

const checkerKey contextKey = "manual.permissions.checker"

// WithChecker stores a permission checker on the context.
func WithChecker(ctx context.Context, checker Checker) context.Context {
	if ctx == nil || checker == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey, checker)
}

// WithPermissions stores a static permission set on the context. An empty
// list installs a checker that denies everything.
func WithPermissions(ctx context.Context, perms ...string) context.Context {
	if ctx == nil {
		return ctx
	}
	return WithChecker(ctx, NewSet(perms...))
}

// CheckerFromContext returns the configured permission checker if available.
func CheckerFromContext(ctx context.Context) Checker {
	if ctx == nil {
		return nil
	}
	checker, _ := ctx.Value(checkerKey).(Checker)
	return checker
}

// Allowed reports whether permission is granted. Contexts without a checker
// belong to trusted in-process callers and are allowed.
func Allowed(ctx context.Context, permission string) bool {
	return Require(ctx, permission) == nil
}

// Require returns an Error when the context checker rejects permission.
func Require(ctx context.Context, permission string) error {
	normalized := normalizePermission(permission)
	if normalized == "" {
		return nil
	}
	checker := CheckerFromContext(ctx)
	if checker == nil {
		return nil
	}
	if checker.Allowed(normalized) {
		return nil
	}
	return Error{Permission: normalized}
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func normalizePermission(value string) string {
	return normalizeToken(value)
}

func splitPermission(permission string) (string, Action) {
	resource, action, found := strings.Cut(permission, ":")
	if !found {
		return "", ""
	}
	return resource, Action(action)
}
