package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-manual/internal/auth"
	"github.com/goliatone/go-manual/internal/permissions"
	"github.com/goliatone/go-manual/internal/validation"
)

// Access is the minimum caller level of a procedure.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessAdmin
)

func (a Access) String() string {
	switch a {
	case AccessProtected:
		return "protected"
	case AccessAdmin:
		return "admin"
	default:
		return "public"
	}
}

// Kind separates read procedures from writes.
type Kind string

const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
)

var (
	errProcedureNotFound = errors.New("procedure not found")
	errProcedureExists   = errors.New("procedure already registered")
	errMethodNotAllowed  = errors.New("method not allowed")
)

const maxInputBytes = 1 << 20

// Procedure is a named remote call.
type Procedure interface {
	Name() string
	Kind() Kind
	Access() Access
	Call(ctx context.Context, raw []byte) (any, error)
}

type procedure[In, Out any] struct {
	name   string
	kind   Kind
	access Access
	fn     func(context.Context, In) (Out, error)
}

// Query declares a read procedure.
func Query[In, Out any](name string, access Access, fn func(context.Context, In) (Out, error)) Procedure {
	return &procedure[In, Out]{name: name, kind: KindQuery, access: access, fn: fn}
}

// Mutation declares a write procedure.
func Mutation[In, Out any](name string, access Access, fn func(context.Context, In) (Out, error)) Procedure {
	return &procedure[In, Out]{name: name, kind: KindMutation, access: access, fn: fn}
}

func (p *procedure[In, Out]) Name() string   { return p.name }
func (p *procedure[In, Out]) Kind() Kind     { return p.kind }
func (p *procedure[In, Out]) Access() Access { return p.access }

// Call decodes raw into In, validates it when In implements
// ozzo.Validatable and invokes the handler. Empty input decodes to the zero
// value.
func (p *procedure[In, Out]) Call(ctx context.Context, raw []byte) (any, error) {
	var input In
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := decodeJSON(bytes.NewReader(trimmed), &input); err != nil {
			return nil, fmt.Errorf("%w: invalid input: %v", errBadRequest, err)
		}
	}
	if v, ok := any(&input).(ozzo.Validatable); ok {
		if err := validation.FromOzzo(p.name, v.Validate()); err != nil {
			return nil, err
		}
	}
	return p.fn(ctx, input)
}

// Observer receives one call per procedure invocation.
type Observer interface {
	ObserveRequest(procedure string, status int, elapsed time.Duration)
}

// Registry routes /api/{name} requests to procedures.
type Registry struct {
	mu         sync.RWMutex
	procedures map[string]Procedure
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{procedures: map[string]Procedure{}}
}

// Register adds procedures. Names must be unique.
func (r *Registry) Register(procs ...Procedure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range procs {
		if p == nil {
			continue
		}
		name := strings.TrimSpace(p.Name())
		if name == "" {
			return fmt.Errorf("%w: blank name", errBadRequest)
		}
		if _, ok := r.procedures[name]; ok {
			return fmt.Errorf("%w: %s", errProcedureExists, name)
		}
		r.procedures[name] = p
	}
	return nil
}

// Lookup returns the procedure registered as name.
func (r *Registry) Lookup(name string) (Procedure, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.procedures[name]
	return p, ok
}

// Names lists the registered procedure names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.procedures))
	for name := range r.procedures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke checks access and calls the procedure.
func (r *Registry) Invoke(ctx context.Context, name string, raw []byte) (any, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errProcedureNotFound, name)
	}
	if err := checkAccess(ctx, p.Access()); err != nil {
		return nil, err
	}
	return p.Call(ctx, raw)
}

func checkAccess(ctx context.Context, access Access) error {
	if access == AccessPublic {
		return nil
	}
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		return auth.ErrUnauthorized
	}
	if access == AccessAdmin && !actor.IsAdmin() {
		return permissions.Error{Permission: "admin"}
	}
	return nil
}

// readInput returns the raw JSON input of a request: the input query
// parameter for GET, the body for POST.
func readInput(r *http.Request, kind Kind) ([]byte, error) {
	switch r.Method {
	case http.MethodGet:
		if kind != KindQuery {
			return nil, fmt.Errorf("%w: %s requires POST", errMethodNotAllowed, kind)
		}
		return []byte(r.URL.Query().Get("input")), nil
	case http.MethodPost:
		if r.Body == nil {
			return nil, nil
		}
		defer r.Body.Close()
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxInputBytes+1))
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", errBadRequest, err)
		}
		if len(raw) > maxInputBytes {
			return nil, fmt.Errorf("%w: input too large", errBadRequest)
		}
		return raw, nil
	default:
		return nil, errMethodNotAllowed
	}
}

// UnknownProcedure is the label observers receive for names that are not
// registered, keeping observed label values to the registered set.
const UnknownProcedure = "unknown"

func (api *API) handleProcedure(w http.ResponseWriter, r *http.Request) {
	started := api.now()
	name := r.PathValue("name")
	label := UnknownProcedure
	status := http.StatusOK
	defer func() {
		if api.observer != nil {
			api.observer.ObserveRequest(label, status, api.now().Sub(started))
		}
	}()

	logger := api.requestLogger(r)
	p, ok := api.registry.Lookup(name)
	if !ok {
		status = writeError(w, fmt.Errorf("%w: %q", errProcedureNotFound, name))
		return
	}
	label = name
	raw, err := readInput(r, p.Kind())
	if err != nil {
		status = writeError(w, err)
		return
	}
	result, err := api.registry.Invoke(r.Context(), name, raw)
	if err != nil {
		status, _ = mapError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("http.procedure.failed", "procedure", name, "error", err)
		} else {
			logger.Debug("http.procedure.rejected", "procedure", name, "status", status, "error", err)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, status, resultResponse{Result: result})
}

// rawInput lets tests and the CLI build inputs without a request.
func rawInput(v any) []byte {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
