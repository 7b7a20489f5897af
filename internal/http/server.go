package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-manual/internal/auth"
	"github.com/goliatone/go-manual/internal/catalog"
	"github.com/goliatone/go-manual/internal/files"
	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/internal/openapi"
	"github.com/goliatone/go-manual/internal/render"
	"github.com/goliatone/go-manual/internal/users"
	"github.com/goliatone/go-manual/pkg/interfaces"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// UploadObserver receives one call per upload attempt.
type UploadObserver interface {
	ObserveUpload(ok bool, size int64)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Option configures the API.
type Option func(*API)

// WithLogger sets the API logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithFiles enables the files procedures and routes.
func WithFiles(svc files.Service) Option {
	return func(api *API) {
		api.files = svc
	}
}

// WithUsers lets auth.me return the stored user record.
func WithUsers(svc users.Service) Option {
	return func(api *API) {
		api.users = svc
	}
}

// WithTokens enables session tokens. Without tokens every request is
// anonymous.
func WithTokens(tokens *auth.Tokens) Option {
	return func(api *API) {
		api.tokens = tokens
	}
}

// WithRenderer sets the renderer used by manual.preview.
func WithRenderer(renderer *render.Renderer) Option {
	return func(api *API) {
		if renderer != nil {
			api.renderer = renderer
		}
	}
}

// WithObserver records procedure timings.
func WithObserver(observer Observer) Option {
	return func(api *API) {
		api.observer = observer
	}
}

// WithUploadObserver records upload outcomes.
func WithUploadObserver(observer UploadObserver) Option {
	return func(api *API) {
		api.uploads = observer
	}
}

// WithMetricsHandler mounts handler on GET /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(api *API) {
		api.metrics = handler
	}
}

// WithHealthCheck adds a check to GET /healthz.
func WithHealthCheck(check HealthCheck) Option {
	return func(api *API) {
		if check != nil {
			api.health = append(api.health, check)
		}
	}
}

// WithBasePath mounts every route under path.
func WithBasePath(path string) Option {
	return func(api *API) {
		api.basePath = strings.TrimSpace(path)
	}
}

// WithMaxUpload bounds the multipart request size.
func WithMaxUpload(size int64) Option {
	return func(api *API) {
		if size > 0 {
			api.maxUpload = size
		}
	}
}

// WithClock overrides the clock used for timings.
func WithClock(now func() time.Time) Option {
	return func(api *API) {
		if now != nil {
			api.now = now
		}
	}
}

// API serves the manual procedures and file routes.
type API struct {
	catalog   catalog.Service
	files     files.Service
	users     users.Service
	tokens    *auth.Tokens
	renderer  *render.Renderer
	observer  Observer
	uploads   UploadObserver
	metrics   http.Handler
	health    []HealthCheck
	logger    interfaces.Logger
	basePath  string
	maxUpload int64
	now       func() time.Time
	registry  *Registry
}

// New builds the API and registers its procedures.
func New(catalogSvc catalog.Service, opts ...Option) *API {
	if catalogSvc == nil {
		panic("http: catalog service required")
	}
	api := &API{
		catalog:   catalogSvc,
		renderer:  render.NewRenderer(),
		logger:    logging.NoOp(),
		maxUpload: 50 << 20,
		now:       time.Now,
		registry:  NewRegistry(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}

	procs := append(api.manualProcedures(), api.authProcedures()...)
	if api.files != nil {
		procs = append(procs, api.fileProcedures()...)
	}
	if err := api.registry.Register(procs...); err != nil {
		panic(err)
	}
	return api
}

// Registry exposes the procedure registry.
func (api *API) Registry() *Registry {
	return api.registry
}

// Handler returns the routed handler wrapped with request ids and session
// resolution.
func (api *API) Handler() http.Handler {
	mux := http.NewServeMux()
	procedurePath := joinPath(api.basePath, "/api/{name}")
	mux.HandleFunc("GET "+procedurePath, api.handleProcedure)
	mux.HandleFunc("POST "+procedurePath, api.handleProcedure)

	if api.files != nil {
		mux.HandleFunc("POST "+joinPath(api.basePath, "/files/upload"), api.handleUpload)
		mux.HandleFunc("GET "+joinPath(api.basePath, "/files/{id}"), api.handleDownload)
	}
	if api.metrics != nil {
		mux.Handle("GET "+joinPath(api.basePath, "/metrics"), api.metrics)
	}
	mux.HandleFunc("GET "+joinPath(api.basePath, "/healthz"), api.handleHealth)
	mux.HandleFunc("GET "+joinPath(api.basePath, "/openapi.json"), api.handleOpenAPI)

	handler := auth.Middleware(api.tokens,
		auth.WithUserLookup(userLookup(api.users)),
		auth.WithMiddlewareLogger(api.logger),
	)(mux)
	return withRequestID(handler)
}

// OpenAPI describes every registered procedure.
func (api *API) OpenAPI() *openapi.Document {
	doc := openapi.NewDocument("Manual API", "1")
	names := api.registry.Names()
	for _, name := range names {
		proc, _ := api.registry.Lookup(name)
		doc.AddProcedure(joinPath(api.basePath, "/api/"+name), openapi.Procedure{
			Name:   name,
			Kind:   string(proc.Kind()),
			Access: proc.Access().String(),
		})
	}
	doc.SetExtension("x-procedure-count", len(names))
	return doc
}

func (api *API) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.OpenAPI())
}

func userLookup(svc users.Service) auth.UserLookup {
	if svc == nil {
		return nil
	}
	return svc
}

func (api *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	for _, check := range api.health {
		if err := check(r.Context()); err != nil {
			api.logger.Error("http.health.failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (api *API) requestLogger(r *http.Request) interfaces.Logger {
	actorID := ""
	if id, ok := auth.ActorID(r.Context()); ok {
		actorID = id.String()
	}
	return logging.WithRequest(api.logger, requestIDFromContext(r.Context()), actorID)
}

type requestIDKey struct{}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
