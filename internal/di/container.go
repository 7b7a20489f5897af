package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-manual/internal/auth"
	"github.com/goliatone/go-manual/internal/catalog"
	"github.com/goliatone/go-manual/internal/files"
	manualhttp "github.com/goliatone/go-manual/internal/http"
	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/internal/logging/gologger"
	"github.com/goliatone/go-manual/internal/markdown"
	"github.com/goliatone/go-manual/internal/metrics"
	"github.com/goliatone/go-manual/internal/migrations"
	"github.com/goliatone/go-manual/internal/render"
	"github.com/goliatone/go-manual/internal/routes"
	"github.com/goliatone/go-manual/internal/runtimeconfig"
	"github.com/goliatone/go-manual/internal/storage"
	"github.com/goliatone/go-manual/internal/users"
	"github.com/goliatone/go-manual/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Container wires the manual services from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	blobs         files.BlobStore
	now           func() time.Time

	categoryRepo  catalog.CategoryRepository
	itemRepo      catalog.ItemRepository
	imageRepo     catalog.ItemImageRepository
	searchLogRepo catalog.SearchLogRepository
	fileRepo      files.FileRepository
	userRepo      users.UserRepository

	metrics  *metrics.Metrics
	routes   *routes.Resolver
	renderer *render.Renderer
	tokens   *auth.Tokens

	catalogSvc  catalog.Service
	filesSvc    files.Service
	usersSvc    users.Service
	markdownSvc *markdown.Service
	api         *manualhttp.API
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithBunDB uses db instead of opening one from the storage config. The
// caller keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBlobStore overrides the file blob store.
func WithBlobStore(store files.BlobStore) Option {
	return func(c *Container) {
		c.blobs = store
	}
}

// WithClock overrides the clock of every service.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// NewContainer validates cfg and builds every service. SQL storage is
// opened and migrated here.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	if err := c.configureServices(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "", "none":
		return nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
			Fields:    map[string]any{"service": "go-manual"},
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
		return nil
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, c.Config.Logging.Provider)
	}
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB == nil {
		if runtimeconfig.NormalizeDriver(c.Config.Storage.Driver) == runtimeconfig.DriverMemory {
			return nil
		}
		db, err := storage.Open(ctx, c.Config.Storage, logging.StorageLogger(c.loggerProvider))
		if err != nil {
			return err
		}
		c.bunDB, c.ownsDB = db, true
	}
	if err := migrations.Migrate(ctx, c.bunDB); err != nil {
		c.Close()
		return fmt.Errorf("di: migrate: %w", err)
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			logging.StorageLogger(c.loggerProvider).Warn("di.cache.disabled", "error", err)
			return
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		c.categoryRepo = catalog.NewBunCategoryRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.itemRepo = catalog.NewBunItemRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.imageRepo = catalog.NewBunItemImageRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.searchLogRepo = catalog.NewBunSearchLogRepository(c.bunDB)
		c.fileRepo = files.NewBunFileRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.userRepo = users.NewBunUserRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return
	}
	c.categoryRepo = catalog.NewMemoryCategoryRepository()
	c.itemRepo = catalog.NewMemoryItemRepository()
	c.imageRepo = catalog.NewMemoryItemImageRepository()
	c.searchLogRepo = catalog.NewMemorySearchLogRepository()
	c.fileRepo = files.NewMemoryFileRepository()
	c.userRepo = users.NewMemoryUserRepository()
}

func (c *Container) configureServices() error {
	cfg := c.Config
	provider := c.loggerProvider

	routeConfig := cfg.HTTP.Routes
	if routeConfig == nil {
		routeConfig = routes.DefaultConfig(cfg.Files.BaseURL, cfg.HTTP.BasePath)
	}
	c.routes = routes.NewResolver(routeConfig)

	renderOpts := []render.Option{render.WithLogger(logging.RenderLogger(provider))}
	if cfg.Features.Metrics {
		c.metrics = metrics.New()
		renderOpts = append(renderOpts, render.WithObserver(c.metrics))
	}
	c.renderer = render.NewRenderer(renderOpts...)

	catalogOpts := []catalog.ServiceOption{
		catalog.WithLogger(logging.CatalogLogger(provider)),
		catalog.WithNow(c.now),
		catalog.WithRenderer(c.renderer),
		catalog.WithPermalinker(c.routes),
		catalog.WithSuggestLimit(cfg.Search.SuggestLimit),
	}
	if cfg.Features.SearchLog && cfg.Search.LogQueries {
		catalogOpts = append(catalogOpts, catalog.WithSearchLog(c.searchLogRepo, auth.ActorID))
	}
	c.catalogSvc = catalog.NewService(c.categoryRepo, c.itemRepo, c.imageRepo, catalogOpts...)

	c.usersSvc = users.NewService(c.userRepo,
		users.WithLogger(logging.UsersLogger(provider)),
		users.WithNow(c.now),
		users.WithOwner(cfg.Auth.OwnerOpenID),
	)

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, auth.WithTokenClock(c.now))
	if err != nil {
		return err
	}
	c.tokens = tokens

	if cfg.Features.Files {
		if c.blobs == nil {
			c.blobs = files.NewDirBlobStore(cfg.Files.Root)
		}
		c.filesSvc = files.NewService(c.fileRepo, c.blobs,
			files.WithLogger(logging.FilesLogger(provider)),
			files.WithNow(c.now),
			files.WithMaxSize(cfg.Files.MaxSize),
			files.WithAllowedExtensions(cfg.Files.AllowedExtensions...),
			files.WithURLBuilder(c.routes),
		)
	}

	c.markdownSvc = markdown.NewService(c.catalogSvc, markdown.WithLogger(logging.MarkdownLogger(provider)))

	apiOpts := []manualhttp.Option{
		manualhttp.WithLogger(logging.HTTPLogger(provider)),
		manualhttp.WithUsers(c.usersSvc),
		manualhttp.WithTokens(c.tokens),
		manualhttp.WithRenderer(c.renderer),
		manualhttp.WithBasePath(cfg.HTTP.BasePath),
		manualhttp.WithMaxUpload(cfg.Files.MaxSize),
		manualhttp.WithClock(c.now),
	}
	if c.filesSvc != nil {
		apiOpts = append(apiOpts, manualhttp.WithFiles(c.filesSvc))
	}
	if c.metrics != nil {
		apiOpts = append(apiOpts,
			manualhttp.WithObserver(c.metrics),
			manualhttp.WithUploadObserver(c.metrics),
			manualhttp.WithMetricsHandler(c.metrics.Handler()),
		)
	}
	if c.bunDB != nil {
		apiOpts = append(apiOpts, manualhttp.WithHealthCheck(c.bunDB.PingContext))
	}
	c.api = manualhttp.New(c.catalogSvc, apiOpts...)
	return nil
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	return err
}

// LoggerProvider returns the configured logger provider, which may be nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// DB returns the SQL database, or nil for memory storage.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// CatalogService returns the categories and items service.
func (c *Container) CatalogService() catalog.Service {
	return c.catalogSvc
}

// FilesService returns the files service, or nil when files are disabled.
func (c *Container) FilesService() files.Service {
	return c.filesSvc
}

// UsersService returns the accounts service.
func (c *Container) UsersService() users.Service {
	return c.usersSvc
}

// MarkdownService returns the markdown import and export service.
func (c *Container) MarkdownService() *markdown.Service {
	return c.markdownSvc
}

// Tokens returns the session token issuer.
func (c *Container) Tokens() *auth.Tokens {
	return c.tokens
}

// Renderer returns the shared content renderer.
func (c *Container) Renderer() *render.Renderer {
	return c.renderer
}

// Metrics returns the metrics collectors, or nil when disabled.
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Routes returns the public URL resolver.
func (c *Container) Routes() *routes.Resolver {
	return c.routes
}

// API returns the HTTP API.
func (c *Container) API() *manualhttp.API {
	return c.api
}
