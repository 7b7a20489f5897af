package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrStorageDriverUnknown     = errors.New("manual config: storage driver is invalid")
	ErrStorageDSNRequired       = errors.New("manual config: storage dsn is required for sql drivers")
	ErrAuthSecretRequired       = errors.New("manual config: auth secret is required")
	ErrAuthTokenTTLInvalid      = errors.New("manual config: auth token ttl must be positive")
	ErrFilesRootRequired        = errors.New("manual config: files root is required when files are enabled")
	ErrFilesMaxSizeInvalid      = errors.New("manual config: files max size must be positive")
	ErrMarkdownFeatureRequired  = errors.New("manual config: markdown feature must be enabled to configure markdown")
	ErrMarkdownContentDirNeeded = errors.New("manual config: markdown content directory is required when markdown is enabled")
	ErrSearchRetentionInvalid   = errors.New("manual config: search log retention must be zero or positive")
	ErrLoggingProviderUnknown   = errors.New("manual config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("manual config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("manual config: logging format is invalid")
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config aggregates every runtime setting of the manual service.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Files    FilesConfig    `mapstructure:"files"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Search   SearchConfig   `mapstructure:"search"`
	Markdown MarkdownConfig `mapstructure:"markdown"`
	Features Features       `mapstructure:"features"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

// CacheConfig toggles the repository read cache.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

// LoggingConfig configures the go-logger provider.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// AuthConfig configures session tokens.
type AuthConfig struct {
	Secret      string        `mapstructure:"secret"`
	Issuer      string        `mapstructure:"issuer"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	OwnerOpenID string        `mapstructure:"owner_open_id"`
}

// FilesConfig configures uploaded file storage.
type FilesConfig struct {
	Root              string   `mapstructure:"root"`
	BaseURL           string   `mapstructure:"base_url"`
	MaxSize           int64    `mapstructure:"max_size"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// DefaultAllowedExtensions lists the upload extensions accepted when none are
// configured.
var DefaultAllowedExtensions = []string{
	".pdf", ".doc", ".docx", ".txt", ".xls", ".xlsx", ".ppt", ".pptx",
	".png", ".jpg", ".jpeg", ".gif", ".webp",
}

// HTTPConfig configures the API listener. Routes overrides the URL groups
// used to build download links and permalinks.
type HTTPConfig struct {
	Addr     string         `mapstructure:"addr"`
	BasePath string         `mapstructure:"base_path"`
	Routes   *urlkit.Config `mapstructure:"-"`
}

// SearchConfig configures search logging and suggestions.
type SearchConfig struct {
	LogQueries   bool          `mapstructure:"log_queries"`
	LogRetention time.Duration `mapstructure:"log_retention"`
	SuggestLimit int           `mapstructure:"suggest_limit"`
}

// MarkdownConfig configures markdown import and export.
type MarkdownConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ContentDir string `mapstructure:"content_dir"`
	Pattern    string `mapstructure:"pattern"`
}

// Features toggles optional modules.
type Features struct {
	Files     bool `mapstructure:"files"`
	SearchLog bool `mapstructure:"search_log"`
	Metrics   bool `mapstructure:"metrics"`
	Markdown  bool `mapstructure:"markdown"`
}

// DefaultConfig returns a configuration that runs fully in memory.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver: DriverMemory,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
		Auth: AuthConfig{
			Secret:   "change-me",
			Issuer:   "go-manual",
			TokenTTL: 24 * time.Hour,
		},
		Files: FilesConfig{
			Root:              "uploads",
			BaseURL:           "",
			MaxSize:           50 << 20,
			AllowedExtensions: append([]string(nil), DefaultAllowedExtensions...),
		},
		HTTP: HTTPConfig{
			Addr:     ":8080",
			BasePath: "",
		},
		Search: SearchConfig{
			LogQueries:   true,
			LogRetention: 90 * 24 * time.Hour,
			SuggestLimit: 5,
		},
		Markdown: MarkdownConfig{
			ContentDir: "content",
			Pattern:    "*.md",
		},
		Features: Features{
			Files:     true,
			SearchLog: true,
			Metrics:   true,
		},
	}
}

// Validate performs consistency checks across sections.
func (cfg Config) Validate() error {
	switch driver := NormalizeDriver(cfg.Storage.Driver); driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, driver)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		return ErrAuthSecretRequired
	}
	if cfg.Auth.TokenTTL <= 0 {
		return ErrAuthTokenTTLInvalid
	}
	if cfg.Features.Files {
		if strings.TrimSpace(cfg.Files.Root) == "" {
			return ErrFilesRootRequired
		}
		if cfg.Files.MaxSize <= 0 {
			return ErrFilesMaxSizeInvalid
		}
	}
	if cfg.Markdown.Enabled {
		if !cfg.Features.Markdown {
			return ErrMarkdownFeatureRequired
		}
		if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
			return ErrMarkdownContentDirNeeded
		}
	}
	if cfg.Search.LogRetention < 0 {
		return ErrSearchRetentionInvalid
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
	switch provider {
	case "", "none":
		return nil
	case "gologger":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

// NormalizeDriver lowercases driver and maps common aliases.
func NormalizeDriver(driver string) string {
	switch d := strings.ToLower(strings.TrimSpace(driver)); d {
	case "", DriverMemory:
		return DriverMemory
	case "sqlite":
		return DriverSQLite
	case "postgresql", "pg":
		return DriverPostgres
	default:
		return d
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
