package main

import (
	"errors"
	"fmt"
	"strings"

	manual "github.com/goliatone/go-manual"
	"github.com/spf13/viper"
)

const envPrefix = "MANUAL"

// loadConfig layers defaults, an optional config file and MANUAL_* env
// vars. Without an explicit path a missing ./manual.yaml is not an error.
func loadConfig(path string) (manual.Config, error) {
	defaults := manual.DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, defaults)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return manual.Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("manual")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return manual.Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := defaults
	if err := v.Unmarshal(&cfg); err != nil {
		return manual.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so env vars bind without a config file.
func setDefaults(v *viper.Viper, cfg manual.Config) {
	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.dsn", cfg.Storage.DSN)
	v.SetDefault("storage.debug", cfg.Storage.Debug)

	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.default_ttl", cfg.Cache.DefaultTTL)

	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)

	v.SetDefault("auth.secret", cfg.Auth.Secret)
	v.SetDefault("auth.issuer", cfg.Auth.Issuer)
	v.SetDefault("auth.token_ttl", cfg.Auth.TokenTTL)
	v.SetDefault("auth.owner_open_id", cfg.Auth.OwnerOpenID)

	v.SetDefault("files.root", cfg.Files.Root)
	v.SetDefault("files.base_url", cfg.Files.BaseURL)
	v.SetDefault("files.max_size", cfg.Files.MaxSize)
	v.SetDefault("files.allowed_extensions", cfg.Files.AllowedExtensions)

	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("http.base_path", cfg.HTTP.BasePath)

	v.SetDefault("search.log_queries", cfg.Search.LogQueries)
	v.SetDefault("search.log_retention", cfg.Search.LogRetention)
	v.SetDefault("search.suggest_limit", cfg.Search.SuggestLimit)

	v.SetDefault("markdown.enabled", cfg.Markdown.Enabled)
	v.SetDefault("markdown.content_dir", cfg.Markdown.ContentDir)
	v.SetDefault("markdown.pattern", cfg.Markdown.Pattern)

	v.SetDefault("features.files", cfg.Features.Files)
	v.SetDefault("features.search_log", cfg.Features.SearchLog)
	v.SetDefault("features.metrics", cfg.Features.Metrics)
	v.SetDefault("features.markdown", cfg.Features.Markdown)
}
