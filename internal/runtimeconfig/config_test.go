package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-manual/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "mongo"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestConfigValidate_RequiresDSNForSQLDrivers(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres"} {
		cfg := runtimeconfig.DefaultConfig()
		cfg.Storage.Driver = driver
		cfg.Storage.DSN = " "

		if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
			t.Fatalf("%s: expected ErrStorageDSNRequired, got %v", driver, err)
		}
	}
}

func TestConfigValidate_RequiresAuthSecret(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Auth.Secret = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrAuthSecretRequired) {
		t.Fatalf("expected ErrAuthSecretRequired, got %v", err)
	}
}

func TestConfigValidate_FilesRequireRootAndSize(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Files.Root = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrFilesRootRequired) {
		t.Fatalf("expected ErrFilesRootRequired, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Files.MaxSize = 0
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrFilesMaxSizeInvalid) {
		t.Fatalf("expected ErrFilesMaxSizeInvalid, got %v", err)
	}

	cfg.Features.Files = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled files to skip checks, got %v", err)
	}
}

func TestConfigValidate_MarkdownRequiresFeature(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markdown.Enabled = true

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrMarkdownFeatureRequired) {
		t.Fatalf("expected ErrMarkdownFeatureRequired, got %v", err)
	}

	cfg.Features.Markdown = true
	cfg.Markdown.ContentDir = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrMarkdownContentDirNeeded) {
		t.Fatalf("expected ErrMarkdownContentDirNeeded, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLogging(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}

func TestNormalizeDriverAliases(t *testing.T) {
	cases := map[string]string{
		"":           runtimeconfig.DriverMemory,
		"SQLite":     runtimeconfig.DriverSQLite,
		"postgresql": runtimeconfig.DriverPostgres,
		"pg":         runtimeconfig.DriverPostgres,
	}
	for input, want := range cases {
		if got := runtimeconfig.NormalizeDriver(input); got != want {
			t.Fatalf("NormalizeDriver(%q) = %q, want %q", input, got, want)
		}
	}
}
