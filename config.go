package manual

import "github.com/goliatone/go-manual/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrAuthSecretRequired       = runtimeconfig.ErrAuthSecretRequired
	ErrAuthTokenTTLInvalid      = runtimeconfig.ErrAuthTokenTTLInvalid
	ErrFilesRootRequired        = runtimeconfig.ErrFilesRootRequired
	ErrFilesMaxSizeInvalid      = runtimeconfig.ErrFilesMaxSizeInvalid
	ErrMarkdownFeatureRequired  = runtimeconfig.ErrMarkdownFeatureRequired
	ErrMarkdownContentDirNeeded = runtimeconfig.ErrMarkdownContentDirNeeded
	ErrSearchRetentionInvalid   = runtimeconfig.ErrSearchRetentionInvalid
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	AuthConfig     = runtimeconfig.AuthConfig
	FilesConfig    = runtimeconfig.FilesConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	SearchConfig   = runtimeconfig.SearchConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	Features       = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
