package tempel

import "time"

// List rendering when a list is substituted into a plain placeholder
const (
	ListOpen      = "["
	ListClose     = "]"
	ListSeparator = ", "
)

// MissingListStrategy decides what a loop does when its list is not bound
type MissingListStrategy int

const (
	// MissingListFail fails the render with a NoSuchList error
	MissingListFail MissingListStrategy = iota
	// MissingListEmpty renders the loop block as empty text
	MissingListEmpty
)

// Missing list strategy names
const (
	MissingListNameFail  = "fail"
	MissingListNameEmpty = "empty"
)

// String returns the string representation of the strategy
func (s MissingListStrategy) String() string {
	switch s {
	case MissingListEmpty:
		return MissingListNameEmpty
	default:
		return MissingListNameFail
	}
}

// ParseMissingListStrategy parses a strategy name, defaulting to MissingListFail.
func ParseMissingListStrategy(name string) MissingListStrategy {
	if name == MissingListNameEmpty {
		return MissingListEmpty
	}
	return MissingListFail
}

// Filesystem storage constants
const (
	FilesystemDirPermissions  = 0755
	FilesystemFilePermissions = 0644
	FilesystemVersionPrefix   = "v"
	FilesystemVersionSuffix   = ".json"
	FilesystemTempPattern     = ".pending-*"
)

// Storage driver names
const (
	StorageDriverNameMemory     = "memory"
	StorageDriverNameFilesystem = "filesystem"
	StorageDriverNamePostgres   = "postgres"
)

// Postgres storage defaults
const (
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
	PostgresTablePrefix            = "tempel_"
	PostgresDriverName             = "postgres"
)

// Stored template ID prefix
const TemplateIDPrefix = "tmpl_"

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyLine         = "line"
	MetaKeyColumn       = "column"
	MetaKeyOffset       = "offset"
	MetaKeyStart        = "start"
	MetaKeyEnd          = "end"
	MetaKeyOpenCount    = "open_count"
	MetaKeyCloseCount   = "close_count"
	MetaKeyList         = "list"
	MetaKeyPath         = "path"
	MetaKeyTemplateName = "template_name"
)

// Log message constants
const (
	LogMsgCompileStart        = "compiling template"
	LogMsgCompileEnd          = "template compiled"
	LogMsgCompileFailed       = "template compilation failed"
	LogMsgRenderStart         = "rendering template"
	LogMsgRenderEnd           = "template rendered"
	LogMsgRenderFailed        = "template render failed"
	LogMsgMissingListSkipped  = "missing loop list rendered empty"
	LogMsgEngineCreated       = "engine created"
	LogMsgTemplateRegistered  = "template registered"
	LogMsgTemplateRemoved     = "template unregistered"
	LogMsgTemplateLoaded      = "template loaded"
	LogMsgStorageCacheHit     = "compiled template cache hit"
	LogMsgStorageCacheMiss    = "compiled template cache miss"
	LogMsgStorageSaved        = "template saved to storage"
	LogMsgStorageDeleted      = "template deleted from storage"
	LogMsgStorageCacheCleared = "compiled template cache cleared"
)

// Log field name constants
const (
	LogFieldSource       = "source_length"
	LogFieldOutput       = "output_length"
	LogFieldVariables    = "variable_count"
	LogFieldLoops        = "loop_count"
	LogFieldBindings     = "binding_count"
	LogFieldList         = "list"
	LogFieldTemplateName = "template_name"
	LogFieldVersion      = "version"
	LogFieldPath         = "path"
	LogFieldStrategy     = "missing_list_strategy"
)
