package factory

import "time"

// Config selects and configures a Provider by name. Type enumerates the
// supported back-ends; only the fields relevant to the chosen Type need be
// populated. For "git-sync", Inner recursively describes the wrapped
// provider.
type Config struct {
	Type string

	// file
	FileDirectoryPath string
	FileUseSingleFile bool
	FilePrettyPrint   bool
	FileWriteDebounce time.Duration
	FileLockRetries   int
	FileLockTimeout   time.Duration

	// relational
	RelationalDriver      string
	RelationalDSN         string
	RelationalForeignKeys bool

	// document
	DocumentConnectionString string
	DocumentDatabaseName     string

	// object-store
	ObjectEndpoint   string
	ObjectAccessKey  string
	ObjectSecretKey  string
	ObjectBucketName string
	ObjectRegion     string
	ObjectKeyPrefix  string

	// browser-db
	BrowserDatabaseName          string
	BrowserVersion               int
	BrowserMigrationStrategy     string
	BrowserAutoCreateCollections bool

	// git-sync
	GitRepositoryPath   string
	GitRemote           string
	GitBranch           string
	GitInterval         time.Duration
	GitAutoCommit       bool
	GitAutoSync         bool
	GitAuthorName       string
	GitAuthorEmail      string
	GitConflictStrategy string
	Inner               *Config

	// cached (applies as a decorator over whichever Type is chosen, when CacheAddr is set)
	CacheAddr     string
	CachePassword string
	CacheDB       int
	CacheTTL      time.Duration
}
