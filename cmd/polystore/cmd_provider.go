package main

// cmd_provider.go wires the CLI's --type flag and its per-back-end
// options into a factory.Config, the same split cmd_db.go makes between
// flag parsing and the framework's own config package.

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/shashiranjanraj/polystore/config"
	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/factory"
)

var flags struct {
	providerType string

	fileDir       string
	fileSingle    bool
	filePretty    bool
	fileDebounce  int
	fileLockRetry int
	fileLockMs    int

	relDriver string
	relDSN    string
	relFK     bool

	docConn string
	docDB   string

	objEndpoint string
	objKey      string
	objSecret   string
	objBucket   string
	objRegion   string
	objPrefix   string

	gitWrap      bool
	gitRepo      string
	gitRemote    string
	gitBranch    string
	gitAuthor    string
	gitEmail     string
	gitConfl     string
	gitAutoCmt   bool
	gitAutoSyn   bool
	gitIntervalS int

	cacheAddr string
	cachePass string
	cacheDB   int
	cacheTTLS int
}

func registerProviderFlags(fs *pflag.FlagSet) {
	_ = config.Load()

	fs.StringVar(&flags.providerType, "type", "memory", "provider type: memory|json-file|relational|document|object-store|browser-db")

	fs.StringVar(&flags.fileDir, "file-dir", config.FileDirectoryPath(), "json-file: directory path")
	fs.BoolVar(&flags.fileSingle, "file-single-file", config.FileUseSingleFile(), "json-file: use one aggregate file instead of per-collection files")
	fs.BoolVar(&flags.filePretty, "file-pretty", config.FilePrettyPrint(), "json-file: pretty-print written JSON")
	fs.IntVar(&flags.fileDebounce, "file-debounce-ms", config.FileWriteDebounceMs(), "json-file: write debounce window in milliseconds")
	fs.IntVar(&flags.fileLockRetry, "file-lock-retries", config.FileLockRetries(), "json-file: lock acquisition retry count")
	fs.IntVar(&flags.fileLockMs, "file-lock-timeout-ms", config.FileLockTimeoutMs(), "json-file: lockfile auto-release timeout in milliseconds")

	fs.StringVar(&flags.relDriver, "relational-driver", config.DatabaseDriver(), "relational: sqlite|postgres|mysql|sqlserver")
	fs.StringVar(&flags.relDSN, "relational-dsn", config.DatabaseDSN(), "relational: driver-specific DSN")
	fs.BoolVar(&flags.relFK, "relational-foreign-keys", config.DatabaseForeignKeys(), "relational: enforce foreign keys (sqlite PRAGMA)")

	fs.StringVar(&flags.docConn, "document-connection-string", config.DocConnectionString(), "document: Mongo connection URI")
	fs.StringVar(&flags.docDB, "document-database", config.DocDatabaseName(), "document: database name")

	fs.StringVar(&flags.objEndpoint, "object-endpoint", config.S3Endpoint(), "object-store: custom endpoint (MinIO/R2/Spaces)")
	fs.StringVar(&flags.objKey, "object-access-key", config.S3Key(), "object-store: access key id")
	fs.StringVar(&flags.objSecret, "object-secret-key", config.S3Secret(), "object-store: secret access key")
	fs.StringVar(&flags.objBucket, "object-bucket", config.S3Bucket(), "object-store: bucket name")
	fs.StringVar(&flags.objRegion, "object-region", config.S3Region(), "object-store: region")
	fs.StringVar(&flags.objPrefix, "object-prefix", config.S3Prefix(), "object-store: key prefix")

	fs.BoolVar(&flags.gitWrap, "git-sync", false, "wrap the selected provider in the git-sync decorator")
	fs.StringVar(&flags.gitRepo, "git-repo-path", config.GitRepositoryPath(), "git-sync: repository path")
	fs.StringVar(&flags.gitRemote, "git-remote", config.GitRemote(), "git-sync: remote name (empty disables push/pull)")
	fs.StringVar(&flags.gitBranch, "git-branch", config.GitBranch(), "git-sync: branch name")
	fs.StringVar(&flags.gitAuthor, "git-author-name", config.GitAuthorName(), "git-sync: commit author name")
	fs.StringVar(&flags.gitEmail, "git-author-email", config.GitAuthorEmail(), "git-sync: commit author email")
	fs.StringVar(&flags.gitConfl, "git-conflict-strategy", config.GitConflictStrategy(), "git-sync: accept-local|accept-remote|merge")
	fs.BoolVar(&flags.gitAutoCmt, "git-auto-commit", config.GitAutoCommit(), "git-sync: commit automatically after each mutation")
	fs.BoolVar(&flags.gitAutoSyn, "git-auto-sync", config.GitAutoSync(), "git-sync: pull/push automatically on each mutation")
	fs.IntVar(&flags.gitIntervalS, "git-interval-seconds", config.GitIntervalSeconds(), "git-sync: periodic sync interval in seconds (0 disables the timer)")

	fs.StringVar(&flags.cacheAddr, "cache-addr", "", "wrap the selected provider in a Redis read-through cache at this address")
	fs.StringVar(&flags.cachePass, "cache-password", config.RedisPassword(), "cache: redis password")
	fs.IntVar(&flags.cacheDB, "cache-db", 0, "cache: redis logical database index")
	fs.IntVar(&flags.cacheTTLS, "cache-ttl-seconds", 60, "cache: entry time-to-live in seconds")
}

func buildConfig() factory.Config {
	inner := factory.Config{
		Type: flags.providerType,

		FileDirectoryPath: flags.fileDir,
		FileUseSingleFile: flags.fileSingle,
		FilePrettyPrint:   flags.filePretty,
		FileWriteDebounce: time.Duration(flags.fileDebounce) * time.Millisecond,
		FileLockRetries:   flags.fileLockRetry,
		FileLockTimeout:   time.Duration(flags.fileLockMs) * time.Millisecond,

		RelationalDriver:      flags.relDriver,
		RelationalDSN:         flags.relDSN,
		RelationalForeignKeys: flags.relFK,

		DocumentConnectionString: flags.docConn,
		DocumentDatabaseName:     flags.docDB,

		ObjectEndpoint:   flags.objEndpoint,
		ObjectAccessKey:  flags.objKey,
		ObjectSecretKey:  flags.objSecret,
		ObjectBucketName: flags.objBucket,
		ObjectRegion:     flags.objRegion,
		ObjectKeyPrefix:  flags.objPrefix,
	}

	cfg := inner
	if flags.gitWrap {
		cfg = factory.Config{
			Type:                "git-sync",
			Inner:               &inner,
			GitRepositoryPath:   flags.gitRepo,
			GitRemote:           flags.gitRemote,
			GitBranch:           flags.gitBranch,
			GitAuthorName:       flags.gitAuthor,
			GitAuthorEmail:      flags.gitEmail,
			GitConflictStrategy: flags.gitConfl,
			GitAutoCommit:       flags.gitAutoCmt,
			GitAutoSync:         flags.gitAutoSyn,
			GitInterval:         time.Duration(flags.gitIntervalS) * time.Second,
		}
	}

	if flags.cacheAddr != "" {
		cfg.CacheAddr = flags.cacheAddr
		cfg.CachePassword = flags.cachePass
		cfg.CacheDB = flags.cacheDB
		cfg.CacheTTL = time.Duration(flags.cacheTTLS) * time.Second
	}
	return cfg
}

// buildProvider constructs and connects a Provider from the parsed flags.
// Callers must Disconnect it when done.
func buildProvider(ctx context.Context) (store.Provider, error) {
	p, err := factory.New(buildConfig())
	if err != nil {
		return nil, fmt.Errorf("building provider: %w", err)
	}
	if err := p.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting provider: %w", err)
	}
	return p, nil
}
